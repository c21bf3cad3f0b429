package store

import "errors"

var (
	ErrCompanyNotFound     = errors.New("company not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSubcategoryNotFound = errors.New("subcategory not found")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTurnNotFound        = errors.New("turn not found")
	ErrKioskNotFound       = errors.New("kiosk not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrRoleNotFound        = errors.New("role not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrTokenNotFound       = errors.New("registration token not found")
	ErrTokenExpired        = errors.New("registration token expired")
	ErrTokenUsed           = errors.New("registration token already used")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidState        = errors.New("invalid ticket state")
	ErrCategoryInUse       = errors.New("category has tickets")
	ErrSubcategoryInUse    = errors.New("subcategory has tickets")
	ErrDuplicateMAC        = errors.New("mac address already registered")
	ErrDuplicateName       = errors.New("name already in use")
	ErrDuplicateUsername   = errors.New("username already in use")
	ErrSetupCompleted      = errors.New("setup already completed")
)
