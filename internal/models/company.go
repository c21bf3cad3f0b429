package models

import "time"

type Company struct {
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	RUC       string    `json:"ruc,omitempty"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleKey is resolved once at authentication time and carried in the
// request context; handlers never re-derive it.
type RoleKey string

const (
	RoleAdmin      RoleKey = "admin"
	RoleUser       RoleKey = "user"
	RoleTechnician RoleKey = "technician"
)

func ParseRoleKey(value string) (RoleKey, bool) {
	switch RoleKey(value) {
	case RoleAdmin, RoleUser, RoleTechnician:
		return RoleKey(value), true
	default:
		return "", false
	}
}

type Role struct {
	RoleID    string    `json:"role_id"`
	CompanyID string    `json:"company_id"`
	Key       RoleKey   `json:"key"`
	Name      string    `json:"name"`
	IsSystem  bool      `json:"is_system"`
	CreatedAt time.Time `json:"created_at"`
}

type SystemSetup struct {
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Note        string     `json:"note,omitempty"`
}

type CompanySettings struct {
	CompanyID              string    `json:"company_id"`
	WelcomeMessage         string    `json:"welcome_message"`
	MaintenanceMode        bool      `json:"maintenance_mode"`
	MaintenanceMessage     string    `json:"maintenance_message"`
	KioskAutoRefresh       bool      `json:"kiosk_auto_refresh"`
	KioskRefreshInterval   int       `json:"kiosk_refresh_interval"`
	KioskSoundNotification bool      `json:"kiosk_sound_notifications"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func DefaultCompanySettings(companyID string) CompanySettings {
	return CompanySettings{
		CompanyID:              companyID,
		WelcomeMessage:         "Welcome to the ticket system",
		MaintenanceMode:        false,
		MaintenanceMessage:     "System under maintenance. We will be back soon.",
		KioskAutoRefresh:       true,
		KioskRefreshInterval:   30,
		KioskSoundNotification: true,
	}
}
