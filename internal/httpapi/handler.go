package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielsct56bm/cerro-service/internal/realtime"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

type Handler struct {
	store         store.Store
	events        *realtime.Events
	kioskTokenTTL time.Duration
}

type Options struct {
	KioskTokenTTL time.Duration
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewHandler(st store.Store, events *realtime.Events, options Options) *Handler {
	ttl := options.KioskTokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Handler{store: st, events: events, kioskTokenTTL: ttl}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/setup", h.handleSetup)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/logout", h.handleLogout)
	mux.HandleFunc("/api/auth/me", h.handleMe)
	mux.HandleFunc("/api/users", h.handleUsers)
	mux.HandleFunc("/api/users/", h.handleUserByID)
	mux.HandleFunc("/api/companies", h.handleCompanies)
	mux.HandleFunc("/api/companies/", h.handleCompanyByID)
	mux.HandleFunc("/api/settings", h.handleSettings)
	mux.HandleFunc("/api/categories", h.handleCategories)
	mux.HandleFunc("/api/categories/", h.handleCategoryByID)
	mux.HandleFunc("/api/templates", h.handleTemplates)
	mux.HandleFunc("/api/templates/", h.handleTemplateByID)
	mux.HandleFunc("/api/work-sessions", h.handleWorkSessions)
	mux.HandleFunc("/api/kiosk/templates", h.handleKioskTemplates)
	mux.HandleFunc("/api/kiosk/status", h.handleKioskStatus)
	mux.HandleFunc("/api/kiosk/tickets", h.handleKioskTickets)
	mux.HandleFunc("/api/tickets", h.handleTickets)
	mux.HandleFunc("/api/tickets/", h.handleTicketByID)
	mux.HandleFunc("/api/turns/", h.handleTurnActions)
	mux.HandleFunc("/api/kiosks", h.handleKiosks)
	mux.HandleFunc("/api/kiosks/register-url", h.handleKioskRegisterURL)
	mux.HandleFunc("/api/kiosks/register/", h.handleKioskRegister)
	mux.HandleFunc("/api/kiosks/", h.handleKioskByID)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func isValidUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrSetupCompleted):
		return http.StatusConflict, "already_configured", "setup already completed"
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid username or password"
	case errors.Is(err, store.ErrSessionNotFound):
		return http.StatusUnauthorized, "unauthorized", "invalid session"
	case errors.Is(err, store.ErrCompanyNotFound):
		return http.StatusNotFound, "company_not_found", "company not found"
	case errors.Is(err, store.ErrCategoryNotFound):
		return http.StatusNotFound, "category_not_found", "category not found"
	case errors.Is(err, store.ErrSubcategoryNotFound):
		return http.StatusNotFound, "subcategory_not_found", "subcategory not found"
	case errors.Is(err, store.ErrTemplateNotFound):
		return http.StatusNotFound, "template_not_found", "template not found"
	case errors.Is(err, store.ErrTicketNotFound):
		return http.StatusNotFound, "ticket_not_found", "ticket not found"
	case errors.Is(err, store.ErrTurnNotFound):
		return http.StatusNotFound, "turn_not_found", "turn not found"
	case errors.Is(err, store.ErrKioskNotFound):
		return http.StatusNotFound, "kiosk_not_found", "kiosk not found"
	case errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found", "user not found"
	case errors.Is(err, store.ErrRoleNotFound):
		return http.StatusNotFound, "role_not_found", "role not found"
	case errors.Is(err, store.ErrTokenNotFound):
		return http.StatusNotFound, "token_not_found", "registration token not found"
	case errors.Is(err, store.ErrTokenExpired):
		return http.StatusGone, "token_expired", "registration token expired"
	case errors.Is(err, store.ErrTokenUsed):
		return http.StatusConflict, "token_used", "registration token already used"
	case errors.Is(err, store.ErrInvalidState):
		return http.StatusConflict, "invalid_state", "ticket state does not allow this transition"
	case errors.Is(err, store.ErrCategoryInUse):
		return http.StatusConflict, "category_in_use", "category has tickets and cannot be deleted"
	case errors.Is(err, store.ErrSubcategoryInUse):
		return http.StatusConflict, "subcategory_in_use", "subcategory has tickets and cannot be deleted"
	case errors.Is(err, store.ErrDuplicateMAC):
		return http.StatusConflict, "duplicate_mac", "mac address already registered"
	case errors.Is(err, store.ErrDuplicateName):
		return http.StatusConflict, "duplicate_name", "name already in use"
	case errors.Is(err, store.ErrDuplicateUsername):
		return http.StatusConflict, "duplicate_username", "username already in use"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	status, code, message := mapError(err)
	writeError(w, status, code, message)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
