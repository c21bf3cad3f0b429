package httpapi

import (
	"net/http"
	"strings"

	"github.com/danielsct56bm/cerro-service/internal/models"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

func (h *Handler) handleCompanies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := h.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	companies, err := h.store.ListCompanies(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

type updateCompanyRequest struct {
	Name    string `json:"name"`
	RUC     string `json:"ruc"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Active  *bool  `json:"active"`
}

// handleCompanyByID routes /api/companies/{id} and
// /api/companies/{id}/settings.
func (h *Handler) handleCompanyByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/companies/"), "/")
	companyID := parts[0]
	if !isValidUUID(companyID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "company id must be a UUID")
		return
	}

	switch {
	case len(parts) == 1:
		h.handleCompanyUpdate(w, r, companyID)
	case len(parts) == 2 && parts[1] == "settings":
		h.handleCompanySettings(w, r, companyID)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleCompanyUpdate(w http.ResponseWriter, r *http.Request, companyID string) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info, ok := h.requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}
	if info.User.CompanyID != companyID {
		writeError(w, http.StatusForbidden, "access_denied", "company access denied")
		return
	}

	companies, err := h.store.ListCompanies(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	var current models.Company
	found := false
	for _, company := range companies {
		if company.CompanyID == companyID {
			current = company
			found = true
			break
		}
	}
	if !found {
		writeStoreError(w, store.ErrCompanyNotFound)
		return
	}

	var req updateCompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		current.Name = name
	}
	if req.RUC != "" {
		current.RUC = strings.TrimSpace(req.RUC)
	}
	if req.Address != "" {
		current.Address = strings.TrimSpace(req.Address)
	}
	if req.Phone != "" {
		current.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Email != "" {
		current.Email = strings.TrimSpace(req.Email)
	}
	if req.Active != nil {
		current.Active = *req.Active
	}

	updated, err := h.store.UpdateCompany(r.Context(), current)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type settingsRequest struct {
	WelcomeMessage         *string `json:"welcome_message"`
	MaintenanceMode        *bool   `json:"maintenance_mode"`
	MaintenanceMessage     *string `json:"maintenance_message"`
	KioskAutoRefresh       *bool   `json:"kiosk_auto_refresh"`
	KioskRefreshInterval   *int    `json:"kiosk_refresh_interval"`
	KioskSoundNotification *bool   `json:"kiosk_sound_notifications"`
}

// handleSettings serves /api/settings for the caller's own company.
func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	info, ok := h.requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}
	h.serveSettings(w, r, info.User.CompanyID)
}

func (h *Handler) handleCompanySettings(w http.ResponseWriter, r *http.Request, companyID string) {
	info, ok := h.requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}
	if info.User.CompanyID != companyID {
		writeError(w, http.StatusForbidden, "access_denied", "company access denied")
		return
	}
	h.serveSettings(w, r, companyID)
}

func (h *Handler) serveSettings(w http.ResponseWriter, r *http.Request, companyID string) {
	switch r.Method {
	case http.MethodGet:
		settings, err := h.store.GetSettings(r.Context(), companyID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		current, err := h.store.GetSettings(r.Context(), companyID)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		var req settingsRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		if req.WelcomeMessage != nil {
			current.WelcomeMessage = strings.TrimSpace(*req.WelcomeMessage)
		}
		if req.MaintenanceMode != nil {
			current.MaintenanceMode = *req.MaintenanceMode
		}
		if req.MaintenanceMessage != nil {
			current.MaintenanceMessage = strings.TrimSpace(*req.MaintenanceMessage)
		}
		if req.KioskAutoRefresh != nil {
			current.KioskAutoRefresh = *req.KioskAutoRefresh
		}
		if req.KioskRefreshInterval != nil {
			if *req.KioskRefreshInterval < 5 {
				writeError(w, http.StatusBadRequest, "invalid_request", "kiosk_refresh_interval must be at least 5 seconds")
				return
			}
			current.KioskRefreshInterval = *req.KioskRefreshInterval
		}
		if req.KioskSoundNotification != nil {
			current.KioskSoundNotification = *req.KioskSoundNotification
		}

		saved, err := h.store.SaveSettings(r.Context(), current)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
