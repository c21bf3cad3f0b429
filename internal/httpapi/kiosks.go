package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/danielsct56bm/cerro-service/internal/models"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

func (h *Handler) handleKiosks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info, ok := h.requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}
	kiosks, err := h.store.ListKiosks(r.Context(), info.User.CompanyID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kiosks)
}

type registerURLResponse struct {
	Token           string `json:"token"`
	RegistrationURL string `json:"registration_url"`
	ExpiresAt       string `json:"expires_at"`
}

// handleKioskRegisterURL mints a one-time registration token for a
// new device. The raw token is only ever returned here.
func (h *Handler) handleKioskRegisterURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info, ok := h.requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	expiresAt := time.Now().UTC().Add(h.kioskTokenTTL)
	token, err := h.store.CreateRegistrationToken(r.Context(), info.User.UserID, expiresAt)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerURLResponse{
		Token:           token,
		RegistrationURL: "/api/kiosks/register/" + token,
		ExpiresAt:       expiresAt.Format(time.RFC3339),
	})
}

type registerKioskRequest struct {
	Name       string `json:"name"`
	MACAddress string `json:"mac_address"`
	DeviceType string `json:"device_type"`
}

func (h *Handler) handleKioskRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	token := strings.TrimPrefix(r.URL.Path, "/api/kiosks/register/")
	if token == "" || strings.Contains(token, "/") {
		http.NotFound(w, r)
		return
	}

	var req registerKioskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.MACAddress = strings.ToUpper(strings.TrimSpace(req.MACAddress))
	req.DeviceType = strings.TrimSpace(req.DeviceType)
	if req.Name == "" || req.MACAddress == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name and mac_address are required")
		return
	}
	if !models.ValidDeviceType(req.DeviceType) {
		writeError(w, http.StatusBadRequest, "invalid_request", "device_type must be windows, android, web, or ios")
		return
	}

	kiosk, err := h.store.RegisterKiosk(r.Context(), store.RegisterKioskInput{
		Token:      token,
		Name:       req.Name,
		MACAddress: req.MACAddress,
		DeviceType: req.DeviceType,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, kiosk)
}

type updateKioskRequest struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

func (h *Handler) handleKioskByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info, ok := h.requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}
	kioskID := strings.TrimPrefix(r.URL.Path, "/api/kiosks/")
	if !isValidUUID(kioskID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "kiosk id must be a UUID")
		return
	}

	current, err := h.store.GetKiosk(r.Context(), kioskID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if current.CompanyID != info.User.CompanyID {
		writeStoreError(w, store.ErrKioskNotFound)
		return
	}

	var req updateKioskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	name := current.Name
	if trimmed := strings.TrimSpace(req.Name); trimmed != "" {
		name = trimmed
	}
	isActive := current.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	kiosk, err := h.store.UpdateKiosk(r.Context(), info.User.CompanyID, kioskID, name, isActive)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kiosk)
}
