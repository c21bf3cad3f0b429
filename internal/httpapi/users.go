package httpapi

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danielsct56bm/cerro-service/internal/models"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	SessionID string      `json:"session_id"`
	ExpiresAt string      `json:"expires_at"`
	User      models.User `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	result, err := h.store.Login(r.Context(), store.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		SessionID: result.Session.SessionID,
		ExpiresAt: result.Session.ExpiresAt.Format(time.RFC3339),
		User:      result.User,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteSession(r.Context(), info.Session.SessionID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, info.User)
}

type createUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	CanAccess *bool  `json:"can_access"`
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		info, ok := h.requireRole(w, r, models.RoleAdmin)
		if !ok {
			return
		}
		users, err := h.store.ListUsers(r.Context(), info.User.CompanyID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	case http.MethodPost:
		info, ok := h.requireRole(w, r, models.RoleAdmin)
		if !ok {
			return
		}

		var req createUserRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
			return
		}
		if len(req.Password) < 8 {
			writeError(w, http.StatusBadRequest, "invalid_request", "password must be at least 8 characters")
			return
		}
		roleKey, ok := models.ParseRoleKey(strings.TrimSpace(req.Role))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_request", "role must be admin, user, or technician")
			return
		}
		canAccess := true
		if req.CanAccess != nil {
			canAccess = *req.CanAccess
		}

		user, err := h.store.CreateUser(r.Context(), store.CreateUserInput{
			CompanyID: info.User.CompanyID,
			Username:  req.Username,
			Email:     strings.TrimSpace(req.Email),
			Password:  req.Password,
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			RoleKey:   roleKey,
			CanAccess: canAccess,
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type updateUserRequest struct {
	Role      string `json:"role"`
	CanAccess *bool  `json:"can_access"`
}

func (h *Handler) handleUserByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info, ok := h.requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/api/users/")
	if !isValidUUID(userID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "user id must be a UUID")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	roleKey, ok := models.ParseRoleKey(strings.TrimSpace(req.Role))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "role must be admin, user, or technician")
		return
	}
	canAccess := true
	if req.CanAccess != nil {
		canAccess = *req.CanAccess
	}

	user, err := h.store.UpdateUser(r.Context(), store.UpdateUserInput{
		UserID:    userID,
		CompanyID: info.User.CompanyID,
		RoleKey:   roleKey,
		CanAccess: canAccess,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
