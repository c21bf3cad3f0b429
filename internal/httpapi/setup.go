package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/danielsct56bm/cerro-service/internal/store"
)

type setupStatusResponse struct {
	Status      string `json:"status"`
	CompletedAt string `json:"completed_at,omitempty"`
	Note        string `json:"note,omitempty"`
}

type setupRequest struct {
	Company setupCompany `json:"company"`
	Admin   setupAdmin   `json:"admin"`
	Force   bool         `json:"force"`
	Note    string       `json:"note"`
}

type setupCompany struct {
	Name    string `json:"name"`
	RUC     string `json:"ruc"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type setupAdmin struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *Handler) handleSetup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		setup, err := h.store.GetSetup(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		resp := setupStatusResponse{Status: "pending", Note: setup.Note}
		if setup.IsCompleted {
			resp.Status = "completed"
		}
		if setup.CompletedAt != nil {
			resp.CompletedAt = setup.CompletedAt.Format(time.RFC3339)
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodPost:
		var req setupRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}

		req.Company.Name = strings.TrimSpace(req.Company.Name)
		req.Admin.Username = strings.TrimSpace(req.Admin.Username)
		if req.Company.Name == "" || req.Admin.Username == "" || req.Admin.Password == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "company.name, admin.username, and admin.password are required")
			return
		}
		if len(req.Admin.Password) < 8 {
			writeError(w, http.StatusBadRequest, "invalid_request", "admin.password must be at least 8 characters")
			return
		}

		result, err := h.store.RunSetup(r.Context(), store.SetupInput{
			Company: store.CompanyInput{
				Name:    req.Company.Name,
				RUC:     strings.TrimSpace(req.Company.RUC),
				Email:   strings.TrimSpace(req.Company.Email),
				Phone:   strings.TrimSpace(req.Company.Phone),
				Address: strings.TrimSpace(req.Company.Address),
			},
			Admin: store.AdminInput{
				Username:  req.Admin.Username,
				Email:     strings.TrimSpace(req.Admin.Email),
				Password:  req.Admin.Password,
				FirstName: strings.TrimSpace(req.Admin.FirstName),
				LastName:  strings.TrimSpace(req.Admin.LastName),
			},
			Force: req.Force,
			Note:  strings.TrimSpace(req.Note),
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
