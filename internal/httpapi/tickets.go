package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/danielsct56bm/cerro-service/internal/models"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

// kioskCompany resolves the company a kiosk request targets. Kiosks
// are unauthenticated; an explicit company_id query parameter wins,
// otherwise the first registered company is assumed.
func (h *Handler) kioskCompany(r *http.Request) (string, error) {
	if companyID := strings.TrimSpace(r.URL.Query().Get("company_id")); companyID != "" {
		if !isValidUUID(companyID) {
			return "", store.ErrCompanyNotFound
		}
		return companyID, nil
	}
	company, err := h.store.FirstCompany(r.Context())
	if err != nil {
		return "", err
	}
	return company.CompanyID, nil
}

func (h *Handler) handleKioskTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	companyID, err := h.kioskCompany(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	catalog, err := h.store.KioskCatalog(r.Context(), companyID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

type kioskStatusResponse struct {
	Maintenance bool                   `json:"maintenance"`
	Settings    models.CompanySettings `json:"settings"`
}

func (h *Handler) handleKioskStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	companyID, err := h.kioskCompany(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	settings, err := h.store.GetSettings(r.Context(), companyID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kioskStatusResponse{
		Maintenance: settings.MaintenanceMode,
		Settings:    settings,
	})
}

type createTicketRequest struct {
	CategoryID    string `json:"category_id"`
	SubcategoryID string `json:"subcategory_id"`
	FormData      string `json:"form_data"`
	Priority      string `json:"priority"`
	RequesterID   string `json:"requester_id"`
}

type createTicketResponse struct {
	Message string            `json:"message"`
	Ticket  models.Ticket     `json:"ticket"`
	Turn    models.TicketTurn `json:"turn"`
}

func (h *Handler) handleKioskTickets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	companyID, err := h.kioskCompany(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	settings, err := h.store.GetSettings(r.Context(), companyID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if settings.MaintenanceMode {
		writeError(w, http.StatusServiceUnavailable, "maintenance", settings.MaintenanceMessage)
		return
	}

	var req createTicketRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.CategoryID = strings.TrimSpace(req.CategoryID)
	req.SubcategoryID = strings.TrimSpace(req.SubcategoryID)
	if !isValidUUID(req.CategoryID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "category_id must be a UUID")
		return
	}
	if req.SubcategoryID != "" && !isValidUUID(req.SubcategoryID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "subcategory_id must be a UUID when provided")
		return
	}
	if req.RequesterID != "" && !isValidUUID(req.RequesterID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "requester_id must be a UUID when provided")
		return
	}
	priority := strings.TrimSpace(req.Priority)
	if priority == "" {
		priority = models.PriorityNormal
	}
	if !models.ValidPriority(priority) {
		writeError(w, http.StatusBadRequest, "invalid_request", "priority must be low, normal, high, or urgent")
		return
	}

	ticket, turn, err := h.store.CreateTicketWithTurn(r.Context(), store.CreateTicketInput{
		CompanyID:     companyID,
		RequesterID:   req.RequesterID,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		FormData:      req.FormData,
		Priority:      priority,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	categoryName, err := h.store.CategoryName(r.Context(), companyID, ticket.CategoryID)
	if err != nil {
		categoryName = ""
	}
	h.events.TurnCreated(companyID, categoryName, ticket, turn)

	writeJSON(w, http.StatusCreated, createTicketResponse{
		Message: "ticket created",
		Ticket:  ticket,
		Turn:    turn,
	})
}

func (h *Handler) handleTickets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	filter := store.TicketFilter{CompanyID: info.User.CompanyID}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		filter.Status = status
	}
	if categoryID := strings.TrimSpace(r.URL.Query().Get("category_id")); categoryID != "" {
		if !isValidUUID(categoryID) {
			writeError(w, http.StatusBadRequest, "invalid_request", "category_id must be a UUID")
			return
		}
		filter.CategoryID = categoryID
	}

	tickets, err := h.store.ListTickets(r.Context(), filter)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

type updateStatusRequest struct {
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`
}

// handleTicketByID routes /api/tickets/{id} and
// /api/tickets/{id}/status.
func (h *Handler) handleTicketByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/tickets/"), "/")
	ticketID := parts[0]
	if !isValidUUID(ticketID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "ticket id must be a UUID")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		info, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		ticket, err := h.store.GetTicket(r.Context(), info.User.CompanyID, ticketID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ticket)
	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPost:
		info, ok := h.requireRole(w, r, models.RoleAdmin, models.RoleTechnician)
		if !ok {
			return
		}

		var req updateStatusRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		req.Status = strings.TrimSpace(req.Status)
		req.AssignedTo = strings.TrimSpace(req.AssignedTo)
		if req.Status == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "status is required")
			return
		}
		if req.AssignedTo != "" && !isValidUUID(req.AssignedTo) {
			writeError(w, http.StatusBadRequest, "invalid_request", "assigned_to must be a UUID when provided")
			return
		}

		ticket, err := h.store.UpdateTicketStatus(r.Context(), info.User.CompanyID, ticketID, req.Status, req.AssignedTo)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ticket)
	case len(parts) == 1 || (len(parts) == 2 && parts[1] == "status"):
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

// handleTurnActions routes /api/turns/{id}/call. The broadcast fires
// only when the call flips the turn from uncalled to called; repeat
// calls refresh called_at without re-announcing.
func (h *Handler) handleTurnActions(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/turns/"), "/")
	if len(parts) != 2 || parts[1] != "call" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	turnID := parts[0]
	if !isValidUUID(turnID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "turn id must be a UUID")
		return
	}
	info, ok := h.requireRole(w, r, models.RoleAdmin, models.RoleTechnician)
	if !ok {
		return
	}

	result, err := h.store.CallTurn(r.Context(), info.User.CompanyID, turnID, time.Now().UTC())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if result.Transitioned {
		h.events.TurnCalled(info.User.CompanyID, result.CategoryName, result.Ticket, result.Turn)
	}
	writeJSON(w, http.StatusOK, result.Turn)
}
