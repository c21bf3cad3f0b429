package httpapi

import (
	"net/http"
	"strings"

	"github.com/danielsct56bm/cerro-service/internal/models"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

type categoryRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Color       string  `json:"color"`
	TemplateID  *string `json:"template_id"`
	IsActive    *bool   `json:"is_active"`
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		info, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		activeOnly := r.URL.Query().Get("active") == "true"
		categories, err := h.store.ListCategories(r.Context(), info.User.CompanyID, activeOnly)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, categories)
	case http.MethodPost:
		info, ok := h.requireRole(w, r, models.RoleAdmin)
		if !ok {
			return
		}
		var req categoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
			return
		}
		if req.TemplateID != nil && !isValidUUID(*req.TemplateID) {
			writeError(w, http.StatusBadRequest, "invalid_request", "template_id must be a UUID when provided")
			return
		}

		category, err := h.store.CreateCategory(r.Context(), models.TicketCategory{
			CompanyID:   info.User.CompanyID,
			Name:        req.Name,
			Description: strings.TrimSpace(req.Description),
			Icon:        strings.TrimSpace(req.Icon),
			Color:       strings.TrimSpace(req.Color),
			TemplateID:  req.TemplateID,
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, category)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleCategoryByID routes /api/categories/{id} and
// /api/categories/{id}/subcategories[/{subID}].
func (h *Handler) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/categories/"), "/")
	categoryID := parts[0]
	if !isValidUUID(categoryID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "category id must be a UUID")
		return
	}

	switch {
	case len(parts) == 1:
		h.handleCategory(w, r, categoryID)
	case len(parts) == 2 && parts[1] == "subcategories":
		h.handleSubcategories(w, r, categoryID)
	case len(parts) == 3 && parts[1] == "subcategories":
		h.handleSubcategoryByID(w, r, categoryID, parts[2])
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleCategory(w http.ResponseWriter, r *http.Request, categoryID string) {
	switch r.Method {
	case http.MethodPatch:
		info, ok := h.requireRole(w, r, models.RoleAdmin)
		if !ok {
			return
		}
		current, err := h.findCategory(r, info.User.CompanyID, categoryID)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		var req categoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		applyCategoryPatch(&current, req)
		if req.TemplateID != nil && *req.TemplateID != "" && !isValidUUID(*req.TemplateID) {
			writeError(w, http.StatusBadRequest, "invalid_request", "template_id must be a UUID when provided")
			return
		}

		updated, err := h.store.UpdateCategory(r.Context(), current)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		info, ok := h.requireRole(w, r, models.RoleAdmin)
		if !ok {
			return
		}
		if err := h.store.DeleteCategory(r.Context(), info.User.CompanyID, categoryID); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) findCategory(r *http.Request, companyID, categoryID string) (models.TicketCategory, error) {
	categories, err := h.store.ListCategories(r.Context(), companyID, false)
	if err != nil {
		return models.TicketCategory{}, err
	}
	for _, category := range categories {
		if category.CategoryID == categoryID {
			return category, nil
		}
	}
	return models.TicketCategory{}, store.ErrCategoryNotFound
}

func applyCategoryPatch(category *models.TicketCategory, req categoryRequest) {
	if name := strings.TrimSpace(req.Name); name != "" {
		category.Name = name
	}
	if req.Description != "" {
		category.Description = strings.TrimSpace(req.Description)
	}
	if req.Icon != "" {
		category.Icon = strings.TrimSpace(req.Icon)
	}
	if req.Color != "" {
		category.Color = strings.TrimSpace(req.Color)
	}
	if req.TemplateID != nil {
		if *req.TemplateID == "" {
			category.TemplateID = nil
		} else {
			category.TemplateID = req.TemplateID
		}
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
}

type subcategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	IsActive    *bool  `json:"is_active"`
}

func (h *Handler) handleSubcategories(w http.ResponseWriter, r *http.Request, categoryID string) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := h.requireUser(w, r); !ok {
			return
		}
		activeOnly := r.URL.Query().Get("active") == "true"
		subcategories, err := h.store.ListSubcategories(r.Context(), categoryID, activeOnly)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, subcategories)
	case http.MethodPost:
		if _, ok := h.requireRole(w, r, models.RoleAdmin); !ok {
			return
		}
		var req subcategoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
			return
		}

		subcategory, err := h.store.CreateSubcategory(r.Context(), models.TicketSubcategory{
			CategoryID:  categoryID,
			Name:        req.Name,
			Description: strings.TrimSpace(req.Description),
			Icon:        strings.TrimSpace(req.Icon),
			Color:       strings.TrimSpace(req.Color),
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, subcategory)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleSubcategoryByID(w http.ResponseWriter, r *http.Request, categoryID, subcategoryID string) {
	if !isValidUUID(subcategoryID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "subcategory id must be a UUID")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		if _, ok := h.requireRole(w, r, models.RoleAdmin); !ok {
			return
		}
		current, err := h.findSubcategory(r, categoryID, subcategoryID)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		var req subcategoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		if name := strings.TrimSpace(req.Name); name != "" {
			current.Name = name
		}
		if req.Description != "" {
			current.Description = strings.TrimSpace(req.Description)
		}
		if req.Icon != "" {
			current.Icon = strings.TrimSpace(req.Icon)
		}
		if req.Color != "" {
			current.Color = strings.TrimSpace(req.Color)
		}
		if req.IsActive != nil {
			current.IsActive = *req.IsActive
		}

		updated, err := h.store.UpdateSubcategory(r.Context(), current)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if _, ok := h.requireRole(w, r, models.RoleAdmin); !ok {
			return
		}
		if err := h.store.DeleteSubcategory(r.Context(), categoryID, subcategoryID); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) findSubcategory(r *http.Request, categoryID, subcategoryID string) (models.TicketSubcategory, error) {
	subcategories, err := h.store.ListSubcategories(r.Context(), categoryID, false)
	if err != nil {
		return models.TicketSubcategory{}, err
	}
	for _, subcategory := range subcategories {
		if subcategory.SubcategoryID == subcategoryID {
			return subcategory, nil
		}
	}
	return models.TicketSubcategory{}, store.ErrSubcategoryNotFound
}

type templateRequest struct {
	Name   string                 `json:"name"`
	Theme  string                 `json:"theme"`
	Fields []templateFieldRequest `json:"fields"`
}

type templateFieldRequest struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	FieldType string `json:"field_type"`
	Required  bool   `json:"required"`
	Options   string `json:"options"`
	OrderNo   int    `json:"order_no"`
}

func (h *Handler) handleTemplates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		info, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		templates, err := h.store.ListTemplates(r.Context(), info.User.CompanyID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, templates)
	case http.MethodPost:
		info, ok := h.requireRole(w, r, models.RoleAdmin)
		if !ok {
			return
		}
		var req templateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
			return
		}
		fields, fieldErr := templateFields(req.Fields)
		if fieldErr != "" {
			writeError(w, http.StatusBadRequest, "invalid_request", fieldErr)
			return
		}

		template, err := h.store.CreateTemplate(r.Context(), models.TicketTemplate{
			CompanyID: info.User.CompanyID,
			Name:      req.Name,
			Theme:     strings.TrimSpace(req.Theme),
		}, fields)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, template)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleTemplateByID routes /api/templates/{id}/fields.
func (h *Handler) handleTemplateByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/templates/"), "/")
	if len(parts) != 2 || parts[1] != "fields" {
		http.NotFound(w, r)
		return
	}
	templateID := parts[0]
	if !isValidUUID(templateID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "template id must be a UUID")
		return
	}
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info, ok := h.requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	var req struct {
		Fields []templateFieldRequest `json:"fields"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	fields, fieldErr := templateFields(req.Fields)
	if fieldErr != "" {
		writeError(w, http.StatusBadRequest, "invalid_request", fieldErr)
		return
	}

	template, err := h.store.ReplaceTemplateFields(r.Context(), info.User.CompanyID, templateID, fields)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, template)
}

func templateFields(reqs []templateFieldRequest) ([]store.TemplateFieldInput, string) {
	fields := make([]store.TemplateFieldInput, 0, len(reqs))
	for i, field := range reqs {
		field.Name = strings.TrimSpace(field.Name)
		field.Label = strings.TrimSpace(field.Label)
		if field.Name == "" || field.Label == "" {
			return nil, "every field needs a name and a label"
		}
		if !models.ValidFieldType(field.FieldType) {
			return nil, "unknown field_type " + field.FieldType
		}
		if field.FieldType == models.FieldTypeSelect && strings.TrimSpace(field.Options) == "" {
			return nil, "select fields need options"
		}
		orderNo := field.OrderNo
		if orderNo == 0 {
			orderNo = i + 1
		}
		fields = append(fields, store.TemplateFieldInput{
			Name:      field.Name,
			Label:     field.Label,
			FieldType: field.FieldType,
			Required:  field.Required,
			Options:   strings.TrimSpace(field.Options),
			OrderNo:   orderNo,
		})
	}
	return fields, ""
}

type workSessionRequest struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (h *Handler) handleWorkSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		info, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		sessions, err := h.store.ListWorkSessions(r.Context(), info.User.CompanyID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessions)
	case http.MethodPost:
		info, ok := h.requireRole(w, r, models.RoleAdmin)
		if !ok {
			return
		}
		var req workSessionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.StartTime = strings.TrimSpace(req.StartTime)
		req.EndTime = strings.TrimSpace(req.EndTime)
		if req.Name == "" || !validClockTime(req.StartTime) || !validClockTime(req.EndTime) {
			writeError(w, http.StatusBadRequest, "invalid_request", "name, start_time, and end_time (HH:MM) are required")
			return
		}

		session, err := h.store.CreateWorkSession(r.Context(), models.WorkSession{
			CompanyID: info.User.CompanyID,
			Name:      req.Name,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, session)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func validClockTime(value string) bool {
	if len(value) != 5 || value[2] != ':' {
		return false
	}
	hh := value[:2]
	mm := value[3:]
	for _, part := range []string{hh, mm} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return hh <= "23" && mm <= "59"
}
