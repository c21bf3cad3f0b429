package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/danielsct56bm/cerro-service/internal/models"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

// querier is the slice of pgxpool.Pool / pgx.Tx the read helpers need,
// so they run both standalone and inside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const categoryColumns = `category_id, company_id, name, description, icon, color, template_id,
	is_active, created_at, updated_at`

func scanCategory(row pgx.Row) (models.TicketCategory, error) {
	var c models.TicketCategory
	var templateID sql.NullString
	err := row.Scan(&c.CategoryID, &c.CompanyID, &c.Name, &c.Description, &c.Icon, &c.Color,
		&templateID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.TicketCategory{}, err
	}
	c.TemplateID = nullStringPtr(templateID)
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, companyID string, activeOnly bool) ([]models.TicketCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM ticket_categories WHERE company_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := s.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.TicketCategory{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (s *Store) CreateCategory(ctx context.Context, category models.TicketCategory) (models.TicketCategory, error) {
	var taken bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ticket_categories WHERE company_id = $1 AND name = $2)`,
		category.CompanyID, category.Name).Scan(&taken)
	if err != nil {
		return models.TicketCategory{}, err
	}
	if taken {
		return models.TicketCategory{}, store.ErrDuplicateName
	}
	if category.TemplateID != nil {
		if err := s.templateBelongs(ctx, category.CompanyID, *category.TemplateID); err != nil {
			return models.TicketCategory{}, err
		}
	}

	category.CategoryID = uuid.NewString()
	category.IsActive = true
	now := time.Now().UTC()
	err = s.pool.QueryRow(ctx,
		`INSERT INTO ticket_categories (category_id, company_id, name, description, icon, color,
		   template_id, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $8)
		 RETURNING created_at, updated_at`,
		category.CategoryID, category.CompanyID, category.Name, category.Description,
		category.Icon, category.Color, category.TemplateID, now).
		Scan(&category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return models.TicketCategory{}, err
	}
	return category, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category models.TicketCategory) (models.TicketCategory, error) {
	if category.TemplateID != nil {
		if err := s.templateBelongs(ctx, category.CompanyID, *category.TemplateID); err != nil {
			return models.TicketCategory{}, err
		}
	}
	row := s.pool.QueryRow(ctx,
		`UPDATE ticket_categories
		 SET name = $1, description = $2, icon = $3, color = $4, template_id = $5,
		     is_active = $6, updated_at = $7
		 WHERE category_id = $8 AND company_id = $9
		 RETURNING `+categoryColumns,
		category.Name, category.Description, category.Icon, category.Color,
		category.TemplateID, category.IsActive, time.Now().UTC(),
		category.CategoryID, category.CompanyID)
	updated, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.TicketCategory{}, store.ErrCategoryNotFound
	}
	return updated, err
}

// DeleteCategory refuses to remove a category that already has
// tickets; deactivate it instead.
func (s *Store) DeleteCategory(ctx context.Context, companyID, categoryID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var inUse bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE category_id = $1)`, categoryID).Scan(&inUse)
	if err != nil {
		return err
	}
	if inUse {
		err = store.ErrCategoryInUse
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM ticket_subcategories WHERE category_id = $1`, categoryID)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx,
		`DELETE FROM ticket_categories WHERE category_id = $1 AND company_id = $2`,
		categoryID, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = store.ErrCategoryNotFound
		return err
	}
	return tx.Commit(ctx)
}

const subcategoryColumns = `subcategory_id, category_id, name, description, icon, color,
	is_active, created_at, updated_at`

func scanSubcategory(row pgx.Row) (models.TicketSubcategory, error) {
	var sc models.TicketSubcategory
	err := row.Scan(&sc.SubcategoryID, &sc.CategoryID, &sc.Name, &sc.Description,
		&sc.Icon, &sc.Color, &sc.IsActive, &sc.CreatedAt, &sc.UpdatedAt)
	return sc, err
}

func (s *Store) ListSubcategories(ctx context.Context, categoryID string, activeOnly bool) ([]models.TicketSubcategory, error) {
	query := `SELECT ` + subcategoryColumns + ` FROM ticket_subcategories WHERE category_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := s.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subcategories := []models.TicketSubcategory{}
	for rows.Next() {
		sc, err := scanSubcategory(rows)
		if err != nil {
			return nil, err
		}
		subcategories = append(subcategories, sc)
	}
	return subcategories, rows.Err()
}

func (s *Store) CreateSubcategory(ctx context.Context, subcategory models.TicketSubcategory) (models.TicketSubcategory, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ticket_categories WHERE category_id = $1)`,
		subcategory.CategoryID).Scan(&exists)
	if err != nil {
		return models.TicketSubcategory{}, err
	}
	if !exists {
		return models.TicketSubcategory{}, store.ErrCategoryNotFound
	}

	var taken bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ticket_subcategories WHERE category_id = $1 AND name = $2)`,
		subcategory.CategoryID, subcategory.Name).Scan(&taken)
	if err != nil {
		return models.TicketSubcategory{}, err
	}
	if taken {
		return models.TicketSubcategory{}, store.ErrDuplicateName
	}

	subcategory.SubcategoryID = uuid.NewString()
	subcategory.IsActive = true
	now := time.Now().UTC()
	err = s.pool.QueryRow(ctx,
		`INSERT INTO ticket_subcategories (subcategory_id, category_id, name, description,
		   icon, color, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $7)
		 RETURNING created_at, updated_at`,
		subcategory.SubcategoryID, subcategory.CategoryID, subcategory.Name,
		subcategory.Description, subcategory.Icon, subcategory.Color, now).
		Scan(&subcategory.CreatedAt, &subcategory.UpdatedAt)
	if err != nil {
		return models.TicketSubcategory{}, err
	}
	return subcategory, nil
}

func (s *Store) UpdateSubcategory(ctx context.Context, subcategory models.TicketSubcategory) (models.TicketSubcategory, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE ticket_subcategories
		 SET name = $1, description = $2, icon = $3, color = $4, is_active = $5, updated_at = $6
		 WHERE subcategory_id = $7 AND category_id = $8
		 RETURNING `+subcategoryColumns,
		subcategory.Name, subcategory.Description, subcategory.Icon, subcategory.Color,
		subcategory.IsActive, time.Now().UTC(), subcategory.SubcategoryID, subcategory.CategoryID)
	updated, err := scanSubcategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.TicketSubcategory{}, store.ErrSubcategoryNotFound
	}
	return updated, err
}

func (s *Store) DeleteSubcategory(ctx context.Context, categoryID, subcategoryID string) error {
	var inUse bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE subcategory_id = $1)`, subcategoryID).Scan(&inUse)
	if err != nil {
		return err
	}
	if inUse {
		return store.ErrSubcategoryInUse
	}

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM ticket_subcategories WHERE subcategory_id = $1 AND category_id = $2`,
		subcategoryID, categoryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrSubcategoryNotFound
	}
	return nil
}

func (s *Store) templateBelongs(ctx context.Context, companyID, templateID string) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ticket_templates WHERE template_id = $1 AND company_id = $2)`,
		templateID, companyID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrTemplateNotFound
	}
	return nil
}

func (s *Store) ListTemplates(ctx context.Context, companyID string) ([]models.TicketTemplate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT template_id, company_id, name, theme, is_active, created_at
		 FROM ticket_templates WHERE company_id = $1 ORDER BY name ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []models.TicketTemplate{}
	for rows.Next() {
		var t models.TicketTemplate
		if err := rows.Scan(&t.TemplateID, &t.CompanyID, &t.Name, &t.Theme, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range templates {
		fields, err := s.templateFields(ctx, s.pool, templates[i].TemplateID)
		if err != nil {
			return nil, err
		}
		templates[i].Fields = fields
	}
	return templates, nil
}

func (s *Store) templateFields(ctx context.Context, q querier, templateID string) ([]models.TicketTemplateField, error) {
	rows, err := q.Query(ctx,
		`SELECT field_id, template_id, name, label, field_type, required, options, order_no
		 FROM ticket_template_fields WHERE template_id = $1 ORDER BY order_no ASC`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := []models.TicketTemplateField{}
	for rows.Next() {
		var f models.TicketTemplateField
		if err := rows.Scan(&f.FieldID, &f.TemplateID, &f.Name, &f.Label, &f.FieldType,
			&f.Required, &f.Options, &f.OrderNo); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

func (s *Store) CreateTemplate(ctx context.Context, template models.TicketTemplate, fields []store.TemplateFieldInput) (models.TicketTemplate, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.TicketTemplate{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var taken bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ticket_templates WHERE company_id = $1 AND name = $2)`,
		template.CompanyID, template.Name).Scan(&taken)
	if err != nil {
		return models.TicketTemplate{}, err
	}
	if taken {
		err = store.ErrDuplicateName
		return models.TicketTemplate{}, err
	}

	template.TemplateID = uuid.NewString()
	template.IsActive = true
	now := time.Now().UTC()
	err = tx.QueryRow(ctx,
		`INSERT INTO ticket_templates (template_id, company_id, name, theme, is_active, created_at)
		 VALUES ($1, $2, $3, $4, TRUE, $5)
		 RETURNING created_at`,
		template.TemplateID, template.CompanyID, template.Name, template.Theme, now).
		Scan(&template.CreatedAt)
	if err != nil {
		return models.TicketTemplate{}, err
	}

	template.Fields, err = insertTemplateFields(ctx, tx, template.TemplateID, fields)
	if err != nil {
		return models.TicketTemplate{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return models.TicketTemplate{}, err
	}
	return template, nil
}

func insertTemplateFields(ctx context.Context, tx pgx.Tx, templateID string, fields []store.TemplateFieldInput) ([]models.TicketTemplateField, error) {
	out := make([]models.TicketTemplateField, 0, len(fields))
	for _, input := range fields {
		field := models.TicketTemplateField{
			FieldID:    uuid.NewString(),
			TemplateID: templateID,
			Name:       input.Name,
			Label:      input.Label,
			FieldType:  input.FieldType,
			Required:   input.Required,
			Options:    input.Options,
			OrderNo:    input.OrderNo,
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO ticket_template_fields (field_id, template_id, name, label, field_type, required, options, order_no)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			field.FieldID, field.TemplateID, field.Name, field.Label, field.FieldType,
			field.Required, field.Options, field.OrderNo)
		if err != nil {
			return nil, err
		}
		out = append(out, field)
	}
	return out, nil
}

// ReplaceTemplateFields swaps the full field set of a template.
func (s *Store) ReplaceTemplateFields(ctx context.Context, companyID, templateID string, fields []store.TemplateFieldInput) (models.TicketTemplate, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.TicketTemplate{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var template models.TicketTemplate
	err = tx.QueryRow(ctx,
		`SELECT template_id, company_id, name, theme, is_active, created_at
		 FROM ticket_templates WHERE template_id = $1 AND company_id = $2`,
		templateID, companyID).Scan(&template.TemplateID, &template.CompanyID,
		&template.Name, &template.Theme, &template.IsActive, &template.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = store.ErrTemplateNotFound
		return models.TicketTemplate{}, err
	}
	if err != nil {
		return models.TicketTemplate{}, err
	}

	_, err = tx.Exec(ctx, `DELETE FROM ticket_template_fields WHERE template_id = $1`, templateID)
	if err != nil {
		return models.TicketTemplate{}, err
	}
	template.Fields, err = insertTemplateFields(ctx, tx, templateID, fields)
	if err != nil {
		return models.TicketTemplate{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return models.TicketTemplate{}, err
	}
	return template, nil
}

// Work-session times are stored as TIME columns and read back as
// HH:MM text.
func listWorkSessions(ctx context.Context, q querier, companyID string, activeOnly bool) ([]models.WorkSession, error) {
	query := `SELECT session_id, company_id, name, to_char(start_time, 'HH24:MI'),
		to_char(end_time, 'HH24:MI'), is_active, created_at
		FROM work_sessions WHERE company_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []models.WorkSession{}
	for rows.Next() {
		var ws models.WorkSession
		if err := rows.Scan(&ws.SessionID, &ws.CompanyID, &ws.Name, &ws.StartTime,
			&ws.EndTime, &ws.IsActive, &ws.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, ws)
	}
	return sessions, rows.Err()
}

func (s *Store) ListWorkSessions(ctx context.Context, companyID string) ([]models.WorkSession, error) {
	return listWorkSessions(ctx, s.pool, companyID, false)
}

func (s *Store) CreateWorkSession(ctx context.Context, session models.WorkSession) (models.WorkSession, error) {
	session.SessionID = uuid.NewString()
	session.IsActive = true
	now := time.Now().UTC()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO work_sessions (session_id, company_id, name, start_time, end_time, is_active, created_at)
		 VALUES ($1, $2, $3, $4::time, $5::time, TRUE, $6)
		 RETURNING created_at`,
		session.SessionID, session.CompanyID, session.Name, session.StartTime,
		session.EndTime, now).Scan(&session.CreatedAt)
	if err != nil {
		return models.WorkSession{}, err
	}
	return session, nil
}

// KioskCatalog assembles the kiosk-facing view in one pass: active
// categories, their active subcategories, and the resolved template
// with its fields.
func (s *Store) KioskCatalog(ctx context.Context, companyID string) ([]store.KioskCategory, error) {
	categories, err := s.ListCategories(ctx, companyID, true)
	if err != nil {
		return nil, err
	}

	catalog := make([]store.KioskCategory, 0, len(categories))
	for _, category := range categories {
		entry := store.KioskCategory{Category: category}
		entry.Subcategories, err = s.ListSubcategories(ctx, category.CategoryID, true)
		if err != nil {
			return nil, err
		}
		if category.TemplateID != nil {
			template, err := s.getTemplate(ctx, companyID, *category.TemplateID)
			if err != nil && !errors.Is(err, store.ErrTemplateNotFound) {
				return nil, err
			}
			if err == nil && template.IsActive {
				entry.Template = &template
			}
		}
		catalog = append(catalog, entry)
	}
	return catalog, nil
}

func (s *Store) getTemplate(ctx context.Context, companyID, templateID string) (models.TicketTemplate, error) {
	var template models.TicketTemplate
	err := s.pool.QueryRow(ctx,
		`SELECT template_id, company_id, name, theme, is_active, created_at
		 FROM ticket_templates WHERE template_id = $1 AND company_id = $2`,
		templateID, companyID).Scan(&template.TemplateID, &template.CompanyID,
		&template.Name, &template.Theme, &template.IsActive, &template.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.TicketTemplate{}, store.ErrTemplateNotFound
	}
	if err != nil {
		return models.TicketTemplate{}, err
	}
	template.Fields, err = s.templateFields(ctx, s.pool, templateID)
	if err != nil {
		return models.TicketTemplate{}, err
	}
	return template, nil
}
