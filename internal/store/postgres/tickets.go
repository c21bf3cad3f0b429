package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/danielsct56bm/cerro-service/internal/models"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

const ticketColumns = `ticket_id, code, company_id, requester_id, assigned_to, category_id,
	subcategory_id, template_id, form_data, status, priority, work_session_id,
	created_at, updated_at, resolved_at`

func scanTicket(row pgx.Row) (models.Ticket, error) {
	var t models.Ticket
	var requester, assigned, subcategory, template, session sql.NullString
	var resolved sql.NullTime
	err := row.Scan(&t.TicketID, &t.Code, &t.CompanyID, &requester, &assigned, &t.CategoryID,
		&subcategory, &template, &t.FormData, &t.Status, &t.Priority, &session,
		&t.CreatedAt, &t.UpdatedAt, &resolved)
	if err != nil {
		return models.Ticket{}, err
	}
	t.RequesterID = nullStringPtr(requester)
	t.AssignedTo = nullStringPtr(assigned)
	t.SubcategoryID = nullStringPtr(subcategory)
	t.TemplateID = nullStringPtr(template)
	t.SessionID = nullStringPtr(session)
	t.ResolvedAt = nullTimePtr(resolved)
	return t, nil
}

// CreateTicketWithTurn creates the ticket and its turn in one
// transaction. The turn number comes from an upsert on
// turn_sequences keyed by (category, day); the row lock serializes
// concurrent creates so numbers stay dense, and the day in the key
// resets the counter at server-local midnight.
func (s *Store) CreateTicketWithTurn(ctx context.Context, input store.CreateTicketInput) (models.Ticket, models.TicketTurn, error) {
	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Ticket{}, models.TicketTurn{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var categoryName string
	var templateID sql.NullString
	err = tx.QueryRow(ctx,
		`SELECT name, template_id FROM ticket_categories
		 WHERE category_id = $1 AND company_id = $2 AND is_active = TRUE`,
		input.CategoryID, input.CompanyID).Scan(&categoryName, &templateID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = store.ErrCategoryNotFound
		return models.Ticket{}, models.TicketTurn{}, err
	}
	if err != nil {
		return models.Ticket{}, models.TicketTurn{}, err
	}

	if input.SubcategoryID != "" {
		var exists bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM ticket_subcategories
			 WHERE subcategory_id = $1 AND category_id = $2 AND is_active = TRUE)`,
			input.SubcategoryID, input.CategoryID).Scan(&exists)
		if err != nil {
			return models.Ticket{}, models.TicketTurn{}, err
		}
		if !exists {
			err = store.ErrSubcategoryNotFound
			return models.Ticket{}, models.TicketTurn{}, err
		}
	}

	sessions, err := listWorkSessions(ctx, tx, input.CompanyID, true)
	if err != nil {
		return models.Ticket{}, models.TicketTurn{}, err
	}
	var sessionID *string
	if resolved, ok := store.ResolveWorkSession(sessions, createdAt); ok {
		sessionID = &resolved.SessionID
	}

	code, err := store.GenerateTicketCode(ctx, createdAt, func(ctx context.Context, candidate string) (bool, error) {
		var exists bool
		scanErr := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE code = $1)`, candidate).Scan(&exists)
		return exists, scanErr
	})
	if err != nil {
		return models.Ticket{}, models.TicketTurn{}, err
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	ticket := models.Ticket{
		TicketID:   uuid.NewString(),
		Code:       code,
		CompanyID:  input.CompanyID,
		CategoryID: input.CategoryID,
		FormData:   input.FormData,
		Status:     models.StatusOpen,
		Priority:   priority,
	}
	ticket.RequesterID = optionalID(input.RequesterID)
	ticket.SubcategoryID = optionalID(input.SubcategoryID)
	ticket.TemplateID = nullStringPtr(templateID)
	ticket.SessionID = sessionID

	err = tx.QueryRow(ctx,
		`INSERT INTO tickets (ticket_id, code, company_id, requester_id, category_id,
		   subcategory_id, template_id, form_data, status, priority, work_session_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		 RETURNING created_at, updated_at`,
		ticket.TicketID, ticket.Code, ticket.CompanyID, nullIfEmpty(input.RequesterID),
		ticket.CategoryID, nullIfEmpty(input.SubcategoryID), ticket.TemplateID,
		ticket.FormData, ticket.Status, ticket.Priority, sessionID, createdAt,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		return models.Ticket{}, models.TicketTurn{}, err
	}

	var turnNumber int
	err = tx.QueryRow(ctx,
		`INSERT INTO turn_sequences (category_id, day, next_number)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (category_id, day)
		 DO UPDATE SET next_number = turn_sequences.next_number + 1
		 RETURNING next_number`,
		input.CategoryID, createdAt.Format("2006-01-02")).Scan(&turnNumber)
	if err != nil {
		return models.Ticket{}, models.TicketTurn{}, err
	}

	turn := models.TicketTurn{
		TurnID:         uuid.NewString(),
		TicketID:       ticket.TicketID,
		TurnNumber:     turnNumber,
		DisplayMessage: fmt.Sprintf("Turn %03d - %s", turnNumber, categoryName),
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO ticket_turns (turn_id, ticket_id, turn_number, display_message, is_called, created_at)
		 VALUES ($1, $2, $3, $4, FALSE, $5)
		 RETURNING created_at`,
		turn.TurnID, turn.TicketID, turn.TurnNumber, turn.DisplayMessage, createdAt,
	).Scan(&turn.CreatedAt)
	if err != nil {
		return models.Ticket{}, models.TicketTurn{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, models.TicketTurn{}, err
	}
	return ticket, turn, nil
}

func optionalID(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func (s *Store) GetTicket(ctx context.Context, companyID, ticketID string) (models.Ticket, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE ticket_id = $1 AND company_id = $2`,
		ticketID, companyID)
	ticket, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Ticket{}, store.ErrTicketNotFound
	}
	return ticket, err
}

func (s *Store) ListTickets(ctx context.Context, filter store.TicketFilter) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE company_id = $1`
	args := []interface{}{filter.CompanyID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []models.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// UpdateTicketStatus moves the ticket to a new status. Transition
// legality is checked against the current status inside the
// transaction; resolved_at is stamped on entering resolved and
// cleared on reopen.
func (s *Store) UpdateTicketStatus(ctx context.Context, companyID, ticketID, status, assignedTo string) (models.Ticket, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Ticket{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var current string
	err = tx.QueryRow(ctx,
		`SELECT status FROM tickets WHERE ticket_id = $1 AND company_id = $2 FOR UPDATE`,
		ticketID, companyID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		err = store.ErrTicketNotFound
		return models.Ticket{}, err
	}
	if err != nil {
		return models.Ticket{}, err
	}
	if !store.ValidTransition(status, current) {
		err = store.ErrInvalidState
		return models.Ticket{}, err
	}

	now := time.Now().UTC()
	query := `UPDATE tickets SET status = $1, updated_at = $2`
	args := []interface{}{status, now}
	switch status {
	case models.StatusResolved:
		args = append(args, now)
		query += fmt.Sprintf(", resolved_at = $%d", len(args))
	case models.StatusOpen, models.StatusInProgress:
		// reopening clears the resolution stamp
		query += ", resolved_at = NULL"
	}
	if assignedTo != "" {
		args = append(args, assignedTo)
		query += fmt.Sprintf(", assigned_to = $%d", len(args))
	}
	args = append(args, ticketID, companyID)
	query += fmt.Sprintf(" WHERE ticket_id = $%d AND company_id = $%d RETURNING %s",
		len(args)-1, len(args), ticketColumns)

	ticket, err := scanTicket(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return models.Ticket{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

// CallTurn marks a turn as called. The prior is_called value is read
// under a row lock so the caller can tell a first call (broadcast)
// from a repeat call (refresh called_at only).
func (s *Store) CallTurn(ctx context.Context, companyID, turnID string, calledAt time.Time) (store.CallTurnResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return store.CallTurnResult{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var result store.CallTurnResult
	var wasCalled bool
	var ticketID string
	err = tx.QueryRow(ctx,
		`SELECT t.is_called, t.ticket_id
		 FROM ticket_turns t
		 JOIN tickets tk ON tk.ticket_id = t.ticket_id
		 WHERE t.turn_id = $1 AND tk.company_id = $2
		 FOR UPDATE OF t`,
		turnID, companyID).Scan(&wasCalled, &ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = store.ErrTurnNotFound
		return store.CallTurnResult{}, err
	}
	if err != nil {
		return store.CallTurnResult{}, err
	}

	var called sql.NullTime
	err = tx.QueryRow(ctx,
		`UPDATE ticket_turns SET is_called = TRUE, called_at = $2
		 WHERE turn_id = $1
		 RETURNING turn_id, ticket_id, turn_number, display_message, is_called, called_at, created_at`,
		turnID, calledAt).Scan(&result.Turn.TurnID, &result.Turn.TicketID, &result.Turn.TurnNumber,
		&result.Turn.DisplayMessage, &result.Turn.IsCalled, &called, &result.Turn.CreatedAt)
	if err != nil {
		return store.CallTurnResult{}, err
	}
	result.Turn.CalledAt = nullTimePtr(called)
	result.Transitioned = !wasCalled

	row := tx.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE ticket_id = $1`, ticketID)
	result.Ticket, err = scanTicket(row)
	if err != nil {
		return store.CallTurnResult{}, err
	}
	err = tx.QueryRow(ctx,
		`SELECT name FROM ticket_categories WHERE category_id = $1`,
		result.Ticket.CategoryID).Scan(&result.CategoryName)
	if err != nil {
		return store.CallTurnResult{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return store.CallTurnResult{}, err
	}
	return result, nil
}

func (s *Store) FirstCompany(ctx context.Context) (models.Company, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT company_id, name, ruc, address, phone, email, active, created_at, updated_at
		 FROM companies ORDER BY created_at ASC LIMIT 1`)
	company, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Company{}, store.ErrCompanyNotFound
	}
	return company, err
}

func (s *Store) CategoryName(ctx context.Context, companyID, categoryID string) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx,
		`SELECT name FROM ticket_categories WHERE category_id = $1 AND company_id = $2`,
		categoryID, companyID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", store.ErrCategoryNotFound
	}
	return name, err
}
