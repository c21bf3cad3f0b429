package models

import "time"

type Ticket struct {
	TicketID      string     `json:"ticket_id"`
	Code          string     `json:"code"`
	CompanyID     string     `json:"company_id"`
	RequesterID   *string    `json:"requester_id,omitempty"`
	AssignedTo    *string    `json:"assigned_to,omitempty"`
	CategoryID    string     `json:"category_id"`
	SubcategoryID *string    `json:"subcategory_id,omitempty"`
	TemplateID    *string    `json:"template_id,omitempty"`
	FormData      string     `json:"form_data,omitempty"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	SessionID     *string    `json:"session_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
	StatusCanceled   = "canceled"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

func ValidPriority(value string) bool {
	switch value {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// TicketTurn is the waiting-line position for a ticket, one per
// ticket. turn_number is unique and dense within (category, day).
type TicketTurn struct {
	TurnID         string     `json:"turn_id"`
	TicketID       string     `json:"ticket_id"`
	TurnNumber     int        `json:"turn_number"`
	DisplayMessage string     `json:"display_message"`
	IsCalled       bool       `json:"is_called"`
	CalledAt       *time.Time `json:"called_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
