package models

import "time"

type TicketCategory struct {
	CategoryID  string    `json:"category_id"`
	CompanyID   string    `json:"company_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Color       string    `json:"color,omitempty"`
	TemplateID  *string   `json:"template_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TicketSubcategory struct {
	SubcategoryID string    `json:"subcategory_id"`
	CategoryID    string    `json:"category_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Icon          string    `json:"icon,omitempty"`
	Color         string    `json:"color,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type TicketTemplate struct {
	TemplateID string                `json:"template_id"`
	CompanyID  string                `json:"company_id"`
	Name       string                `json:"name"`
	Theme      string                `json:"theme,omitempty"`
	IsActive   bool                  `json:"is_active"`
	Fields     []TicketTemplateField `json:"fields,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

const (
	FieldTypeText     = "text"
	FieldTypeSelect   = "select"
	FieldTypeToggle   = "toggle"
	FieldTypeEmail    = "email"
	FieldTypePhone    = "phone"
	FieldTypeNumber   = "number"
	FieldTypeDate     = "date"
	FieldTypeTextarea = "textarea"
)

func ValidFieldType(value string) bool {
	switch value {
	case FieldTypeText, FieldTypeSelect, FieldTypeToggle, FieldTypeEmail,
		FieldTypePhone, FieldTypeNumber, FieldTypeDate, FieldTypeTextarea:
		return true
	default:
		return false
	}
}

type TicketTemplateField struct {
	FieldID    string `json:"field_id"`
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	Label      string `json:"label"`
	FieldType  string `json:"field_type"`
	Required   bool   `json:"required"`
	Options    string `json:"options,omitempty"`
	OrderNo    int    `json:"order_no"`
}

// WorkSession is a named time-of-day window ("Morning" 08:00-12:00)
// used to tag the shift a ticket was created in.
type WorkSession struct {
	SessionID string    `json:"session_id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
