package store

import (
	"context"
	"time"

	"github.com/danielsct56bm/cerro-service/internal/models"
)

type SetupInput struct {
	Company CompanyInput
	Admin   AdminInput
	Force   bool
	Note    string
}

type CompanyInput struct {
	Name    string
	RUC     string
	Email   string
	Phone   string
	Address string
}

type AdminInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type SetupResult struct {
	Company models.Company
	Admin   models.User
	Roles   []models.Role
}

type SetupStore interface {
	GetSetup(ctx context.Context) (models.SystemSetup, error)
	RunSetup(ctx context.Context, input SetupInput) (SetupResult, error)
}

type LoginInput struct {
	Username  string
	Password  string
	IP        string
	UserAgent string
}

type LoginResult struct {
	User    models.User
	Session models.Session
}

type AuthStore interface {
	Login(ctx context.Context, input LoginInput) (LoginResult, error)
	GetSession(ctx context.Context, sessionID string) (models.Session, models.User, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type CreateUserInput struct {
	CompanyID string
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleKey   models.RoleKey
	CanAccess bool
}

type UpdateUserInput struct {
	UserID    string
	CompanyID string
	RoleKey   models.RoleKey
	CanAccess bool
}

type UserStore interface {
	ListUsers(ctx context.Context, companyID string) ([]models.User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (models.User, error)
	UpdateUser(ctx context.Context, input UpdateUserInput) (models.User, error)
}

type CompanyStore interface {
	ListCompanies(ctx context.Context) ([]models.Company, error)
	UpdateCompany(ctx context.Context, company models.Company) (models.Company, error)
	GetSettings(ctx context.Context, companyID string) (models.CompanySettings, error)
	SaveSettings(ctx context.Context, settings models.CompanySettings) (models.CompanySettings, error)
}

type TemplateFieldInput struct {
	Name      string
	Label     string
	FieldType string
	Required  bool
	Options   string
	OrderNo   int
}

type TaxonomyStore interface {
	ListCategories(ctx context.Context, companyID string, activeOnly bool) ([]models.TicketCategory, error)
	CreateCategory(ctx context.Context, category models.TicketCategory) (models.TicketCategory, error)
	UpdateCategory(ctx context.Context, category models.TicketCategory) (models.TicketCategory, error)
	DeleteCategory(ctx context.Context, companyID, categoryID string) error

	ListSubcategories(ctx context.Context, categoryID string, activeOnly bool) ([]models.TicketSubcategory, error)
	CreateSubcategory(ctx context.Context, subcategory models.TicketSubcategory) (models.TicketSubcategory, error)
	UpdateSubcategory(ctx context.Context, subcategory models.TicketSubcategory) (models.TicketSubcategory, error)
	DeleteSubcategory(ctx context.Context, categoryID, subcategoryID string) error

	ListTemplates(ctx context.Context, companyID string) ([]models.TicketTemplate, error)
	CreateTemplate(ctx context.Context, template models.TicketTemplate, fields []TemplateFieldInput) (models.TicketTemplate, error)
	ReplaceTemplateFields(ctx context.Context, companyID, templateID string, fields []TemplateFieldInput) (models.TicketTemplate, error)

	ListWorkSessions(ctx context.Context, companyID string) ([]models.WorkSession, error)
	CreateWorkSession(ctx context.Context, session models.WorkSession) (models.WorkSession, error)

	// KioskCatalog is the kiosk-facing view: active categories with
	// active subcategories and resolved template field definitions.
	KioskCatalog(ctx context.Context, companyID string) ([]KioskCategory, error)
}

type KioskCategory struct {
	Category      models.TicketCategory      `json:"category"`
	Subcategories []models.TicketSubcategory `json:"subcategories"`
	Template      *models.TicketTemplate     `json:"template,omitempty"`
}

type CreateTicketInput struct {
	CompanyID     string
	RequesterID   string
	CategoryID    string
	SubcategoryID string
	FormData      string
	Priority      string
	CreatedAt     time.Time
}

type TicketFilter struct {
	CompanyID  string
	Status     string
	CategoryID string
}

type CallTurnResult struct {
	Turn models.TicketTurn
	// Transitioned reports whether this call flipped the turn from
	// uncalled to called; repeat calls only refresh called_at.
	Transitioned bool
	Ticket       models.Ticket
	CategoryName string
}

type TicketStore interface {
	CreateTicketWithTurn(ctx context.Context, input CreateTicketInput) (models.Ticket, models.TicketTurn, error)
	GetTicket(ctx context.Context, companyID, ticketID string) (models.Ticket, error)
	ListTickets(ctx context.Context, filter TicketFilter) ([]models.Ticket, error)
	UpdateTicketStatus(ctx context.Context, companyID, ticketID, status, assignedTo string) (models.Ticket, error)
	CallTurn(ctx context.Context, companyID, turnID string, calledAt time.Time) (CallTurnResult, error)
	FirstCompany(ctx context.Context) (models.Company, error)
	CategoryName(ctx context.Context, companyID, categoryID string) (string, error)
}

type RegisterKioskInput struct {
	Token      string
	Name       string
	MACAddress string
	DeviceType string
}

type KioskStore interface {
	GetKiosk(ctx context.Context, kioskID string) (models.Kiosk, error)
	ListKiosks(ctx context.Context, companyID string) ([]models.Kiosk, error)
	UpdateKiosk(ctx context.Context, companyID, kioskID, name string, isActive bool) (models.Kiosk, error)
	UpdateKioskHeartbeat(ctx context.Context, kioskID string, at time.Time) error
	CreateRegistrationToken(ctx context.Context, userID string, expiresAt time.Time) (token string, err error)
	RegisterKiosk(ctx context.Context, input RegisterKioskInput) (models.Kiosk, error)
	CleanupExpired(ctx context.Context, now time.Time) (int, error)
}

// Store is the full persistence surface, implemented by
// store/postgres and faked in handler tests.
type Store interface {
	SetupStore
	AuthStore
	UserStore
	CompanyStore
	TaxonomyStore
	TicketStore
	KioskStore
}
