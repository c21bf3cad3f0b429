package httpapi

import (
	"context"
	"time"

	"github.com/danielsct56bm/cerro-service/internal/models"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

// fakeStore implements store.Store with overridable func fields. Nil
// fields return zero values so each test only wires what it needs.
type fakeStore struct {
	getSetup func(ctx context.Context) (models.SystemSetup, error)
	runSetup func(ctx context.Context, input store.SetupInput) (store.SetupResult, error)

	login         func(ctx context.Context, input store.LoginInput) (store.LoginResult, error)
	getSession    func(ctx context.Context, sessionID string) (models.Session, models.User, error)
	deleteSession func(ctx context.Context, sessionID string) error

	listUsers  func(ctx context.Context, companyID string) ([]models.User, error)
	createUser func(ctx context.Context, input store.CreateUserInput) (models.User, error)
	updateUser func(ctx context.Context, input store.UpdateUserInput) (models.User, error)

	listCompanies func(ctx context.Context) ([]models.Company, error)
	updateCompany func(ctx context.Context, company models.Company) (models.Company, error)
	getSettings   func(ctx context.Context, companyID string) (models.CompanySettings, error)
	saveSettings  func(ctx context.Context, settings models.CompanySettings) (models.CompanySettings, error)

	listCategories    func(ctx context.Context, companyID string, activeOnly bool) ([]models.TicketCategory, error)
	createCategory    func(ctx context.Context, category models.TicketCategory) (models.TicketCategory, error)
	updateCategory    func(ctx context.Context, category models.TicketCategory) (models.TicketCategory, error)
	deleteCategory    func(ctx context.Context, companyID, categoryID string) error
	listSubcategories func(ctx context.Context, categoryID string, activeOnly bool) ([]models.TicketSubcategory, error)
	createSubcategory func(ctx context.Context, subcategory models.TicketSubcategory) (models.TicketSubcategory, error)
	updateSubcategory func(ctx context.Context, subcategory models.TicketSubcategory) (models.TicketSubcategory, error)
	deleteSubcategory func(ctx context.Context, categoryID, subcategoryID string) error
	listTemplates     func(ctx context.Context, companyID string) ([]models.TicketTemplate, error)
	createTemplate    func(ctx context.Context, template models.TicketTemplate, fields []store.TemplateFieldInput) (models.TicketTemplate, error)
	replaceFields     func(ctx context.Context, companyID, templateID string, fields []store.TemplateFieldInput) (models.TicketTemplate, error)
	listWorkSessions  func(ctx context.Context, companyID string) ([]models.WorkSession, error)
	createWorkSession func(ctx context.Context, session models.WorkSession) (models.WorkSession, error)
	kioskCatalog      func(ctx context.Context, companyID string) ([]store.KioskCategory, error)

	createTicketWithTurn func(ctx context.Context, input store.CreateTicketInput) (models.Ticket, models.TicketTurn, error)
	getTicket            func(ctx context.Context, companyID, ticketID string) (models.Ticket, error)
	listTickets          func(ctx context.Context, filter store.TicketFilter) ([]models.Ticket, error)
	updateTicketStatus   func(ctx context.Context, companyID, ticketID, status, assignedTo string) (models.Ticket, error)
	callTurn             func(ctx context.Context, companyID, turnID string, calledAt time.Time) (store.CallTurnResult, error)
	firstCompany         func(ctx context.Context) (models.Company, error)
	categoryName         func(ctx context.Context, companyID, categoryID string) (string, error)

	getKiosk        func(ctx context.Context, kioskID string) (models.Kiosk, error)
	listKiosks      func(ctx context.Context, companyID string) ([]models.Kiosk, error)
	updateKiosk     func(ctx context.Context, companyID, kioskID, name string, isActive bool) (models.Kiosk, error)
	updateHeartbeat func(ctx context.Context, kioskID string, at time.Time) error
	createRegToken  func(ctx context.Context, userID string, expiresAt time.Time) (string, error)
	registerKiosk   func(ctx context.Context, input store.RegisterKioskInput) (models.Kiosk, error)
	cleanupExpired  func(ctx context.Context, now time.Time) (int, error)
}

func (f *fakeStore) GetSetup(ctx context.Context) (models.SystemSetup, error) {
	if f.getSetup == nil {
		return models.SystemSetup{}, nil
	}
	return f.getSetup(ctx)
}

func (f *fakeStore) RunSetup(ctx context.Context, input store.SetupInput) (store.SetupResult, error) {
	if f.runSetup == nil {
		return store.SetupResult{}, nil
	}
	return f.runSetup(ctx, input)
}

func (f *fakeStore) Login(ctx context.Context, input store.LoginInput) (store.LoginResult, error) {
	if f.login == nil {
		return store.LoginResult{}, store.ErrInvalidCredentials
	}
	return f.login(ctx, input)
}

func (f *fakeStore) GetSession(ctx context.Context, sessionID string) (models.Session, models.User, error) {
	if f.getSession == nil {
		return models.Session{}, models.User{}, store.ErrSessionNotFound
	}
	return f.getSession(ctx, sessionID)
}

func (f *fakeStore) DeleteSession(ctx context.Context, sessionID string) error {
	if f.deleteSession == nil {
		return nil
	}
	return f.deleteSession(ctx, sessionID)
}

func (f *fakeStore) ListUsers(ctx context.Context, companyID string) ([]models.User, error) {
	if f.listUsers == nil {
		return nil, nil
	}
	return f.listUsers(ctx, companyID)
}

func (f *fakeStore) CreateUser(ctx context.Context, input store.CreateUserInput) (models.User, error) {
	if f.createUser == nil {
		return models.User{}, nil
	}
	return f.createUser(ctx, input)
}

func (f *fakeStore) UpdateUser(ctx context.Context, input store.UpdateUserInput) (models.User, error) {
	if f.updateUser == nil {
		return models.User{}, nil
	}
	return f.updateUser(ctx, input)
}

func (f *fakeStore) ListCompanies(ctx context.Context) ([]models.Company, error) {
	if f.listCompanies == nil {
		return nil, nil
	}
	return f.listCompanies(ctx)
}

func (f *fakeStore) UpdateCompany(ctx context.Context, company models.Company) (models.Company, error) {
	if f.updateCompany == nil {
		return company, nil
	}
	return f.updateCompany(ctx, company)
}

func (f *fakeStore) GetSettings(ctx context.Context, companyID string) (models.CompanySettings, error) {
	if f.getSettings == nil {
		return models.DefaultCompanySettings(companyID), nil
	}
	return f.getSettings(ctx, companyID)
}

func (f *fakeStore) SaveSettings(ctx context.Context, settings models.CompanySettings) (models.CompanySettings, error) {
	if f.saveSettings == nil {
		return settings, nil
	}
	return f.saveSettings(ctx, settings)
}

func (f *fakeStore) ListCategories(ctx context.Context, companyID string, activeOnly bool) ([]models.TicketCategory, error) {
	if f.listCategories == nil {
		return nil, nil
	}
	return f.listCategories(ctx, companyID, activeOnly)
}

func (f *fakeStore) CreateCategory(ctx context.Context, category models.TicketCategory) (models.TicketCategory, error) {
	if f.createCategory == nil {
		return category, nil
	}
	return f.createCategory(ctx, category)
}

func (f *fakeStore) UpdateCategory(ctx context.Context, category models.TicketCategory) (models.TicketCategory, error) {
	if f.updateCategory == nil {
		return category, nil
	}
	return f.updateCategory(ctx, category)
}

func (f *fakeStore) DeleteCategory(ctx context.Context, companyID, categoryID string) error {
	if f.deleteCategory == nil {
		return nil
	}
	return f.deleteCategory(ctx, companyID, categoryID)
}

func (f *fakeStore) ListSubcategories(ctx context.Context, categoryID string, activeOnly bool) ([]models.TicketSubcategory, error) {
	if f.listSubcategories == nil {
		return nil, nil
	}
	return f.listSubcategories(ctx, categoryID, activeOnly)
}

func (f *fakeStore) CreateSubcategory(ctx context.Context, subcategory models.TicketSubcategory) (models.TicketSubcategory, error) {
	if f.createSubcategory == nil {
		return subcategory, nil
	}
	return f.createSubcategory(ctx, subcategory)
}

func (f *fakeStore) UpdateSubcategory(ctx context.Context, subcategory models.TicketSubcategory) (models.TicketSubcategory, error) {
	if f.updateSubcategory == nil {
		return subcategory, nil
	}
	return f.updateSubcategory(ctx, subcategory)
}

func (f *fakeStore) DeleteSubcategory(ctx context.Context, categoryID, subcategoryID string) error {
	if f.deleteSubcategory == nil {
		return nil
	}
	return f.deleteSubcategory(ctx, categoryID, subcategoryID)
}

func (f *fakeStore) ListTemplates(ctx context.Context, companyID string) ([]models.TicketTemplate, error) {
	if f.listTemplates == nil {
		return nil, nil
	}
	return f.listTemplates(ctx, companyID)
}

func (f *fakeStore) CreateTemplate(ctx context.Context, template models.TicketTemplate, fields []store.TemplateFieldInput) (models.TicketTemplate, error) {
	if f.createTemplate == nil {
		return template, nil
	}
	return f.createTemplate(ctx, template, fields)
}

func (f *fakeStore) ReplaceTemplateFields(ctx context.Context, companyID, templateID string, fields []store.TemplateFieldInput) (models.TicketTemplate, error) {
	if f.replaceFields == nil {
		return models.TicketTemplate{}, nil
	}
	return f.replaceFields(ctx, companyID, templateID, fields)
}

func (f *fakeStore) ListWorkSessions(ctx context.Context, companyID string) ([]models.WorkSession, error) {
	if f.listWorkSessions == nil {
		return nil, nil
	}
	return f.listWorkSessions(ctx, companyID)
}

func (f *fakeStore) CreateWorkSession(ctx context.Context, session models.WorkSession) (models.WorkSession, error) {
	if f.createWorkSession == nil {
		return session, nil
	}
	return f.createWorkSession(ctx, session)
}

func (f *fakeStore) KioskCatalog(ctx context.Context, companyID string) ([]store.KioskCategory, error) {
	if f.kioskCatalog == nil {
		return nil, nil
	}
	return f.kioskCatalog(ctx, companyID)
}

func (f *fakeStore) CreateTicketWithTurn(ctx context.Context, input store.CreateTicketInput) (models.Ticket, models.TicketTurn, error) {
	if f.createTicketWithTurn == nil {
		return models.Ticket{}, models.TicketTurn{}, nil
	}
	return f.createTicketWithTurn(ctx, input)
}

func (f *fakeStore) GetTicket(ctx context.Context, companyID, ticketID string) (models.Ticket, error) {
	if f.getTicket == nil {
		return models.Ticket{}, store.ErrTicketNotFound
	}
	return f.getTicket(ctx, companyID, ticketID)
}

func (f *fakeStore) ListTickets(ctx context.Context, filter store.TicketFilter) ([]models.Ticket, error) {
	if f.listTickets == nil {
		return nil, nil
	}
	return f.listTickets(ctx, filter)
}

func (f *fakeStore) UpdateTicketStatus(ctx context.Context, companyID, ticketID, status, assignedTo string) (models.Ticket, error) {
	if f.updateTicketStatus == nil {
		return models.Ticket{}, nil
	}
	return f.updateTicketStatus(ctx, companyID, ticketID, status, assignedTo)
}

func (f *fakeStore) CallTurn(ctx context.Context, companyID, turnID string, calledAt time.Time) (store.CallTurnResult, error) {
	if f.callTurn == nil {
		return store.CallTurnResult{}, store.ErrTurnNotFound
	}
	return f.callTurn(ctx, companyID, turnID, calledAt)
}

func (f *fakeStore) FirstCompany(ctx context.Context) (models.Company, error) {
	if f.firstCompany == nil {
		return models.Company{CompanyID: "c1"}, nil
	}
	return f.firstCompany(ctx)
}

func (f *fakeStore) CategoryName(ctx context.Context, companyID, categoryID string) (string, error) {
	if f.categoryName == nil {
		return "", nil
	}
	return f.categoryName(ctx, companyID, categoryID)
}

func (f *fakeStore) GetKiosk(ctx context.Context, kioskID string) (models.Kiosk, error) {
	if f.getKiosk == nil {
		return models.Kiosk{}, store.ErrKioskNotFound
	}
	return f.getKiosk(ctx, kioskID)
}

func (f *fakeStore) ListKiosks(ctx context.Context, companyID string) ([]models.Kiosk, error) {
	if f.listKiosks == nil {
		return nil, nil
	}
	return f.listKiosks(ctx, companyID)
}

func (f *fakeStore) UpdateKiosk(ctx context.Context, companyID, kioskID, name string, isActive bool) (models.Kiosk, error) {
	if f.updateKiosk == nil {
		return models.Kiosk{}, nil
	}
	return f.updateKiosk(ctx, companyID, kioskID, name, isActive)
}

func (f *fakeStore) UpdateKioskHeartbeat(ctx context.Context, kioskID string, at time.Time) error {
	if f.updateHeartbeat == nil {
		return nil
	}
	return f.updateHeartbeat(ctx, kioskID, at)
}

func (f *fakeStore) CreateRegistrationToken(ctx context.Context, userID string, expiresAt time.Time) (string, error) {
	if f.createRegToken == nil {
		return "token", nil
	}
	return f.createRegToken(ctx, userID, expiresAt)
}

func (f *fakeStore) RegisterKiosk(ctx context.Context, input store.RegisterKioskInput) (models.Kiosk, error) {
	if f.registerKiosk == nil {
		return models.Kiosk{}, nil
	}
	return f.registerKiosk(ctx, input)
}

func (f *fakeStore) CleanupExpired(ctx context.Context, now time.Time) (int, error) {
	if f.cleanupExpired == nil {
		return 0, nil
	}
	return f.cleanupExpired(ctx, now)
}
