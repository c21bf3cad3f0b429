package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielsct56bm/cerro-service/internal/models"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

func (s *Store) GetSetup(ctx context.Context) (models.SystemSetup, error) {
	var setup models.SystemSetup
	var completedAt sql.NullTime
	err := s.pool.QueryRow(ctx,
		`SELECT is_completed, completed_at, note FROM system_setup WHERE id = 1`).
		Scan(&setup.IsCompleted, &completedAt, &setup.Note)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.SystemSetup{}, nil
	}
	if err != nil {
		return models.SystemSetup{}, err
	}
	setup.CompletedAt = nullTimePtr(completedAt)
	return setup, nil
}

// RunSetup bootstraps the first company, its three system roles and
// the initial admin account in one transaction. A second run fails
// with ErrSetupCompleted unless forced.
func (s *Store) RunSetup(ctx context.Context, input store.SetupInput) (store.SetupResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return store.SetupResult{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return store.SetupResult{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var completed bool
	err = tx.QueryRow(ctx,
		`SELECT is_completed FROM system_setup WHERE id = 1 FOR UPDATE`).Scan(&completed)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return store.SetupResult{}, err
	}
	err = nil
	if completed && !input.Force {
		err = store.ErrSetupCompleted
		return store.SetupResult{}, err
	}

	now := time.Now().UTC()
	company := models.Company{
		CompanyID: uuid.NewString(),
		Name:      input.Company.Name,
		RUC:       input.Company.RUC,
		Address:   input.Company.Address,
		Phone:     input.Company.Phone,
		Email:     input.Company.Email,
		Active:    true,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO companies (company_id, name, ruc, address, phone, email, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $7)
		 RETURNING created_at, updated_at`,
		company.CompanyID, company.Name, company.RUC, company.Address,
		company.Phone, company.Email, now).Scan(&company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		return store.SetupResult{}, err
	}

	roleNames := map[models.RoleKey]string{
		models.RoleAdmin:      "Administrator",
		models.RoleUser:       "User",
		models.RoleTechnician: "Technician",
	}
	roles := make([]models.Role, 0, len(roleNames))
	var adminRoleID string
	for _, key := range []models.RoleKey{models.RoleAdmin, models.RoleUser, models.RoleTechnician} {
		role := models.Role{
			RoleID:    uuid.NewString(),
			CompanyID: company.CompanyID,
			Key:       key,
			Name:      roleNames[key],
			IsSystem:  true,
			CreatedAt: now,
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO roles (role_id, company_id, key, name, is_system, created_at)
			 VALUES ($1, $2, $3, $4, TRUE, $5)`,
			role.RoleID, role.CompanyID, string(role.Key), role.Name, now)
		if err != nil {
			return store.SetupResult{}, err
		}
		if key == models.RoleAdmin {
			adminRoleID = role.RoleID
		}
		roles = append(roles, role)
	}

	admin := models.User{
		UserID:    uuid.NewString(),
		CompanyID: company.CompanyID,
		Username:  input.Admin.Username,
		Email:     input.Admin.Email,
		FirstName: input.Admin.FirstName,
		LastName:  input.Admin.LastName,
		RoleKey:   models.RoleAdmin,
		RoleName:  roleNames[models.RoleAdmin],
		CanAccess: true,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO users (user_id, company_id, role_id, username, email, password_hash,
		   first_name, last_name, can_access, must_change_password, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, FALSE, $9, $9)
		 RETURNING created_at, updated_at`,
		admin.UserID, admin.CompanyID, adminRoleID, admin.Username, admin.Email,
		string(hash), admin.FirstName, admin.LastName, now).
		Scan(&admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		return store.SetupResult{}, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO system_setup (id, is_completed, completed_at, note)
		 VALUES (1, TRUE, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET is_completed = TRUE, completed_at = $1, note = $2`,
		now, input.Note)
	if err != nil {
		return store.SetupResult{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return store.SetupResult{}, err
	}
	return store.SetupResult{Company: company, Admin: admin, Roles: roles}, nil
}
