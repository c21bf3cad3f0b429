package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/danielsct56bm/cerro-service/internal/models"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

func scanCompany(row pgx.Row) (models.Company, error) {
	var c models.Company
	err := row.Scan(&c.CompanyID, &c.Name, &c.RUC, &c.Address, &c.Phone, &c.Email,
		&c.Active, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) ListCompanies(ctx context.Context) ([]models.Company, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT company_id, name, ruc, address, phone, email, active, created_at, updated_at
		 FROM companies ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []models.Company{}
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

func (s *Store) UpdateCompany(ctx context.Context, company models.Company) (models.Company, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE companies
		 SET name = $1, ruc = $2, address = $3, phone = $4, email = $5, active = $6, updated_at = $7
		 WHERE company_id = $8
		 RETURNING company_id, name, ruc, address, phone, email, active, created_at, updated_at`,
		company.Name, company.RUC, company.Address, company.Phone, company.Email,
		company.Active, time.Now().UTC(), company.CompanyID)
	updated, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Company{}, store.ErrCompanyNotFound
	}
	return updated, err
}

// GetSettings falls back to the defaults when the company has never
// saved its settings row.
func (s *Store) GetSettings(ctx context.Context, companyID string) (models.CompanySettings, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM companies WHERE company_id = $1)`, companyID).Scan(&exists)
	if err != nil {
		return models.CompanySettings{}, err
	}
	if !exists {
		return models.CompanySettings{}, store.ErrCompanyNotFound
	}

	var settings models.CompanySettings
	err = s.pool.QueryRow(ctx,
		`SELECT company_id, welcome_message, maintenance_mode, maintenance_message,
		   kiosk_auto_refresh, kiosk_refresh_interval, kiosk_sound_notifications, updated_at
		 FROM company_settings WHERE company_id = $1`, companyID).
		Scan(&settings.CompanyID, &settings.WelcomeMessage, &settings.MaintenanceMode,
			&settings.MaintenanceMessage, &settings.KioskAutoRefresh,
			&settings.KioskRefreshInterval, &settings.KioskSoundNotification, &settings.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultCompanySettings(companyID), nil
	}
	return settings, err
}

func (s *Store) SaveSettings(ctx context.Context, settings models.CompanySettings) (models.CompanySettings, error) {
	settings.UpdatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO company_settings (company_id, welcome_message, maintenance_mode,
		   maintenance_message, kiosk_auto_refresh, kiosk_refresh_interval,
		   kiosk_sound_notifications, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (company_id) DO UPDATE SET
		   welcome_message = $2, maintenance_mode = $3, maintenance_message = $4,
		   kiosk_auto_refresh = $5, kiosk_refresh_interval = $6,
		   kiosk_sound_notifications = $7, updated_at = $8`,
		settings.CompanyID, settings.WelcomeMessage, settings.MaintenanceMode,
		settings.MaintenanceMessage, settings.KioskAutoRefresh,
		settings.KioskRefreshInterval, settings.KioskSoundNotification, settings.UpdatedAt)
	if err != nil {
		return models.CompanySettings{}, err
	}
	return settings, nil
}
