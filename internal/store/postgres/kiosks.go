package postgres

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/danielsct56bm/cerro-service/internal/models"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

const kioskColumns = `kiosk_id, company_id, user_id, name, mac_address, device_type,
	is_active, last_heartbeat, created_at, updated_at`

func scanKiosk(row pgx.Row) (models.Kiosk, error) {
	var k models.Kiosk
	var heartbeat sql.NullTime
	err := row.Scan(&k.KioskID, &k.CompanyID, &k.UserID, &k.Name, &k.MACAddress,
		&k.DeviceType, &k.IsActive, &heartbeat, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		return models.Kiosk{}, err
	}
	k.LastHeartbeat = nullTimePtr(heartbeat)
	return k, nil
}

func (s *Store) GetKiosk(ctx context.Context, kioskID string) (models.Kiosk, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+kioskColumns+` FROM kiosks WHERE kiosk_id = $1`, kioskID)
	kiosk, err := scanKiosk(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Kiosk{}, store.ErrKioskNotFound
	}
	return kiosk, err
}

func (s *Store) ListKiosks(ctx context.Context, companyID string) ([]models.Kiosk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+kioskColumns+` FROM kiosks WHERE company_id = $1 ORDER BY created_at ASC`,
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kiosks := []models.Kiosk{}
	for rows.Next() {
		kiosk, err := scanKiosk(rows)
		if err != nil {
			return nil, err
		}
		kiosks = append(kiosks, kiosk)
	}
	return kiosks, rows.Err()
}

func (s *Store) UpdateKiosk(ctx context.Context, companyID, kioskID, name string, isActive bool) (models.Kiosk, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE kiosks SET name = $1, is_active = $2, updated_at = $3
		 WHERE kiosk_id = $4 AND company_id = $5
		 RETURNING `+kioskColumns,
		name, isActive, time.Now().UTC(), kioskID, companyID)
	kiosk, err := scanKiosk(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Kiosk{}, store.ErrKioskNotFound
	}
	return kiosk, err
}

func (s *Store) UpdateKioskHeartbeat(ctx context.Context, kioskID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE kiosks SET last_heartbeat = $1 WHERE kiosk_id = $2`, at, kioskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrKioskNotFound
	}
	return nil
}

// CreateRegistrationToken mints a one-time registration token. Only
// the sha256 of the token is persisted; the raw value is returned
// once and never stored.
func (s *Store) CreateRegistrationToken(ctx context.Context, userID string, expiresAt time.Time) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO kiosk_registration_tokens (token_hash, user_id, is_used, expires_at, created_at)
		 VALUES ($1, $2, FALSE, $3, $4)`,
		hashToken(token), userID, expiresAt, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return token, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RegisterKiosk consumes a registration token and creates the kiosk.
// The token row is locked so a token can only register one device.
func (s *Store) RegisterKiosk(ctx context.Context, input store.RegisterKioskInput) (models.Kiosk, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Kiosk{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var tokenUser string
	var isUsed bool
	var expiresAt time.Time
	err = tx.QueryRow(ctx,
		`SELECT user_id, is_used, expires_at FROM kiosk_registration_tokens
		 WHERE token_hash = $1 FOR UPDATE`,
		hashToken(input.Token)).Scan(&tokenUser, &isUsed, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = store.ErrTokenNotFound
		return models.Kiosk{}, err
	}
	if err != nil {
		return models.Kiosk{}, err
	}
	if isUsed {
		err = store.ErrTokenUsed
		return models.Kiosk{}, err
	}
	if time.Now().After(expiresAt) {
		err = store.ErrTokenExpired
		return models.Kiosk{}, err
	}

	var companyID string
	err = tx.QueryRow(ctx,
		`SELECT company_id FROM users WHERE user_id = $1`, tokenUser).Scan(&companyID)
	if err != nil {
		return models.Kiosk{}, err
	}

	var macTaken bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM kiosks WHERE mac_address = $1)`,
		input.MACAddress).Scan(&macTaken)
	if err != nil {
		return models.Kiosk{}, err
	}
	if macTaken {
		err = store.ErrDuplicateMAC
		return models.Kiosk{}, err
	}

	now := time.Now().UTC()
	kiosk := models.Kiosk{
		KioskID:    uuid.NewString(),
		CompanyID:  companyID,
		UserID:     tokenUser,
		Name:       input.Name,
		MACAddress: input.MACAddress,
		DeviceType: input.DeviceType,
		IsActive:   true,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO kiosks (kiosk_id, company_id, user_id, name, mac_address, device_type,
		   is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $7)
		 RETURNING created_at, updated_at`,
		kiosk.KioskID, kiosk.CompanyID, kiosk.UserID, kiosk.Name, kiosk.MACAddress,
		kiosk.DeviceType, now).Scan(&kiosk.CreatedAt, &kiosk.UpdatedAt)
	if err != nil {
		return models.Kiosk{}, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE kiosk_registration_tokens SET is_used = TRUE WHERE token_hash = $1`,
		hashToken(input.Token))
	if err != nil {
		return models.Kiosk{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return models.Kiosk{}, err
	}
	return kiosk, nil
}

// CleanupExpired drops expired auth sessions and dead registration
// tokens. Called from the background ticker.
func (s *Store) CleanupExpired(ctx context.Context, now time.Time) (int, error) {
	total := 0
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return total, err
	}
	total += int(tag.RowsAffected())

	tag, err = s.pool.Exec(ctx,
		`DELETE FROM kiosk_registration_tokens WHERE is_used = TRUE OR expires_at < $1`, now)
	if err != nil {
		return total, err
	}
	total += int(tag.RowsAffected())
	return total, nil
}
