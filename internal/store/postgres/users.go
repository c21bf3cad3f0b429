package postgres

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielsct56bm/cerro-service/internal/models"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

const userColumns = `u.user_id, u.company_id, u.username, u.email, u.first_name, u.last_name,
	r.key, r.name, u.can_access, u.must_change_password, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	var roleKey string
	err := row.Scan(&u.UserID, &u.CompanyID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&roleKey, &u.RoleName, &u.CanAccess, &u.MustChangePassword, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	u.RoleKey = models.RoleKey(roleKey)
	return u, nil
}

// Login verifies credentials and mints a session. Every attempt is
// recorded in auth_login_audit, success or not. Unknown username and
// wrong password both come back as ErrInvalidCredentials.
func (s *Store) Login(ctx context.Context, input store.LoginInput) (store.LoginResult, error) {
	var user models.User
	var userID, passwordHash string
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+`, u.password_hash
		 FROM users u JOIN roles r ON r.role_id = u.role_id
		 WHERE u.username = $1`, input.Username)
	var roleKey string
	err := row.Scan(&user.UserID, &user.CompanyID, &user.Username, &user.Email,
		&user.FirstName, &user.LastName, &roleKey, &user.RoleName,
		&user.CanAccess, &user.MustChangePassword, &user.CreatedAt, &user.UpdatedAt,
		&passwordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		s.recordLoginAudit(ctx, "", false, input)
		return store.LoginResult{}, store.ErrInvalidCredentials
	}
	if err != nil {
		return store.LoginResult{}, err
	}
	user.RoleKey = models.RoleKey(roleKey)
	userID = user.UserID

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(input.Password)) != nil {
		s.recordLoginAudit(ctx, userID, false, input)
		return store.LoginResult{}, store.ErrInvalidCredentials
	}
	if !user.CanAccess {
		s.recordLoginAudit(ctx, userID, false, input)
		return store.LoginResult{}, store.ErrInvalidCredentials
	}

	session := models.Session{
		SessionID: uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(s.sessionTTL),
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (session_id, user_id, expires_at) VALUES ($1, $2, $3)`,
		session.SessionID, session.UserID, session.ExpiresAt)
	if err != nil {
		return store.LoginResult{}, err
	}

	s.recordLoginAudit(ctx, userID, true, input)
	return store.LoginResult{User: user, Session: session}, nil
}

// Audit writes are best effort; a failed insert never blocks login.
func (s *Store) recordLoginAudit(ctx context.Context, userID string, success bool, input store.LoginInput) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO auth_login_audit (audit_id, user_id, success, ip, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), nullIfEmpty(userID), success, input.IP, input.UserAgent, time.Now().UTC())
	if err != nil {
		log.Printf("login audit insert error=%v", err)
	}
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (models.Session, models.User, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return models.Session{}, models.User{}, store.ErrSessionNotFound
	}
	var session models.Session
	err := s.pool.QueryRow(ctx,
		`SELECT session_id, user_id, expires_at FROM sessions WHERE session_id = $1`,
		sessionID).Scan(&session.SessionID, &session.UserID, &session.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Session{}, models.User{}, store.ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, models.User{}, err
	}
	if time.Now().After(session.ExpiresAt) {
		_, _ = s.pool.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID)
		return models.Session{}, models.User{}, store.ErrSessionNotFound
	}

	user, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users u JOIN roles r ON r.role_id = u.role_id
		 WHERE u.user_id = $1`, session.UserID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Session{}, models.User{}, store.ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, models.User{}, err
	}
	return session, user, nil
}

func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID)
	return err
}

func (s *Store) ListUsers(ctx context.Context, companyID string) ([]models.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users u JOIN roles r ON r.role_id = u.role_id
		 WHERE u.company_id = $1 ORDER BY u.created_at ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, input store.CreateUserInput) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.User{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var taken bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, input.Username).Scan(&taken)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		err = store.ErrDuplicateUsername
		return models.User{}, err
	}

	var roleID, roleName string
	err = tx.QueryRow(ctx,
		`SELECT role_id, name FROM roles WHERE company_id = $1 AND key = $2`,
		input.CompanyID, string(input.RoleKey)).Scan(&roleID, &roleName)
	if errors.Is(err, pgx.ErrNoRows) {
		err = store.ErrRoleNotFound
		return models.User{}, err
	}
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	user := models.User{
		UserID:    uuid.NewString(),
		CompanyID: input.CompanyID,
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		RoleKey:   input.RoleKey,
		RoleName:  roleName,
		CanAccess: input.CanAccess,
		// admin-created accounts must rotate the handed-out password
		MustChangePassword: true,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO users (user_id, company_id, role_id, username, email, password_hash,
		   first_name, last_name, can_access, must_change_password, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10, $10)
		 RETURNING created_at, updated_at`,
		user.UserID, user.CompanyID, roleID, user.Username, user.Email, string(hash),
		user.FirstName, user.LastName, user.CanAccess, now).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, input store.UpdateUserInput) (models.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.User{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var roleID string
	err = tx.QueryRow(ctx,
		`SELECT role_id FROM roles WHERE company_id = $1 AND key = $2`,
		input.CompanyID, string(input.RoleKey)).Scan(&roleID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = store.ErrRoleNotFound
		return models.User{}, err
	}
	if err != nil {
		return models.User{}, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE users SET role_id = $1, can_access = $2, updated_at = $3
		 WHERE user_id = $4 AND company_id = $5`,
		roleID, input.CanAccess, time.Now().UTC(), input.UserID, input.CompanyID)
	if err != nil {
		return models.User{}, err
	}
	if tag.RowsAffected() == 0 {
		err = store.ErrUserNotFound
		return models.User{}, err
	}

	user, err := scanUser(tx.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users u JOIN roles r ON r.role_id = u.role_id
		 WHERE u.user_id = $1`, input.UserID))
	if err != nil {
		return models.User{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return models.User{}, err
	}
	return user, nil
}
