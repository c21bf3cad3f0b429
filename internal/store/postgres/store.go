package postgres

import (
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool       *pgxpool.Pool
	sessionTTL time.Duration
}

func NewStore(pool *pgxpool.Pool, sessionTTL time.Duration) *Store {
	if sessionTTL <= 0 {
		sessionTTL = 8 * time.Hour
	}
	return &Store{pool: pool, sessionTTL: sessionTTL}
}

func nullTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
