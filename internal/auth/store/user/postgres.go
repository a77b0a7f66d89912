package user

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"vims/internal/auth/models"
	"vims/internal/platform/postgres"
	id "vims/pkg/domain"
	"vims/pkg/platform/sentinel"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, username, email, first_name, last_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(u.ID), u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.CreatedAt,
	)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("username %q taken: %w", u.Username, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.scanOne(ctx, `SELECT id, username, email, first_name, last_name, password_hash, created_at
		FROM users WHERE id = $1`, uuid.UUID(userID))
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.scanOne(ctx, `SELECT id, username, email, first_name, last_name, password_hash, created_at
		FROM users WHERE lower(username) = lower($1)`, username)
}

func (s *PostgresStore) scanOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		u   models.User
		uid uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&uid, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.ID = id.UserID(uid)
	return &u, nil
}
