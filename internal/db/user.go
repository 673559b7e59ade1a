package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Spok95/school-words/internal/ctxutil"
	"github.com/Spok95/school-words/internal/models"
)

const userColumns = `id, first_name, last_name, username, password_hash, grade, is_active, is_guest, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u       models.User
		created int64
	)
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.PasswordHash,
		&u.Grade, &u.IsActive, &u.IsGuest, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return &u, nil
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var exists bool
	err := s.conn.QueryRowContext(ctx,
		s.q(`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`), username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// CreateUser вставляет пользователя и проставляет ему ID.
// Гонку двух регистраций с одним логином решает UNIQUE: проигравший получает ErrUsernameTaken.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	err := s.conn.QueryRowContext(ctx, s.q(`
INSERT INTO users (first_name, last_name, username, password_hash, grade, is_active, is_guest, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`),
		u.FirstName, u.LastName, u.Username, u.PasswordHash, u.Grade, u.IsActive, u.IsGuest, u.CreatedAt.Unix(),
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	u, err := scanUser(s.conn.QueryRowContext(ctx,
		s.q(`SELECT `+userColumns+` FROM users WHERE username = $1`), username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	u, err := scanUser(s.conn.QueryRowContext(ctx,
		s.q(`SELECT `+userColumns+` FROM users WHERE id = $1`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// SetUserActive: единственная мутация пользователя после регистрации.
func (s *Store) SetUserActive(ctx context.Context, username string, active bool) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	u, err := scanUser(s.conn.QueryRowContext(ctx,
		s.q(`UPDATE users SET is_active = $1 WHERE username = $2 RETURNING `+userColumns), active, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// ListUsers: все пользователи по логину; pendingOnly оставляет только неактивных.
func (s *Store) ListUsers(ctx context.Context, pendingOnly bool) ([]models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users`
	if pendingOnly {
		query += ` WHERE is_active = FALSE`
	}
	query += ` ORDER BY username`

	rows, err := s.conn.QueryContext(ctx, s.q(query))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
