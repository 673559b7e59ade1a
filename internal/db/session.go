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

func (s *Store) CreateSession(ctx context.Context, sess models.Session) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := s.conn.ExecContext(ctx,
		s.q(`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`),
		sess.ID, sess.UserID, sess.CreatedAt.Unix(), sess.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var (
		sess             models.Session
		created, expires int64
	)
	err := s.conn.QueryRowContext(ctx,
		s.q(`SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = $1`), id,
	).Scan(&sess.ID, &sess.UserID, &created, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	sess.CreatedAt = time.Unix(created, 0).UTC()
	sess.ExpiresAt = time.Unix(expires, 0).UTC()
	return &sess, nil
}

// DeleteSession не считает ошибкой отсутствие строки: logout безусловный.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if _, err := s.conn.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE id = $1`), id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteExpiredSessions чистит протухшие сессии пользователя; зовётся при входе.
func (s *Store) DeleteExpiredSessions(ctx context.Context, userID int64, now time.Time) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.conn.ExecContext(ctx,
		s.q(`DELETE FROM sessions WHERE user_id = $1 AND expires_at <= $2`), userID, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
