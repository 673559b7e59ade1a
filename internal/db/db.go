package db

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// Store: доступ к users/sessions поверх *sql.DB.
// Запросы пишутся с плейсхолдерами $N; для SQLite они переписываются в "?".
type Store struct {
	conn    *sql.DB
	dialect Dialect
}

func NewStore(conn *sql.DB, dialect Dialect) *Store {
	return &Store{conn: conn, dialect: dialect}
}

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Close() error { return s.conn.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.conn.PingContext(ctx) }

var placeholderRe = regexp.MustCompile(`\$\d+`)

// q: каждый $N должен встречаться в запросе один раз и по порядку.
func (s *Store) q(query string) string {
	if s.dialect != SQLite {
		return query
	}
	return placeholderRe.ReplaceAllString(query, "?")
}
