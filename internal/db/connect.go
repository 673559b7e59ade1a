package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// driverName: имя драйвера database/sql для диалекта.
func (d Dialect) driverName() string {
	if d == SQLite {
		return "sqlite"
	}
	return "pgx"
}

var legacyPostgresPrefixes = []string{
	"postgresql+psycopg2://",
	"postgresql+psycopg://",
	"postgresql://",
}

// NormalizeDSN приводит DATABASE_URL к виду, понятному драйверу.
// Пустой URL: локальная SQLite по fallbackPath.
func NormalizeDSN(raw, fallbackPath string) (Dialect, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SQLite, fallbackPath
	}
	if p, ok := strings.CutPrefix(raw, "sqlite:///"); ok {
		return SQLite, p
	}
	for _, prefix := range legacyPostgresPrefixes {
		if strings.HasPrefix(raw, prefix) {
			return Postgres, "postgres://" + strings.TrimPrefix(raw, prefix)
		}
	}
	return Postgres, raw
}

func sqliteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Open открывает базу, проверяет соединение и накатывает миграции.
func Open(ctx context.Context, databaseURL, sqlitePath string) (*Store, error) {
	dialect, dsn := NormalizeDSN(databaseURL, sqlitePath)
	if dialect == SQLite {
		if dir := filepath.Dir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		dsn = sqliteDSN(dsn)
	}

	conn, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if dialect == SQLite {
		// один писатель: иначе конкурентные INSERT ловят SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(10)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := Migrate(ctx, conn, dialect); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return NewStore(conn, dialect), nil
}
