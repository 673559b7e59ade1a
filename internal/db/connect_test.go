package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDSN(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		dialect Dialect
		dsn     string
	}{
		{"empty_falls_back_to_sqlite", "", SQLite, "instance/local.db"},
		{"blank_falls_back_to_sqlite", "   ", SQLite, "instance/local.db"},
		{"sqlalchemy_sqlite", "sqlite:////var/data/app.db", SQLite, "/var/data/app.db"},
		{"postgres_kept", "postgres://u:p@h:5432/db", Postgres, "postgres://u:p@h:5432/db"},
		{"postgresql_rewritten", "postgresql://u:p@h/db?sslmode=require", Postgres, "postgres://u:p@h/db?sslmode=require"},
		{"psycopg_rewritten", "postgresql+psycopg://u:p@h/db", Postgres, "postgres://u:p@h/db"},
		{"psycopg2_rewritten", "postgresql+psycopg2://u:p@h/db", Postgres, "postgres://u:p@h/db"},
		{"keyword_dsn_untouched", "host=localhost user=u dbname=db", Postgres, "host=localhost user=u dbname=db"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, dsn := NormalizeDSN(tc.raw, "instance/local.db")
			assert.Equal(t, tc.dialect, d)
			assert.Equal(t, tc.dsn, dsn)
		})
	}
}

func TestStoreRebind(t *testing.T) {
	pg := NewStore(nil, Postgres)
	lite := NewStore(nil, SQLite)

	q := `UPDATE users SET is_active = $1 WHERE username = $2`
	assert.Equal(t, q, pg.q(q))
	assert.Equal(t, `UPDATE users SET is_active = ? WHERE username = ?`, lite.q(q))
}
