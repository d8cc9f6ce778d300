package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresKV keeps key-value entries in the kv_entries table
type PostgresKV struct {
	db  *Database
	ttl time.Duration
}

// NewPostgresKV creates a store over db. A zero ttl keeps entries forever.
func NewPostgresKV(db *Database, ttl time.Duration) *PostgresKV {
	return &PostgresKV{db: db, ttl: ttl}
}

func (p *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	query := `SELECT value FROM kv_entries
			  WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())`

	err := p.db.GetDB().GetContext(ctx, &value, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	now := time.Now().UTC()
	var expiresAt *time.Time
	if p.ttl > 0 {
		t := now.Add(p.ttl)
		expiresAt = &t
	}

	query := `INSERT INTO kv_entries (key, value, expires_at, updated_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (key) DO UPDATE
			  SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`

	_, err := p.db.GetDB().ExecContext(ctx, query, key, value, expiresAt, now)
	return err
}

func (p *PostgresKV) Remove(ctx context.Context, key string) error {
	_, err := p.db.GetDB().ExecContext(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	return err
}
