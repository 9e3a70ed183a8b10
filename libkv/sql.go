package libkv

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed schema_sqlite.sql
var schemaSQLite string

//go:embed schema_postgres.sql
var schemaPostgres string

// sqlManager implements Manager over a database/sql connection with a
// single kv table. Shared by the SQLite and Postgres backends; both
// drivers accept $N placeholders.
type sqlManager struct {
	db *sql.DB
}

// NewSQLiteManager opens (or creates) a SQLite-backed kv store at path.
// The parent directory is created if missing.
func NewSQLiteManager(ctx context.Context, path string) (Manager, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite parent dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite connection failed: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	return &sqlManager{db: db}, nil
}

// NewPostgresManager connects to Postgres with the given DSN and ensures
// the kv table exists.
func NewPostgresManager(ctx context.Context, dsn string) (Manager, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaPostgres); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &sqlManager{db: db}, nil
}

func (m *sqlManager) Executor(ctx context.Context) (KV, error) {
	return &sqlKV{db: m.db}, nil
}

func (m *sqlManager) Close() error {
	return m.db.Close()
}

type sqlKV struct {
	db *sql.DB
}

func (k *sqlKV) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value []byte
	err := k.db.QueryRowContext(ctx, `
		SELECT value
		FROM kv
		WHERE key = $1`,
		key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key-value pair: %w", err)
	}
	return value, nil
}

func (k *sqlKV) Set(ctx context.Context, key string, value json.RawMessage) error {
	now := time.Now().UTC()
	_, err := k.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = $2, updated_at = $4`,
		key,
		[]byte(value),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to set key-value pair: %w", err)
	}
	return nil
}

func (k *sqlKV) Delete(ctx context.Context, key string) error {
	result, err := k.db.ExecContext(ctx, `
		DELETE FROM kv
		WHERE key = $1`,
		key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete key-value pair: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (k *sqlKV) Exists(ctx context.Context, key string) (bool, error) {
	var one int
	err := k.db.QueryRowContext(ctx, `
		SELECT 1
		FROM kv
		WHERE key = $1`,
		key,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check key existence: %w", err)
	}
	return true, nil
}
