// Package libkv provides the key-value persistence collaborator used by the
// conversation store. Backends: in-memory (single-process), SQLite (local
// mode), Postgres (server mode), and Valkey.
package libkv

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrNotFound = errors.New("kv: key not found")
var ErrManagerClosed = errors.New("kv: manager closed")

// KV is the executor surface for a key-value backend. Values are opaque
// JSON payloads; the store addresses a single fixed key.
type KV interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Manager owns the backend connection and hands out executors.
type Manager interface {
	Executor(ctx context.Context) (KV, error)
	Close() error
}

// Config holds connection settings for networked backends.
type Config struct {
	Addr     string
	Password string
}
