package libkv_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modernweb/assist/libkv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupLocalPostgresInstance(ctx context.Context) (string, func(), error) {
	cleanup := func() {}

	container, err := postgres.Run(ctx, "docker.io/postgres:17-alpine",
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return "", cleanup, err
	}

	cleanup = func() {
		timeout := time.Second
		_ = container.Stop(ctx, &timeout)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return "", cleanup, err
	}
	return connStr, cleanup, nil
}

func TestSystem_PostgresCRUD(t *testing.T) {
	ctx := context.Background()

	connStr, cleanup, err := setupLocalPostgresInstance(ctx)
	require.NoError(t, err)
	defer cleanup()

	manager, err := libkv.NewPostgresManager(ctx, connStr)
	require.NoError(t, err)
	defer manager.Close()

	kv, err := manager.Executor(ctx)
	require.NoError(t, err)

	key := "testkey"
	value := json.RawMessage(`{"sessions":[]}`)

	err = kv.Set(ctx, key, value)
	require.NoError(t, err)

	retrieved, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, retrieved)

	require.NoError(t, kv.Set(ctx, key, json.RawMessage(`{"sessions":[1]}`)))
	retrieved, err = kv.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`{"sessions":[1]}`), retrieved)

	err = kv.Delete(ctx, key)
	require.NoError(t, err)

	_, err = kv.Get(ctx, key)
	assert.ErrorIs(t, err, libkv.ErrNotFound)
}
