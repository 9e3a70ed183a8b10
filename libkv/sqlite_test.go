package libkv_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/modernweb/assist/libkv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnit_SQLiteCRUD(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "kv.db")
	manager, err := libkv.NewSQLiteManager(ctx, path)
	require.NoError(t, err)
	defer manager.Close()

	kv, err := manager.Executor(ctx)
	require.NoError(t, err)

	key := "testkey"
	value := json.RawMessage(`{"nested":"value"}`)

	err = kv.Set(ctx, key, value)
	require.NoError(t, err)

	retrieved, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, retrieved)

	exists, err := kv.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	err = kv.Delete(ctx, key)
	require.NoError(t, err)

	_, err = kv.Get(ctx, key)
	assert.ErrorIs(t, err, libkv.ErrNotFound)
}

func TestUnit_SQLiteUpsert(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "kv.db")
	manager, err := libkv.NewSQLiteManager(ctx, path)
	require.NoError(t, err)
	defer manager.Close()

	kv, err := manager.Executor(ctx)
	require.NoError(t, err)

	require.NoError(t, kv.Set(ctx, "k", json.RawMessage(`"first"`)))
	require.NoError(t, kv.Set(ctx, "k", json.RawMessage(`"second"`)))

	retrieved, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`"second"`), retrieved)
}

func TestUnit_SQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "kv.db")
	manager, err := libkv.NewSQLiteManager(ctx, path)
	require.NoError(t, err)

	kv, err := manager.Executor(ctx)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "persist", json.RawMessage(`42`)))
	require.NoError(t, manager.Close())

	reopened, err := libkv.NewSQLiteManager(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	kv, err = reopened.Executor(ctx)
	require.NoError(t, err)
	retrieved, err := kv.Get(ctx, "persist")
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`42`), retrieved)
}
