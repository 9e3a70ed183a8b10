package sessionstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/modernweb/assist/libkv"
	"github.com/modernweb/assist/sessionstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (context.Context, libkv.KV, *sessionstore.Store) {
	t.Helper()
	ctx := context.Background()
	manager := libkv.NewInMem()
	t.Cleanup(func() { _ = manager.Close() })
	kv, err := manager.Executor(ctx)
	require.NoError(t, err)
	return ctx, kv, sessionstore.New(kv, nil)
}

func TestUnit_LoadBootstrapsFreshSession(t *testing.T) {
	ctx, _, store := setupStore(t)

	store.Load(ctx)

	sessions := store.Sessions()
	require.Len(t, sessions, 1)
	require.Len(t, sessions[0].Messages, 1)
	assert.Equal(t, sessionstore.SenderAssistant, sessions[0].Messages[0].Sender)
	assert.Equal(t, sessionstore.Greeting, sessions[0].Messages[0].Text)
	assert.Equal(t, sessionstore.DefaultTitle, sessions[0].Title)
	assert.Equal(t, sessions[0].ID, store.ActiveID())
}

func TestUnit_StartNewSessionSeedsGreetingAndActivates(t *testing.T) {
	ctx, _, store := setupStore(t)
	store.Load(ctx)

	id := store.StartNewSession(ctx)

	assert.Equal(t, id, store.ActiveID())
	active, err := store.Active()
	require.NoError(t, err)
	require.NotEmpty(t, active.Messages)
	assert.Equal(t, sessionstore.SenderAssistant, active.Messages[0].Sender)
}

func TestUnit_AppendAssignsMonotonicIDs(t *testing.T) {
	ctx, _, store := setupStore(t)
	store.Load(ctx)

	first, err := store.AppendToActive(ctx, sessionstore.Message{Text: "hello", Sender: sessionstore.SenderUser})
	require.NoError(t, err)
	second, err := store.AppendToActive(ctx, sessionstore.Message{Text: "again", Sender: sessionstore.SenderUser})
	require.NoError(t, err)

	// The greeting holds ID 1; appended messages continue from there.
	assert.Equal(t, int64(2), first.ID)
	assert.Equal(t, int64(3), second.ID)

	active, err := store.Active()
	require.NoError(t, err)
	for i := 1; i < len(active.Messages); i++ {
		assert.Greater(t, active.Messages[i].ID, active.Messages[i-1].ID)
	}
}

func TestUnit_TitleDerivedFromFirstUserMessage(t *testing.T) {
	ctx, _, store := setupStore(t)
	store.Load(ctx)

	long := strings.Repeat("a", 40)
	_, err := store.AppendToActive(ctx, sessionstore.Message{Text: long, Sender: sessionstore.SenderUser})
	require.NoError(t, err)

	active, err := store.Active()
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 30)+"...", active.Title)

	// The title sticks to the first user message.
	_, err = store.AppendToActive(ctx, sessionstore.Message{Text: "different", Sender: sessionstore.SenderUser})
	require.NoError(t, err)
	active, err = store.Active()
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 30)+"...", active.Title)
}

func TestUnit_RetentionCap(t *testing.T) {
	ctx, _, store := setupStore(t)
	store.Load(ctx)

	oldest := store.ActiveID()
	for i := 0; i < sessionstore.MaxSessions; i++ {
		store.StartNewSession(ctx)
	}

	sessions := store.Sessions()
	require.Len(t, sessions, sessionstore.MaxSessions)
	for _, s := range sessions {
		assert.NotEqual(t, oldest, s.ID, "oldest session should have been evicted")
	}
}

func TestUnit_DeleteActiveStartsNewSession(t *testing.T) {
	ctx, _, store := setupStore(t)
	store.Load(ctx)

	active := store.ActiveID()
	store.DeleteSession(ctx, active)

	// Active never dangles: a fresh session replaces the deleted one.
	newActive := store.ActiveID()
	require.NotEmpty(t, newActive)
	assert.NotEqual(t, active, newActive)
	_, err := store.Active()
	require.NoError(t, err)
}

func TestUnit_DeleteInactiveKeepsActive(t *testing.T) {
	ctx, _, store := setupStore(t)
	store.Load(ctx)

	first := store.ActiveID()
	second := store.StartNewSession(ctx)

	store.DeleteSession(ctx, first)

	assert.Equal(t, second, store.ActiveID())
	assert.Len(t, store.Sessions(), 1)
}

func TestUnit_SwitchUnknownIDIgnored(t *testing.T) {
	ctx, _, store := setupStore(t)
	store.Load(ctx)

	active := store.ActiveID()
	store.SwitchSession(ctx, "no-such-session")
	assert.Equal(t, active, store.ActiveID())
}

func TestUnit_PersistReloadKeepsOrderAndCounts(t *testing.T) {
	ctx, kv, store := setupStore(t)
	store.Load(ctx)

	_, err := store.AppendToActive(ctx, sessionstore.Message{Text: "first session", Sender: sessionstore.SenderUser})
	require.NoError(t, err)
	store.StartNewSession(ctx)
	_, err = store.AppendToActive(ctx, sessionstore.Message{Text: "second session", Sender: sessionstore.SenderUser})
	require.NoError(t, err)
	store.StartNewSession(ctx)

	before := store.Sessions()
	require.Len(t, before, 3)

	reloaded := sessionstore.New(kv, nil)
	reloaded.Load(ctx)
	after := reloaded.Sessions()

	require.Len(t, after, 3)
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Len(t, after[i].Messages, len(before[i].Messages))
	}
	// The most recent session is active after reload.
	assert.Equal(t, before[0].ID, reloaded.ActiveID())
}

func TestUnit_CorruptedBlobLoadsFresh(t *testing.T) {
	ctx, kv, store := setupStore(t)
	require.NoError(t, kv.Set(ctx, sessionstore.StorageKey, json.RawMessage(`{not json`)))

	store.Load(ctx)

	sessions := store.Sessions()
	require.Len(t, sessions, 1)
	assert.NotEmpty(t, store.ActiveID())
}

func TestUnit_UnknownSchemaVersionLoadsFresh(t *testing.T) {
	ctx, kv, store := setupStore(t)
	blob := `{"schema_version":99,"sessions":[{"id":"future","title":"?","messages":[],"timestamp":"2026-01-01T00:00:00Z"}]}`
	require.NoError(t, kv.Set(ctx, sessionstore.StorageKey, json.RawMessage(blob)))

	store.Load(ctx)

	sessions := store.Sessions()
	require.Len(t, sessions, 1)
	assert.NotEqual(t, "future", sessions[0].ID)
}

// failingKV rejects all writes; reads behave as empty.
type failingKV struct{}

func (failingKV) Get(context.Context, string) (json.RawMessage, error) {
	return nil, libkv.ErrNotFound
}
func (failingKV) Set(context.Context, string, json.RawMessage) error {
	return fmt.Errorf("quota exceeded")
}
func (failingKV) Delete(context.Context, string) error { return errors.New("unavailable") }
func (failingKV) Exists(context.Context, string) (bool, error) {
	return false, nil
}

func TestUnit_SaveFailureKeepsMemoryAuthoritative(t *testing.T) {
	ctx := context.Background()
	store := sessionstore.New(failingKV{}, nil)
	store.Load(ctx)

	_, err := store.AppendToActive(ctx, sessionstore.Message{Text: "still works", Sender: sessionstore.SenderUser})
	require.NoError(t, err)

	active, err := store.Active()
	require.NoError(t, err)
	assert.Len(t, active.Messages, 2)
}
