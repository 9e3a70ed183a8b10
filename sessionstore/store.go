package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modernweb/assist/libkv"
)

var ErrSessionNotFound = errors.New("sessionstore: session not found")

// Store holds all sessions in memory, most-recently-active first, capped at
// MaxSessions, and mirrors every mutation to the key-value collaborator.
// In-memory state stays authoritative: persistence failures are logged and
// swallowed, never surfaced to callers.
type Store struct {
	mu       sync.Mutex
	kv       libkv.KV
	logger   *slog.Logger
	sessions []*Session
	activeID string
}

// New creates a Store backed by kv. Call Load before first use.
func New(kv libkv.KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger}
}

// Load reads previously persisted sessions. A missing key, malformed
// payload, or unknown schema version yields a fresh session instead of an
// error.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, libkv.ErrNotFound) {
			s.logger.Warn("failed to load chat history", "error", err)
		}
		s.startNewSessionLocked(ctx)
		return
	}

	var state persistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logger.Warn("failed to parse chat history, starting fresh", "error", err)
		s.startNewSessionLocked(ctx)
		return
	}
	if state.SchemaVersion != SchemaVersion {
		s.logger.Warn("unknown chat history schema version, starting fresh", "version", state.SchemaVersion)
		s.startNewSessionLocked(ctx)
		return
	}
	if len(state.Sessions) == 0 {
		s.startNewSessionLocked(ctx)
		return
	}

	if len(state.Sessions) > MaxSessions {
		state.Sessions = state.Sessions[:MaxSessions]
	}
	s.sessions = state.Sessions
	// Most recent session becomes active.
	s.activeID = s.sessions[0].ID
}

// StartNewSession creates a session seeded with the assistant greeting,
// makes it active, and persists. Returns the new session's ID.
func (s *Store) StartNewSession(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startNewSessionLocked(ctx)
}

func (s *Store) startNewSessionLocked(ctx context.Context) string {
	now := time.Now().UTC()
	session := &Session{
		ID:    uuid.New().String(),
		Title: DefaultTitle,
		Messages: []Message{{
			ID:        1,
			Text:      Greeting,
			Sender:    SenderAssistant,
			Timestamp: now,
		}},
		LastActivity: now,
	}
	s.sessions = append([]*Session{session}, s.sessions...)
	if len(s.sessions) > MaxSessions {
		s.sessions = s.sessions[:MaxSessions]
	}
	s.activeID = session.ID
	s.saveLocked(ctx)
	return session.ID
}

// SwitchSession makes the session with the given ID active. Unknown IDs are
// silently ignored; the caller UI only offers valid ones.
func (s *Store) SwitchSession(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.ID == id {
			s.activeID = id
			return
		}
	}
}

// DeleteSession removes the session and persists. Deleting the active
// session immediately starts a new one: the active slot never dangles.
func (s *Store) DeleteSession(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i, session := range s.sessions {
		if session.ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return
	}
	if s.activeID == id {
		s.startNewSessionLocked(ctx)
		return
	}
	s.saveLocked(ctx)
}

// AppendToActive appends msg to the currently active session, assigning the
// next message ID, bumping recency, and persisting. The active session is
// resolved at call time; scheduled replies land in whichever session is
// active when their timer fires.
func (s *Store) AppendToActive(ctx context.Context, msg Message) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.activeLocked()
	if session == nil {
		return Message{}, fmt.Errorf("appending message: %w", ErrSessionNotFound)
	}

	msg.ID = session.nextMessageID()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	session.Messages = append(session.Messages, msg)
	session.LastActivity = msg.Timestamp
	session.Title = session.deriveTitle()
	s.moveToFrontLocked(session.ID)
	s.saveLocked(ctx)
	return msg, nil
}

// ActiveID returns the active session's ID, or "" if no session exists yet.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Sessions returns deep copies of all sessions, most-recently-active first.
func (s *Store) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.clone())
	}
	return out
}

// Active returns a deep copy of the active session.
func (s *Store) Active() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.activeLocked()
	if session == nil {
		return Session{}, ErrSessionNotFound
	}
	return session.clone(), nil
}

func (s *Store) activeLocked() *Session {
	for _, session := range s.sessions {
		if session.ID == s.activeID {
			return session
		}
	}
	return nil
}

func (s *Store) moveToFrontLocked(id string) {
	for i, session := range s.sessions {
		if session.ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			s.sessions = append([]*Session{session}, s.sessions...)
			return
		}
	}
}

// saveLocked persists the full session list under the fixed key. Write
// failures are logged and otherwise ignored; chat keeps working in memory.
func (s *Store) saveLocked(ctx context.Context) {
	state := persistedState{
		SchemaVersion: SchemaVersion,
		SavedAt:       time.Now().UTC(),
		Sessions:      s.sessions,
	}
	raw, err := json.Marshal(state)
	if err != nil {
		s.logger.Warn("failed to serialize chat history", "error", err)
		return
	}
	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		s.logger.Warn("failed to save chat history", "error", err)
	}
}
