// Package sessionstore owns chat sessions: creation, switching, deletion,
// the retention cap, and persistence through a key-value collaborator.
package sessionstore

import (
	"time"
)

// Storage layout constants. All persisted state lives under one fixed key.
const (
	StorageKey    = "assist.chat.histories"
	SchemaVersion = 1
	MaxSessions   = 10
	titleLimit    = 30
)

// DefaultTitle is used until a session has its first user message.
const DefaultTitle = "New Chat"

// Greeting seeds every new session; a session's message list is never empty.
const Greeting = "Hi! I'm your AI assistant. I can help you with questions about carbon emissions, sustainability, web development, and general inquiries. You can also upload files or use voice input. How can I assist you today?"

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Attachment is file metadata carried by a message. ContentRef is an opaque
// handle to transient bytes; their lifetime belongs to the Presentation
// Surface, not to the message.
type Attachment struct {
	Name       string `json:"name"`
	MimeType   string `json:"type"`
	SizeBytes  int64  `json:"size"`
	ContentRef string `json:"url,omitempty"`
}

// Message is one turn in a conversation. IDs increase monotonically within
// a session and sort identically to insertion order.
type Message struct {
	ID         int64       `json:"id"`
	Text       string      `json:"text"`
	Sender     Sender      `json:"sender"`
	Timestamp  time.Time   `json:"timestamp"`
	Attachment *Attachment `json:"fileAttachment,omitempty"`
}

// Session is one conversation thread. Messages keep insertion order and are
// never reordered.
type Session struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Messages     []Message `json:"messages"`
	LastActivity time.Time `json:"timestamp"`
}

// nextMessageID returns the ID for the next appended message.
func (s *Session) nextMessageID() int64 {
	if len(s.Messages) == 0 {
		return 1
	}
	return s.Messages[len(s.Messages)-1].ID + 1
}

// deriveTitle returns the first user message's text truncated to 30
// characters plus an ellipsis, or the default placeholder.
func (s *Session) deriveTitle() string {
	for _, m := range s.Messages {
		if m.Sender == SenderUser {
			runes := []rune(m.Text)
			if len(runes) > titleLimit {
				runes = runes[:titleLimit]
			}
			return string(runes) + "..."
		}
	}
	return DefaultTitle
}

// clone returns a deep copy so callers can't mutate store state.
func (s *Session) clone() Session {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	for i, m := range s.Messages {
		if m.Attachment != nil {
			att := *m.Attachment
			out.Messages[i].Attachment = &att
		}
	}
	return out
}

// persistedState is the envelope written to the key-value collaborator.
// The schema version guards against future field changes; unknown versions
// load as empty rather than failing.
type persistedState struct {
	SchemaVersion int        `json:"schema_version"`
	SavedAt       time.Time  `json:"saved_at"`
	Sessions      []*Session `json:"sessions"`
}
