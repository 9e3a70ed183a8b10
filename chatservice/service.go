// Package chatservice is the message pipeline: it appends user input to the
// active session and schedules canned assistant replies after a simulated
// thinking delay. A serialized snapshot goes out on the bus after every
// mutation so the Presentation Surface can re-render.
package chatservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/modernweb/assist/libbus"
	"github.com/modernweb/assist/libclock"
	"github.com/modernweb/assist/libtracker"
	"github.com/modernweb/assist/responder"
	"github.com/modernweb/assist/sessionstore"
)

// MaxAttachmentBytes caps uploads at 10 MiB; the limit itself is accepted.
const MaxAttachmentBytes = 10 * 1024 * 1024

// SnapshotSubject is the bus subject snapshots are published on.
const SnapshotSubject = "chat.snapshot"

const (
	replyDelayBase   = 1500 * time.Millisecond
	replyDelayJitter = 1000 * time.Millisecond
	fileReplyDelay   = 1500 * time.Millisecond
	transcribeDelay  = 2000 * time.Millisecond
)

var ErrEmptyMessage = errors.New("chat: message text is empty")
var ErrAttachmentTooLarge = errors.New("chat: attachment exceeds 10 MiB")

// VoiceCapture describes recorded audio handed over by the Presentation
// Surface. The content is never inspected; transcription is simulated.
type VoiceCapture struct {
	MimeType   string
	SizeBytes  int64
	ContentRef string
}

// Snapshot is the read-only view handed to the Presentation Surface.
type Snapshot struct {
	Sessions        []sessionstore.Session `json:"sessions"`
	ActiveID        string                 `json:"activeId"`
	AwaitingReplies int                    `json:"awaitingReplies"`
	Transcribing    bool                   `json:"transcribing"`
	PendingInput    string                 `json:"pendingInput,omitempty"`
}

// Service coordinates the message pipeline.
type Service interface {
	SendMessage(ctx context.Context, text string) (sessionstore.Message, error)
	AttachFile(ctx context.Context, att sessionstore.Attachment) (sessionstore.Message, error)
	SubmitVoiceCapture(ctx context.Context, capture VoiceCapture) error
	StartNewSession(ctx context.Context) (string, error)
	SwitchSession(ctx context.Context, id string) error
	DeleteSession(ctx context.Context, id string) error
	Snapshot(ctx context.Context) Snapshot
	TakePendingInput(ctx context.Context) string
}

type service struct {
	store     *sessionstore.Store
	responder *responder.Responder
	clock     libclock.Scheduler
	bus       libbus.Messenger
	logger    *slog.Logger

	mu           sync.Mutex
	awaiting     int
	transcribing bool
	pendingInput string
}

// New creates the pipeline. bus may be nil when no surface subscribes.
func New(store *sessionstore.Store, resp *responder.Responder, clock libclock.Scheduler, bus libbus.Messenger, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		store:     store,
		responder: resp,
		clock:     clock,
		bus:       bus,
		logger:    logger,
	}
}

// SendMessage appends one user message and schedules exactly one assistant
// reply after 1.5-2.5s. Replies are never merged: a second send while a
// reply is outstanding simply schedules a second, independent reply.
func (s *service) SendMessage(ctx context.Context, text string) (sessionstore.Message, error) {
	if strings.TrimSpace(text) == "" {
		return sessionstore.Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	s.pendingInput = ""
	s.mu.Unlock()

	msg, err := s.store.AppendToActive(ctx, sessionstore.Message{
		Text:   text,
		Sender: sessionstore.SenderUser,
	})
	if err != nil {
		return sessionstore.Message{}, fmt.Errorf("appending user message: %w", err)
	}

	delay := replyDelayBase + time.Duration(rand.Int64N(int64(replyDelayJitter)))
	s.scheduleReply(ctx, delay, func() string { return s.responder.Reply(text) })
	s.publishSnapshot(ctx)
	return msg, nil
}

// AttachFile appends a user message carrying the attachment and schedules a
// file-type-specific reply. Oversized attachments are rejected without any
// state change.
func (s *service) AttachFile(ctx context.Context, att sessionstore.Attachment) (sessionstore.Message, error) {
	if att.SizeBytes > MaxAttachmentBytes {
		return sessionstore.Message{}, ErrAttachmentTooLarge
	}

	msg, err := s.store.AppendToActive(ctx, sessionstore.Message{
		Text:       fmt.Sprintf("📎 Uploaded: %s", att.Name),
		Sender:     sessionstore.SenderUser,
		Attachment: &att,
	})
	if err != nil {
		return sessionstore.Message{}, fmt.Errorf("appending file message: %w", err)
	}

	s.scheduleReply(ctx, fileReplyDelay, func() string { return responder.FileReply(att.Name, att.MimeType) })
	s.publishSnapshot(ctx)
	return msg, nil
}

// SubmitVoiceCapture simulates transcription: after ~2s the pending input
// field is filled with a canned sentence. No message is appended and the
// audio content is deliberately ignored.
func (s *service) SubmitVoiceCapture(ctx context.Context, capture VoiceCapture) error {
	s.logger.Debug("voice capture received", "mimeType", capture.MimeType, "sizeBytes", capture.SizeBytes)

	s.mu.Lock()
	s.transcribing = true
	s.mu.Unlock()
	s.publishSnapshot(ctx)

	bg := libtracker.CopyTrackingValues(ctx, context.Background())
	s.clock.Schedule(transcribeDelay, func() {
		s.mu.Lock()
		s.pendingInput = s.responder.Transcript()
		s.transcribing = false
		s.mu.Unlock()
		s.publishSnapshot(bg)
	})
	return nil
}

func (s *service) StartNewSession(ctx context.Context) (string, error) {
	id := s.store.StartNewSession(ctx)
	s.publishSnapshot(ctx)
	return id, nil
}

func (s *service) SwitchSession(ctx context.Context, id string) error {
	s.store.SwitchSession(ctx, id)
	s.publishSnapshot(ctx)
	return nil
}

func (s *service) DeleteSession(ctx context.Context, id string) error {
	s.store.DeleteSession(ctx, id)
	s.publishSnapshot(ctx)
	return nil
}

func (s *service) Snapshot(ctx context.Context) Snapshot {
	return s.snapshot()
}

// TakePendingInput consumes the simulated transcript, mirroring the surface
// moving it into its input field.
func (s *service) TakePendingInput(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	input := s.pendingInput
	s.pendingInput = ""
	return input
}

// scheduleReply registers one delayed assistant reply. There is no
// cancellation: once scheduled the reply always fires, and it lands in
// whichever session is active at fire time. A session switch between send
// and fire therefore redirects the reply.
func (s *service) scheduleReply(ctx context.Context, delay time.Duration, replyText func() string) {
	s.mu.Lock()
	s.awaiting++
	s.mu.Unlock()

	bg := libtracker.CopyTrackingValues(ctx, context.Background())
	s.clock.Schedule(delay, func() {
		reply := sessionstore.Message{
			Text:   replyText(),
			Sender: sessionstore.SenderAssistant,
		}
		if _, err := s.store.AppendToActive(bg, reply); err != nil {
			s.logger.Warn("failed to append assistant reply", "error", err)
		}
		s.mu.Lock()
		s.awaiting--
		s.mu.Unlock()
		s.publishSnapshot(bg)
	})
}

func (s *service) snapshot() Snapshot {
	s.mu.Lock()
	awaiting := s.awaiting
	transcribing := s.transcribing
	pending := s.pendingInput
	s.mu.Unlock()

	return Snapshot{
		Sessions:        s.store.Sessions(),
		ActiveID:        s.store.ActiveID(),
		AwaitingReplies: awaiting,
		Transcribing:    transcribing,
		PendingInput:    pending,
	}
}

func (s *service) publishSnapshot(ctx context.Context) {
	if s.bus == nil {
		return
	}
	data, err := json.Marshal(s.snapshot())
	if err != nil {
		s.logger.Warn("failed to serialize snapshot", "error", err)
		return
	}
	if err := s.bus.Publish(ctx, SnapshotSubject, data); err != nil {
		s.logger.Debug("failed to publish snapshot", "error", err)
	}
}
