package chatservice

import (
	"context"
	"strconv"

	"github.com/modernweb/assist/libtracker"
	"github.com/modernweb/assist/sessionstore"
)

type activityTrackerDecorator struct {
	service Service
	tracker libtracker.ActivityTracker
}

func (d *activityTrackerDecorator) SendMessage(ctx context.Context, text string) (sessionstore.Message, error) {
	reportErr, reportChange, end := d.tracker.Start(
		ctx,
		"send",
		"message",
		"text_length", len(text),
	)
	defer end()

	msg, err := d.service.SendMessage(ctx, text)
	if err != nil {
		reportErr(err)
		return msg, err
	}
	reportChange(strconv.FormatInt(msg.ID, 10), msg)
	return msg, nil
}

func (d *activityTrackerDecorator) AttachFile(ctx context.Context, att sessionstore.Attachment) (sessionstore.Message, error) {
	reportErr, reportChange, end := d.tracker.Start(
		ctx,
		"attach",
		"message",
		"file_name", att.Name,
		"mime_type", att.MimeType,
		"size_bytes", att.SizeBytes,
	)
	defer end()

	msg, err := d.service.AttachFile(ctx, att)
	if err != nil {
		reportErr(err)
		return msg, err
	}
	reportChange(strconv.FormatInt(msg.ID, 10), msg)
	return msg, nil
}

func (d *activityTrackerDecorator) SubmitVoiceCapture(ctx context.Context, capture VoiceCapture) error {
	reportErr, _, end := d.tracker.Start(
		ctx,
		"transcribe",
		"voice",
		"mime_type", capture.MimeType,
	)
	defer end()

	err := d.service.SubmitVoiceCapture(ctx, capture)
	if err != nil {
		reportErr(err)
	}
	return err
}

func (d *activityTrackerDecorator) StartNewSession(ctx context.Context) (string, error) {
	reportErr, reportChange, end := d.tracker.Start(
		ctx,
		"create",
		"session",
	)
	defer end()

	id, err := d.service.StartNewSession(ctx)
	if err != nil {
		reportErr(err)
		return id, err
	}
	reportChange(id, nil)
	return id, nil
}

func (d *activityTrackerDecorator) SwitchSession(ctx context.Context, id string) error {
	reportErr, _, end := d.tracker.Start(
		ctx,
		"switch",
		"session",
		"session_id", id,
	)
	defer end()

	err := d.service.SwitchSession(ctx, id)
	if err != nil {
		reportErr(err)
	}
	return err
}

func (d *activityTrackerDecorator) DeleteSession(ctx context.Context, id string) error {
	reportErr, _, end := d.tracker.Start(
		ctx,
		"delete",
		"session",
		"session_id", id,
	)
	defer end()

	err := d.service.DeleteSession(ctx, id)
	if err != nil {
		reportErr(err)
	}
	return err
}

func (d *activityTrackerDecorator) Snapshot(ctx context.Context) Snapshot {
	_, _, end := d.tracker.Start(
		ctx,
		"read",
		"snapshot",
	)
	defer end()

	return d.service.Snapshot(ctx)
}

func (d *activityTrackerDecorator) TakePendingInput(ctx context.Context) string {
	return d.service.TakePendingInput(ctx)
}

// WithActivityTracker wraps a chat Service with activity tracking
func WithActivityTracker(service Service, tracker libtracker.ActivityTracker) Service {
	return &activityTrackerDecorator{
		service: service,
		tracker: tracker,
	}
}

// Ensure the decorator implements the Service interface
var _ Service = (*activityTrackerDecorator)(nil)
