// Package libtracker provides lightweight operation tracking for service
// decorators: each tracked call reports start, optional error, optional
// entity change, and end.
package libtracker

import (
	"context"
	"log/slog"
	"time"
)

// ActivityTracker observes one operation on one subject. Start returns
// three lifecycle funcs: report an error, report the entity that changed,
// and end the operation. kvArgs are alternating key/value metadata pairs.
type ActivityTracker interface {
	Start(ctx context.Context, operation string, subject string, kvArgs ...any) (func(error), func(string, any), func())
}

// SlogTracker logs tracked operations through a slog.Logger.
type SlogTracker struct {
	logger *slog.Logger
}

func NewSlogTracker(logger *slog.Logger) *SlogTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogTracker{logger: logger}
}

func (t *SlogTracker) Start(
	ctx context.Context,
	operation string,
	subject string,
	kvArgs ...any,
) (func(error), func(string, any), func()) {
	start := time.Now().UTC()

	attrs := []any{"operation", operation, "subject", subject}
	attrs = append(attrs, kvArgs...)
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok && reqID != "" {
		attrs = append(attrs, "requestID", reqID)
	}

	var trackedErr error
	var entityID string

	reportErr := func(err error) {
		trackedErr = err
	}
	reportChange := func(id string, _ any) {
		entityID = id
	}
	end := func() {
		fields := append(attrs, "duration", time.Since(start).String())
		if entityID != "" {
			fields = append(fields, "entityID", entityID)
		}
		if trackedErr != nil {
			fields = append(fields, "error", trackedErr.Error())
			t.logger.Warn("activity failed", fields...)
			return
		}
		t.logger.Debug("activity", fields...)
	}

	return reportErr, reportChange, end
}

// NoopTracker discards all activity. Use where tracking is not wanted.
type NoopTracker struct{}

func NewNoopTracker() *NoopTracker {
	return &NoopTracker{}
}

func (NoopTracker) Start(context.Context, string, string, ...any) (func(error), func(string, any), func()) {
	return func(error) {}, func(string, any) {}, func() {}
}

var _ ActivityTracker = (*SlogTracker)(nil)
var _ ActivityTracker = (*NoopTracker)(nil)
