package mail

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jonwraymond/coverforge/cover"
	"github.com/jonwraymond/coverforge/observe"
)

// ErrNotConfigured is returned by NewSMTPSender when the config lacks a
// host, sender or recipient.
var ErrNotConfigured = errors.New("mail: smtp not configured")

// Result reports one delivery attempt.
type Result struct {
	Success   bool
	MessageID string
	// Error is set when Success is false.
	Error error
}

// Sender delivers a rendered cover sheet to the print shop.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: Send must honor cancellation.
//   - Errors: failures are reported in Result.Error, never by panicking.
type Sender interface {
	Send(ctx context.Context, rec *cover.Record, pdf []byte, token string) Result
}

// LogSender logs deliveries instead of sending them.
type LogSender struct {
	logger observe.Logger
}

// NewLogSender creates a dry-run sender. A nil logger discards.
func NewLogSender(logger observe.Logger) *LogSender {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &LogSender{logger: logger}
}

// Send logs the delivery and reports success with a generated message id.
func (s *LogSender) Send(ctx context.Context, rec *cover.Record, pdf []byte, token string) Result {
	if err := ctx.Err(); err != nil {
		return Result{Error: err}
	}
	id := "<" + uuid.NewString() + "@coverforge.invalid>"
	s.logger.Info(ctx, "print request not sent, smtp disabled",
		observe.Field{Key: "message_id", Value: id},
		observe.Field{Key: "student_id", Value: rec.StudentID},
		observe.Field{Key: "attachment_bytes", Value: len(pdf)},
	)
	return Result{Success: true, MessageID: id}
}
