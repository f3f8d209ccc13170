package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/jonwraymond/coverforge/cover"
	"github.com/jonwraymond/coverforge/observe"
	"github.com/jonwraymond/coverforge/resilience"
)

// SMTPConfig configures an SMTPSender.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// From defaults to Username.
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
	// To is the print shop address.
	To string `yaml:"to"`
	// TLS is one of "mandatory", "opportunistic", "ssl" or "none".
	TLS     string        `yaml:"tls"`
	Timeout time.Duration `yaml:"timeout"`
}

// Enabled reports whether a relay host is configured.
func (c SMTPConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

// Envelope returns the addressing derived from the config.
func (c SMTPConfig) Envelope() Envelope {
	from := c.From
	if from == "" {
		from = c.Username
	}
	return Envelope{From: from, FromName: c.FromName, To: c.To}
}

// Validate checks that the config can address a message.
func (c SMTPConfig) Validate() error {
	env := c.Envelope()
	switch {
	case !c.Enabled():
		return fmt.Errorf("%w: host is required", ErrNotConfigured)
	case env.From == "":
		return fmt.Errorf("%w: from or username is required", ErrNotConfigured)
	case env.To == "":
		return fmt.Errorf("%w: print shop address is required", ErrNotConfigured)
	}
	switch strings.ToLower(c.TLS) {
	case "", "mandatory", "opportunistic", "ssl", "none":
		return nil
	default:
		return fmt.Errorf("%w: unknown tls mode %q", ErrNotConfigured, c.TLS)
	}
}

func (c SMTPConfig) clientOptions() []gomail.Option {
	opts := []gomail.Option{}
	if c.Port > 0 {
		opts = append(opts, gomail.WithPort(c.Port))
	}
	if c.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(c.Timeout))
	}
	switch strings.ToLower(c.TLS) {
	case "ssl":
		opts = append(opts, gomail.WithSSL())
	case "none":
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	case "opportunistic":
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	if c.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(c.Username),
			gomail.WithPassword(c.Password),
		)
	}
	return opts
}

// Dialer sends composed messages. *gomail.Client satisfies it.
type Dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPOption configures an SMTPSender.
type SMTPOption func(*SMTPSender)

// WithDialer replaces the go-mail client.
func WithDialer(d Dialer) SMTPOption {
	return func(s *SMTPSender) { s.dialer = d }
}

// WithExecutor runs each delivery through e.
func WithExecutor(e *resilience.Executor) SMTPOption {
	return func(s *SMTPSender) { s.executor = e }
}

// WithLogger sets the delivery logger.
func WithLogger(l observe.Logger) SMTPOption {
	return func(s *SMTPSender) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used for the Date header.
func WithClock(now func() time.Time) SMTPOption {
	return func(s *SMTPSender) {
		if now != nil {
			s.now = now
		}
	}
}

// SMTPSender delivers print requests through an SMTP relay.
type SMTPSender struct {
	env      Envelope
	dialer   Dialer
	executor *resilience.Executor
	logger   observe.Logger
	now      func() time.Time
}

// NewSMTPSender creates a sender for cfg.
func NewSMTPSender(cfg SMTPConfig, opts ...SMTPOption) (*SMTPSender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &SMTPSender{
		env:      cfg.Envelope(),
		executor: resilience.NewExecutor(),
		logger:   observe.NopLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dialer == nil {
		client, err := gomail.NewClient(cfg.Host, cfg.clientOptions()...)
		if err != nil {
			return nil, fmt.Errorf("mail: client: %w", err)
		}
		s.dialer = client
	}
	return s, nil
}

// Executor returns the executor deliveries run through.
func (s *SMTPSender) Executor() *resilience.Executor {
	return s.executor
}

// Send composes the print request and delivers it. Rejections the relay
// reports as permanent are not retried.
func (s *SMTPSender) Send(ctx context.Context, rec *cover.Record, pdf []byte, token string) Result {
	msg, err := Compose(s.env, rec, pdf, token, s.now())
	if err != nil {
		return Result{Error: err}
	}
	id := msg.GetMessageID()

	err = s.executor.Execute(ctx, func(ctx context.Context) error {
		return classify(msg, s.dialer.DialAndSendWithContext(ctx, msg))
	})
	if err != nil {
		s.logger.Warn(ctx, "print request failed",
			observe.Field{Key: "message_id", Value: id},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return Result{MessageID: id, Error: err}
	}
	s.logger.Info(ctx, "print request sent",
		observe.Field{Key: "message_id", Value: id},
		observe.Field{Key: "attachment_bytes", Value: len(pdf)},
	)
	return Result{Success: true, MessageID: id}
}

// classify marks non-temporary send errors as permanent.
func classify(msg *gomail.Msg, err error) error {
	if err == nil {
		return nil
	}
	var sendErr *gomail.SendError
	if errors.As(err, &sendErr) && !sendErr.IsTemp() {
		return resilience.Permanent(err)
	}
	if msg.HasSendError() && !msg.SendErrorIsTemp() {
		return resilience.Permanent(err)
	}
	return err
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = (*LogSender)(nil)
	_ Dialer = (*gomail.Client)(nil)
)
