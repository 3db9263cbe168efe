package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const defaultTimeout = 15 * time.Second

var (
	ErrDisabled       = errors.New("mailer is disabled")
	ErrInvalidMessage = errors.New("invalid email message")
)

// Config holds SMTP settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool // implicit TLS (SMTPS); STARTTLS is negotiated automatically otherwise
	Timeout  time.Duration
}

// Message is a plain-text email
type Message struct {
	To       []string
	ReplyTo  string
	Subject  string
	TextBody string
}

// ContactNotification is the data the site owner receives for a new contact message
type ContactNotification struct {
	ID        string
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Client sends owner notifications over SMTP
type Client struct {
	cfg    Config
	to     []string
	sender sender
}

// New creates a mailer delivering to the given recipients.
// An empty Host or recipient list disables it.
func New(cfg Config, to []string) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.UseTLS
	if cfg.UseTLS {
		d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}

	return &Client{cfg: cfg, to: cleanAddrs(to), sender: d}
}

// Enabled reports whether notifications will be delivered
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Host != "" && len(c.to) > 0
}

// NotifyContact emails the owner about a new contact message
func (c *Client) NotifyContact(ctx context.Context, n ContactNotification) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	return c.Send(ctx, Message{
		To:       c.to,
		ReplyTo:  n.Email,
		Subject:  fmt.Sprintf("New contact message from %s", n.Name),
		TextBody: contactBody(n),
	})
}

// Send delivers m, giving up when ctx or the configured timeout expires
func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	msg, err := buildMessage(c.cfg.From, m)
	if err != nil {
		return err
	}

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- c.sender.DialAndSend(msg)
	}()

	wait := c.cfg.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < wait {
			wait = d
		}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	case <-timer.C:
		err = context.DeadlineExceeded
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.NotificationsTotal.WithLabelValues("email", status).Inc()
	logger.LogAPICall(ctx, "smtp", "send", status, metrics.MeasureDuration(start),
		zap.Int("recipients", len(m.To)),
		zap.Error(err))

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func contactBody(n ContactNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", n.Name)
	fmt.Fprintf(&b, "Email: %s\n", n.Email)
	if !n.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Received: %s\n", n.CreatedAt.UTC().Format(time.RFC1123))
	}
	if n.ID != "" {
		fmt.Fprintf(&b, "Reference: %s\n", n.ID)
	}
	b.WriteString("\n")
	b.WriteString(n.Message)
	b.WriteString("\n")
	return b.String()
}

func buildMessage(from string, m Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, fmt.Errorf("%w: from is required", ErrInvalidMessage)
	}

	to := cleanAddrs(m.To)
	if len(to) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", ErrInvalidMessage)
	}

	subject := strings.TrimSpace(m.Subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}

	if strings.TrimSpace(m.TextBody) == "" {
		return nil, fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	if replyTo := strings.TrimSpace(m.ReplyTo); replyTo != "" {
		msg.SetHeader("Reply-To", replyTo)
	}
	msg.SetBody("text/plain", m.TextBody)

	return msg, nil
}

func cleanAddrs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
