package mail

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/codease-contact/internal/entity"
)

const (
	defaultSendTimeout = 15 * time.Second
	defaultIdleTimeout = 30 * time.Second
)

// SMTPTransport keeps one SMTP connection for the whole process. It dials on the
// first send, reuses the connection afterwards and drops it on any error.
// Sends are serialized; a caller whose ctx ends while queued never dispatches.
type SMTPTransport struct {
	dial        func() (gomail.SendCloser, error)
	timeout     time.Duration
	idleTimeout time.Duration

	// sem guards the fields below.
	sem      chan struct{}
	conn     gomail.SendCloser
	lastUsed time.Time
	closed   bool
}

func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return newSMTPTransport(d.Dial, cfg.Timeout, cfg.IdleTimeout)
}

func newSMTPTransport(dial func() (gomail.SendCloser, error), timeout, idle time.Duration) *SMTPTransport {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	if idle <= 0 {
		idle = defaultIdleTimeout
	}
	return &SMTPTransport{dial: dial, timeout: timeout, idleTimeout: idle, sem: make(chan struct{}, 1)}
}

type sendResult struct {
	conn gomail.SendCloser
	err  error
}

// Send delivers msg. ctx bounds the wait for the connection only. Once the
// message is handed to the server the outcome is awaited for up to the
// transport timeout, so a nil error means delivered and vice versa, except
// when the server stalls past the timeout mid-transfer.
func (t *SMTPTransport) Send(ctx context.Context, msg entity.OutboundMessage) error {
	m := NewMessage(msg)

	select {
	case t.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("smtp send aborted: %w", ctx.Err())
	}
	defer func() { <-t.sem }()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("smtp send aborted: %w", err)
	}
	if t.closed {
		return fmt.Errorf("smtp transport is closed")
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
	defer cancel()

	conn := t.conn
	t.conn = nil
	if conn != nil && time.Since(t.lastUsed) > t.idleTimeout {
		conn.Close()
		conn = nil
	}

	done := make(chan sendResult, 1)
	go func() {
		c := conn
		if c == nil {
			var err error
			if c, err = t.dial(); err != nil {
				done <- sendResult{err: fmt.Errorf("failed to dial SMTP server: %w", err)}
				return
			}
		}
		if err := gomail.Send(c, m); err != nil {
			c.Close()
			done <- sendResult{err: fmt.Errorf("failed to send email via SMTP: %w", err)}
			return
		}
		done <- sendResult{conn: c}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return r.err
		}
		t.conn = r.conn
		t.lastUsed = time.Now()
		return nil
	case <-sendCtx.Done():
		// The goroutine still owns the connection; close it once it gives it back.
		go func() {
			if r := <-done; r.conn != nil {
				r.conn.Close()
			}
		}()
		return fmt.Errorf("smtp send timed out: %w", sendCtx.Err())
	}
}

// Close releases the pooled connection after any send in flight. Sends after
// Close fail.
func (t *SMTPTransport) Close() error {
	t.sem <- struct{}{}
	defer func() { <-t.sem }()

	t.closed = true
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// NewMessage converts msg into a gomail message.
func NewMessage(msg entity.OutboundMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)
	return m
}
