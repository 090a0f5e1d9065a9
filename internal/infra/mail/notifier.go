package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/xavierca1/codease-contact/internal/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	operatorTemplate     = "operator_notification.html"
	confirmationTemplate = "submitter_confirmation.html"

	receivedOnLayout = "Monday, January 2, 2006 at 03:04 PM"
	missingPhone     = "Not provided"
)

// Transport delivers a rendered message. Implementations must honour ctx.
type Transport interface {
	Send(ctx context.Context, msg entity.OutboundMessage) error
}

type Notifier struct {
	transport Transport
	operator  string
	brand     Brand
	templates *template.Template
	now       func() time.Time
}

func NewNotifier(transport Transport, operatorEmail string, brand Brand) (*Notifier, error) {
	t, err := template.New("mail").
		Funcs(template.FuncMap{"lines": splitLines}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	if brand.Name == "" {
		brand.Name = "Codease"
	}

	return &Notifier{
		transport: transport,
		operator:  operatorEmail,
		brand:     brand,
		templates: t,
		now:       time.Now,
	}, nil
}

func (n *Notifier) NotifyOperator(ctx context.Context, s entity.Submission) error {
	msg, err := n.OperatorMessage(s)
	if err != nil {
		return err
	}
	return n.transport.Send(ctx, msg)
}

func (n *Notifier) ConfirmToSubmitter(ctx context.Context, s entity.Submission) error {
	msg, err := n.ConfirmationMessage(s)
	if err != nil {
		return err
	}
	return n.transport.Send(ctx, msg)
}

// OperatorMessage renders the notification for the company inbox. Replies go to the submitter.
func (n *Notifier) OperatorMessage(s entity.Submission) (entity.OutboundMessage, error) {
	phone := strings.TrimSpace(s.Phone)
	if phone == "" {
		phone = missingPhone
	}

	received := s.ReceivedAt
	if received.IsZero() {
		received = n.now()
	}

	body, err := n.render(operatorTemplate, operatorEmailData{
		Brand:      n.brand,
		FullName:   s.FullName(),
		Name:       s.Name,
		Email:      s.Email,
		Phone:      phone,
		Subject:    s.SubjectLabel(),
		Message:    s.Message,
		ReceivedOn: received.Format(receivedOnLayout),
	})
	if err != nil {
		return entity.OutboundMessage{}, err
	}

	return entity.OutboundMessage{
		From:     n.operator,
		To:       n.operator,
		ReplyTo:  s.Email,
		Subject:  fmt.Sprintf("🔔 New Contact Form: %s", s.SubjectLabel()),
		HTMLBody: body,
	}, nil
}

func (n *Notifier) ConfirmationMessage(s entity.Submission) (entity.OutboundMessage, error) {
	body, err := n.render(confirmationTemplate, confirmationEmailData{
		Brand:    n.brand,
		FullName: s.FullName(),
	})
	if err != nil {
		return entity.OutboundMessage{}, err
	}

	return entity.OutboundMessage{
		From:     n.operator,
		To:       s.Email,
		Subject:  fmt.Sprintf("✅ We received your message - %s", n.brand.Name),
		HTMLBody: body,
	}, nil
}

func (n *Notifier) render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := n.templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return body.String(), nil
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}
