package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/codease-contact/internal/entity"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, msg entity.OutboundMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func newTestNotifier(t *testing.T, tr Transport) *Notifier {
	t.Helper()
	n, err := NewNotifier(tr, "info@codease.com", Brand{Name: "Codease", SupportEmail: "info@codease.com", SupportPhone: "+1 (555) 123-4567"})
	require.NoError(t, err)
	return n
}

func sampleSubmission() entity.Submission {
	return entity.Submission{
		ID:          "sub-1",
		Name:        "Ada",
		Lastname:    "Lovelace",
		Email:       "ada@example.com",
		SubjectCode: "partnership",
		Message:     "line one\nline two",
		ReceivedAt:  time.Date(2026, 10, 14, 15, 4, 0, 0, time.UTC),
	}
}

func TestOperatorMessage(t *testing.T) {
	n := newTestNotifier(t, new(MockTransport))

	msg, err := n.OperatorMessage(sampleSubmission())

	require.NoError(t, err)
	assert.Equal(t, "info@codease.com", msg.From)
	assert.Equal(t, "info@codease.com", msg.To)
	assert.Equal(t, "ada@example.com", msg.ReplyTo)
	assert.Equal(t, "🔔 New Contact Form: Partnership Opportunities", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "Ada Lovelace")
	assert.Contains(t, msg.HTMLBody, "line one<br>line two")
	assert.Contains(t, msg.HTMLBody, missingPhone)
	assert.Contains(t, msg.HTMLBody, "Wednesday, October 14, 2026 at 03:04 PM")
	assert.Contains(t, msg.HTMLBody, "Reply to Ada")
}

func TestOperatorMessageUnknownSubjectPassesThrough(t *testing.T) {
	n := newTestNotifier(t, new(MockTransport))
	s := sampleSubmission()
	s.SubjectCode = "billing question"

	msg, err := n.OperatorMessage(s)

	require.NoError(t, err)
	assert.Equal(t, "🔔 New Contact Form: billing question", msg.Subject)
}

func TestOperatorMessageEscapesUserInput(t *testing.T) {
	n := newTestNotifier(t, new(MockTransport))
	s := sampleSubmission()
	s.Name = "<b>Eve</b>"
	s.Message = "<script>alert(1)</script>\nbye"
	s.Phone = `"><img src=x>`

	msg, err := n.OperatorMessage(s)

	require.NoError(t, err)
	assert.NotContains(t, msg.HTMLBody, "<script>")
	assert.NotContains(t, msg.HTMLBody, "<b>Eve</b>")
	assert.NotContains(t, msg.HTMLBody, "<img src=x>")
	assert.Contains(t, msg.HTMLBody, "&lt;script&gt;alert(1)&lt;/script&gt;<br>bye")
}

func TestConfirmationMessage(t *testing.T) {
	n := newTestNotifier(t, new(MockTransport))

	msg, err := n.ConfirmationMessage(sampleSubmission())

	require.NoError(t, err)
	assert.Equal(t, "info@codease.com", msg.From)
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Empty(t, msg.ReplyTo)
	assert.Equal(t, "✅ We received your message - Codease", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "Dear Ada Lovelace,")
	assert.Contains(t, msg.HTMLBody, "+1 (555) 123-4567")
}

func TestNotifySendsThroughTransport(t *testing.T) {
	tr := new(MockTransport)
	tr.On("Send", mock.Anything, mock.MatchedBy(func(m entity.OutboundMessage) bool {
		return m.To == "info@codease.com"
	})).Return(nil).Once()
	tr.On("Send", mock.Anything, mock.MatchedBy(func(m entity.OutboundMessage) bool {
		return m.To == "ada@example.com"
	})).Return(errors.New("550 rejected")).Once()

	n := newTestNotifier(t, tr)

	assert.NoError(t, n.NotifyOperator(context.Background(), sampleSubmission()))
	assert.EqualError(t, n.ConfirmToSubmitter(context.Background(), sampleSubmission()), "550 rejected")
	tr.AssertExpectations(t)
}
