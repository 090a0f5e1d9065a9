package usecase

import (
	"context"
	"io"

	"github.com/xavierca1/codease-contact/internal/entity"
	"github.com/xavierca1/codease-contact/internal/infra/queue"
)

// SubmissionLog is the durable, append-only record of submissions.
// ReadAll returns entity.ErrLogNotFound when nothing has been stored yet.
type SubmissionLog interface {
	Append(ctx context.Context, row entity.LogRow) error
	ReadAll(ctx context.Context) ([]entity.LogRow, error)
}

type Notifier interface {
	NotifyOperator(ctx context.Context, s entity.Submission) error
	ConfirmToSubmitter(ctx context.Context, s entity.Submission) error
}

type EventPublisher interface {
	PublishSubmitted(ctx context.Context, event queue.SubmittedEvent) error
}

// DocumentLog is implemented by logs that already store a downloadable
// document. Export serves it directly instead of rendering ReadAll.
type DocumentLog interface {
	WriteDocument(ctx context.Context, w io.Writer) (int, error)
}

// Exporter renders log rows as a downloadable document.
type Exporter interface {
	Export(w io.Writer, rows []entity.LogRow) error
}
