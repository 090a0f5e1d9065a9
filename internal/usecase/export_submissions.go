package usecase

import (
	"context"
	"errors"
	"io"

	"github.com/xavierca1/codease-contact/internal/entity"
)

type ExportSubmissionsUseCase struct {
	Log      SubmissionLog
	Exporter Exporter
}

func NewExportSubmissionsUseCase(log SubmissionLog, exporter Exporter) *ExportSubmissionsUseCase {
	return &ExportSubmissionsUseCase{Log: log, Exporter: exporter}
}

// Execute writes the whole log to w and returns the number of data rows. A
// DocumentLog is copied verbatim; any other log is rendered by Exporter.
func (uc *ExportSubmissionsUseCase) Execute(ctx context.Context, w io.Writer) (int, error) {
	if uc.Log == nil {
		return 0, &DomainError{Code: CodeNotFound, Message: entity.ErrLogNotFound.Error()}
	}

	if doc, ok := uc.Log.(DocumentLog); ok {
		n, err := doc.WriteDocument(ctx, w)
		if errors.Is(err, entity.ErrLogNotFound) || (err == nil && n == 0) {
			return 0, &DomainError{Code: CodeNotFound, Message: entity.ErrLogNotFound.Error()}
		}
		if err != nil {
			return 0, persistenceFailure(err)
		}
		return n, nil
	}

	rows, err := uc.Log.ReadAll(ctx)
	if errors.Is(err, entity.ErrLogNotFound) || (err == nil && len(rows) == 0) {
		return 0, &DomainError{Code: CodeNotFound, Message: entity.ErrLogNotFound.Error()}
	}
	if err != nil {
		return 0, persistenceFailure(err)
	}

	if err := uc.Exporter.Export(w, rows); err != nil {
		return 0, &TechnicalError{Code: CodeInternal, Message: "failed to render submissions", Err: err}
	}
	return len(rows), nil
}
