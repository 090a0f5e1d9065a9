package usecase_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/codease-contact/internal/entity"
	"github.com/xavierca1/codease-contact/internal/infra/queue"
)

type MockSubmissionLog struct {
	mock.Mock
}

func (m *MockSubmissionLog) Append(ctx context.Context, row entity.LogRow) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockSubmissionLog) ReadAll(ctx context.Context) ([]entity.LogRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LogRow), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyOperator(ctx context.Context, s entity.Submission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockNotifier) ConfirmToSubmitter(ctx context.Context, s entity.Submission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishSubmitted(ctx context.Context, event queue.SubmittedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Export(w io.Writer, rows []entity.LogRow) error {
	args := m.Called(w, rows)
	return args.Error(0)
}

type MockDocumentLog struct {
	MockSubmissionLog
}

func (m *MockDocumentLog) WriteDocument(ctx context.Context, w io.Writer) (int, error) {
	args := m.Called(ctx, w)
	return args.Int(0), args.Error(1)
}
