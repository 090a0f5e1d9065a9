package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/codease-contact/internal/entity"
	"github.com/xavierca1/codease-contact/internal/infra/queue"
)

// PersistencePolicy decides what a failed log append does to the request.
type PersistencePolicy string

const (
	// PolicyStrict fails the request before any email is sent.
	PolicyStrict PersistencePolicy = "strict"
	// PolicyLenient logs the failure and still delivers both emails.
	PolicyLenient PersistencePolicy = "lenient"
)

type SubmitContactUseCase struct {
	Log      SubmissionLog
	Notifier Notifier
	Events   EventPublisher
	Policy   PersistencePolicy
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewSubmitContactUseCase wires the pipeline. log and events may be nil.
func NewSubmitContactUseCase(
	log SubmissionLog,
	notifier Notifier,
	events EventPublisher,
	policy PersistencePolicy,
	logger *zap.Logger,
) *SubmitContactUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == "" {
		policy = PolicyStrict
	}
	return &SubmitContactUseCase{
		Log:      log,
		Notifier: notifier,
		Events:   events,
		Policy:   policy,
		Logger:   logger,
		Now:      time.Now,
	}
}

func (uc *SubmitContactUseCase) Execute(ctx context.Context, input SubmitContactInput) (*SubmitContactOutput, error) {
	if errs := ValidateSubmission(input); len(errs) > 0 {
		return nil, &DomainError{
			Code:    CodeMissingFields,
			Message: MissingFieldsMessage,
			Fields:  errs,
		}
	}

	sub := entity.Submission{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Lastname:    strings.TrimSpace(input.Lastname),
		Email:       strings.TrimSpace(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		SubjectCode: strings.TrimSpace(input.Subject),
		Message:     input.Message,
		ReceivedAt:  uc.Now(),
	}

	log := uc.Logger.With(zap.String("submission_id", sub.ID))
	log.Info("contact form submission",
		zap.String("name", sub.FullName()),
		zap.String("email", sub.Email),
		zap.String("subject", sub.SubjectCode),
	)

	out := &SubmitContactOutput{ID: sub.ID}

	if uc.Log != nil {
		if err := uc.Log.Append(ctx, entity.NewLogRow(sub, sub.ReceivedAt)); err != nil {
			if uc.Policy != PolicyLenient {
				log.Error("saving submission failed", zap.Error(err))
				return nil, persistenceFailure(err)
			}
			log.Warn("saving submission failed, continuing with delivery", zap.Error(err))
		} else {
			out.Persisted = true
		}
	}

	if err := uc.Notifier.NotifyOperator(ctx, sub); err != nil {
		log.Error("operator notification failed", zap.Error(err))
		return nil, deliveryFailure("failed to notify operator", err)
	}
	log.Debug("operator notification sent")

	if err := uc.Notifier.ConfirmToSubmitter(ctx, sub); err != nil {
		log.Error("submitter confirmation failed", zap.Error(err))
		return nil, deliveryFailure("failed to confirm to submitter", err)
	}
	log.Debug("submitter confirmation sent")

	if uc.Events != nil {
		event := queue.SubmittedEvent{
			ID:         sub.ID,
			Name:       sub.Name,
			Lastname:   sub.Lastname,
			Email:      sub.Email,
			Phone:      sub.Phone,
			Subject:    sub.SubjectLabel(),
			ReceivedAt: sub.ReceivedAt,
		}
		// Best effort; the emails already went out.
		if err := uc.Events.PublishSubmitted(ctx, event); err != nil {
			log.Warn("publishing submission event failed", zap.Error(err))
		}
	}

	log.Info("contact form processed successfully", zap.Bool("persisted", out.Persisted))
	return out, nil
}
