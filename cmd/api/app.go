package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xavierca1/codease-contact/internal/config"
	"github.com/xavierca1/codease-contact/internal/infra/database"
	"github.com/xavierca1/codease-contact/internal/infra/http/handlers"
	"github.com/xavierca1/codease-contact/internal/infra/mail"
	"github.com/xavierca1/codease-contact/internal/infra/queue"
	"github.com/xavierca1/codease-contact/internal/infra/ratelimit"
	"github.com/xavierca1/codease-contact/internal/infra/sheet"
	"github.com/xavierca1/codease-contact/internal/usecase"
)

type logStore interface {
	usecase.SubmissionLog
	Close() error
}

// app holds every long-lived resource. close releases them in reverse order.
type app struct {
	cfg    config.Config
	logger *zap.Logger

	log       logStore
	transport *mail.SMTPTransport
	rabbitMQ  *queue.RabbitMQ
	redis     *redis.Client
	limiter   *ratelimit.Memory

	checks  map[string]handlers.HealthCheck
	closers []func() error
}

func openLog(cfg config.Config, logger *zap.Logger) (logStore, handlers.HealthCheck, error) {
	switch cfg.LogBackend {
	case config.BackendXLSX:
		return sheet.NewWorkbookLog(cfg.DataDir, logger), nil, nil
	case config.BackendSQLite:
		db, err := database.NewSQLiteConnection(filepath.Join(cfg.DataDir, "contact_submissions.db"))
		if err != nil {
			return nil, nil, err
		}
		repo := database.NewSubmissionRepository(db, database.SQLite)
		return repo, repo.Ping, nil
	case config.BackendPostgres:
		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := database.NewSubmissionRepository(db, database.Postgres)
		return repo, repo.Ping, nil
	case config.BackendNone:
		return nil, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown log backend %q", cfg.LogBackend)
}

func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, checks: map[string]handlers.HealthCheck{}}

	log, check, err := openLog(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open submission log: %w", err)
	}
	if log != nil {
		a.log = log
		a.closers = append(a.closers, log.Close)
		if check != nil {
			a.checks["database"] = check
		}
	}

	a.transport = mail.NewSMTPTransport(mail.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		User:     cfg.Mail.User,
		Password: cfg.Mail.Password,
		Timeout:  cfg.Mail.Timeout,
	})
	a.closers = append(a.closers, a.transport.Close)

	if cfg.AMQPURL != "" {
		rmq, err := queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.rabbitMQ = rmq
		a.closers = append(a.closers, rmq.Close)
		a.checks["rabbitmq"] = func(context.Context) error {
			if rmq.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		a.redis = redis.NewClient(opt)
		a.closers = append(a.closers, a.redis.Close)
		a.checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	} else {
		a.limiter = ratelimit.NewMemory(cfg.RateLimit, time.Minute)
	}

	return a, nil
}

func (a *app) submissionLog() usecase.SubmissionLog {
	if a.log == nil {
		return nil
	}
	return a.log
}

func (a *app) rateLimiter() ratelimit.Limiter {
	if a.cfg.RateLimit <= 0 {
		return nil
	}
	if a.redis != nil {
		return ratelimit.NewRedis(a.redis, a.cfg.RateLimit, time.Minute)
	}
	return a.limiter
}

func (a *app) events() usecase.EventPublisher {
	if a.rabbitMQ == nil {
		return nil
	}
	return queue.NewProducer(a.rabbitMQ.Ch)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("error during shutdown", zap.Error(err))
		}
	}
	a.closers = nil
}
