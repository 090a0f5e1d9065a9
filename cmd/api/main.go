package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/codease-contact/internal/config"
	"github.com/xavierca1/codease-contact/internal/infra/http/handlers"
	"github.com/xavierca1/codease-contact/internal/infra/http/router"
	"github.com/xavierca1/codease-contact/internal/infra/mail"
	"github.com/xavierca1/codease-contact/internal/infra/sheet"
	"github.com/xavierca1/codease-contact/internal/logger"
	"github.com/xavierca1/codease-contact/internal/usecase"
)

var (
	cfg config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "api",
	Short: "Codease contact form backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		log, err = logger.New(cfg.LogLevel, cfg.IsDevelopment())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every stored submission to an xlsx file",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", sheet.FileName, "destination file")
	rootCmd.AddCommand(serveCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	notifier, err := mail.NewNotifier(a.transport, cfg.Mail.User, mail.Brand{
		Name:         cfg.Mail.CompanyName,
		SupportEmail: cfg.Mail.SupportEmail,
		SupportPhone: cfg.Mail.SupportPhone,
	})
	if err != nil {
		return err
	}

	submitUC := usecase.NewSubmitContactUseCase(
		a.submissionLog(),
		notifier,
		a.events(),
		usecase.PersistencePolicy(cfg.PersistencePolicy),
		log,
	)
	exportUC := usecase.NewExportSubmissionsUseCase(a.submissionLog(), sheet.Exporter{})

	banner := fmt.Sprintf("🚀 %s Backend is running", cfg.Mail.CompanyName)
	contactHandler := handlers.NewContactHandler(submitUC, exportUC, a.rateLimiter(), cfg.IsDevelopment(), log)
	healthHandler := handlers.NewHealthHandler(banner, a.checks)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.New(router.Deps{
			Contact:     contactHandler,
			Health:      healthHandler,
			AdminToken:  cfg.AdminToken,
			CORSOrigins: cfg.CORSOrigins,
			Logger:      log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.limiter != nil {
		g.Go(func() error {
			a.limiter.Cleanup(ctx, 10*time.Minute)
			return nil
		})
	}

	g.Go(func() error {
		log.Info("server running",
			zap.String("addr", srv.Addr),
			zap.String("log_backend", cfg.LogBackend),
			zap.String("persistence_policy", cfg.PersistencePolicy),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	f, err := os.Create(exportOutput)
	if err != nil {
		return err
	}

	n, err := usecase.NewExportSubmissionsUseCase(a.submissionLog(), sheet.Exporter{}).Execute(cmd.Context(), f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(exportOutput)
		return err
	}

	log.Info("submissions exported", zap.String("path", exportOutput), zap.Int("rows", n))
	return nil
}
