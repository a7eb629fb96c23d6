package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  `Start an HTTP server that exposes parsing, scoring, matching and tailoring over REST.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, root, port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides config)")
	return cmd
}

func runServe(ctx context.Context, root *rootOptions, port int) error {
	a, err := loadApp(ctx, root)
	if err != nil {
		return err
	}
	defer a.Close()

	if port == 0 {
		port = a.cfg.Port
	}

	deps := server.Dependencies{
		ResumeParser: a.resumeParser,
		JobParser:    a.jobParser,
		Tailor:       a.engine,
		Matcher:      a.matcher,
		Audit:        a.newAuditLog(),
		Limiter:      a.newLimiter(),
		Logger:       a.logger,
	}

	database, err := a.connectDB(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if database != nil {
		deps.Store = database
		deps.Quota = database
		a.logger.Info("persistence enabled")
	} else {
		a.logger.Info("no database_url configured, persistence disabled")
	}
	if a.matcher == nil {
		a.logger.Info("similarity matching disabled")
	}

	srv, err := server.New(server.Config{Port: port}, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	a.logger.Info("starting tailor API",
		zap.Int("port", port),
		zap.String("parser_strategy", a.cfg.Parser.Strategy),
		zap.String("tailor_strategy", a.cfg.Tailor.Strategy))
	return srv.Start(ctx)
}
