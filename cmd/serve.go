package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nunnai/marketmentor/internal/config"
	"github.com/nunnai/marketmentor/internal/db"
	"github.com/nunnai/marketmentor/internal/history"
	"github.com/nunnai/marketmentor/internal/server"
)

var (
	servePort    int
	serveHistory string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the question backend",
	Long: `Starts the Market Mentor HTTP backend: POST /ask for the widget, the
landing page with its no-script form, the legal pages, static files and
Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		if cmd.Flags().Changed("history-db") {
			cfg.Server.HistoryDB = serveHistory
		}

		logger, err := newLogger(false)
		if err != nil {
			return err
		}
		defer logger.Sync()

		if missing := config.MissingEnv(config.BackendSecrets...); len(missing) > 0 {
			logger.Warn("missing credentials, affected features will degrade",
				zap.String("vars", strings.Join(missing, ", ")))
		}

		m, err := createMentor(cfg, logger)
		if err != nil {
			return fmt.Errorf("creating pipeline: %w", err)
		}

		var opts []server.Option
		if cfg.Server.HistoryDB != "" {
			database, err := db.Open(cfg.Server.HistoryDB)
			if err != nil {
				return fmt.Errorf("opening question log: %w", err)
			}
			defer database.Close()
			opts = append(opts, server.WithHistory(history.NewStore(database)))
		}

		srv, err := server.New(server.Config{
			Port:           cfg.Server.Port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			PublicDir:      cfg.Server.PublicDir,
			TermsFile:      cfg.Server.TermsFile,
			PrivacyFile:    cfg.Server.PrivacyFile,
			RequestTimeout: cfg.Server.RequestTimeout,
			Footer:         cfg.Footer,
		}, m, logger, opts...)
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		logger.Info("mentor backend starting",
			zap.String("version", Version),
			zap.Int("port", cfg.Server.Port),
			zap.String("answer_model", cfg.LLM.AnswerModel),
			zap.String("history_db", cfg.Server.HistoryDB),
		)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides server.port)")
	serveCmd.Flags().StringVar(&serveHistory, "history-db", "", "SQLite question log path, empty to disable (overrides server.history_db)")
	rootCmd.AddCommand(serveCmd)
}
