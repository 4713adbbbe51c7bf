package cmd

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

	"github.com/example/reckon/internal/api"
	"github.com/example/reckon/pkg/audit"
)

var serveListen string

// serveCmd runs the settlement engine behind the HTTP adapter.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the settlement engine over HTTP",
	Long: `Start an HTTP server that accepts transactions on /v1/transactions and
reports account balances on /v1/accounts. The ledger lives in memory for
the lifetime of the process.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = serveListen
	}

	var journal *audit.Journal
	if cfg.AuditFile != "" {
		f, err := os.Create(cfg.AuditFile)
		if err != nil {
			return fmt.Errorf("failed to create audit journal: %w", err)
		}
		defer f.Close()
		journal = audit.NewJournal(f)
	}

	router := api.NewRouter(api.Dependencies{
		Logger:  log,
		Settler: api.NewSettler(journal),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Info("settlement api listening", zap.String("addr", cfg.ListenAddr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
