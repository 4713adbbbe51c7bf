package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/reckon/internal/export"
	"github.com/example/reckon/internal/pipeline"
	"github.com/example/reckon/pkg/audit"
)

var (
	processAudit     string
	processSQLite    string
	processPostgres  string
	processQueueSize int
)

// processCmd settles one CSV stream and prints the account snapshots.
var processCmd = &cobra.Command{
	Use:   "process [input.csv]",
	Short: "Settle a transaction stream and print final account balances",
	Long: `Read a CSV transaction stream, apply every record in order, and write
the final per-client balances as CSV on stdout. Pass "-" to read from
stdin.

A malformed input row aborts the run without output; business rule
rejections are logged and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processAudit, "audit", "", "write a hash-chained outcome journal to this file")
	processCmd.Flags().StringVar(&processSQLite, "sqlite-report", "", "write the run report to this SQLite database")
	processCmd.Flags().StringVar(&processPostgres, "pg-report", "", "write the run report to this PostgreSQL database")
	processCmd.Flags().IntVar(&processQueueSize, "queue-size", 0, "bounded decode queue size (default 1024)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cmd.Flags().Changed("audit") {
		cfg.AuditFile = processAudit
	}
	if cmd.Flags().Changed("sqlite-report") {
		cfg.SQLiteReport = processSQLite
	}
	if cmd.Flags().Changed("pg-report") {
		cfg.ReportDatabaseURL = processPostgres
	}
	if cmd.Flags().Changed("queue-size") {
		cfg.QueueSize = processQueueSize
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var in io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	opts := pipeline.Options{
		QueueSize: cfg.QueueSize,
		Logger:    log,
	}

	if cfg.AuditFile != "" {
		f, err := os.Create(cfg.AuditFile)
		if err != nil {
			return fmt.Errorf("failed to create audit journal: %w", err)
		}
		defer f.Close()
		opts.Audit = audit.NewJournal(f)
	}

	if cfg.SQLiteReport != "" {
		sink, err := export.OpenSQLite(cfg.SQLiteReport)
		if err != nil {
			return err
		}
		defer sink.Close()
		opts.Sinks = append(opts.Sinks, sink)
	}

	if cfg.ReportDatabaseURL != "" {
		sink, err := export.OpenPostgres(ctx, cfg.ReportDatabaseURL)
		if err != nil {
			return err
		}
		defer sink.Close()
		opts.Sinks = append(opts.Sinks, sink)
	}

	_, err = pipeline.Run(ctx, in, os.Stdout, opts)
	return err
}
