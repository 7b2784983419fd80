package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/ensayos/internal/batch"
	"github.com/joseph-ayodele/ensayos/internal/common"
	"github.com/joseph-ayodele/ensayos/internal/export"
)

// errNoFiles maps to exit code 2.
var errNoFiles = errors.New("no files to process")

type options struct {
	template string
	start    int
	end      int
	dir      string
	pattern  string
	apiURL   string
	timeout  time.Duration
	outDir   string
	xlsx     string
	logLevel string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errNoFiles) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "ensayos-batch",
		Short: "Send assay certificates to the extraction service and save the JSON results",
		Long: `Send assay certificates (PDF or scanned images) to the extraction service.

Files are chosen either by a numbered template or by a glob inside a directory.
Images are converted to a one-page PDF before upload.

Example:
  ensayos-batch --template "scans/EN-{num:05d}.jpg" --start 120 --end 140
  ensayos-batch --dir ./informes --pattern "*.pdf" --xlsx informes.xlsx`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			useRange := cmd.Flags().Changed("start") && cmd.Flags().Changed("end") && o.template != ""
			return run(cmd.Context(), o, useRange)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.template, "template", "", "path template with a {num} or {num:0Nd} placeholder")
	f.IntVar(&o.start, "start", 0, "first number of the range (inclusive)")
	f.IntVar(&o.end, "end", 0, "last number of the range (inclusive)")
	f.StringVar(&o.dir, "dir", ".", "directory to scan when no range is given")
	f.StringVar(&o.pattern, "pattern", batch.DefaultPattern, "glob pattern inside --dir")
	f.StringVar(&o.apiURL, "api-url", batch.DefaultAPIURL, "extraction endpoint")
	f.DurationVar(&o.timeout, "timeout", batch.DefaultTimeout, "per-file request timeout")
	f.StringVar(&o.outDir, "out-dir", "out_json", "directory for the JSON results")
	f.StringVar(&o.xlsx, "xlsx", "", "also write an XLSX workbook of the successful results")
	f.StringVar(&o.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	return cmd
}

func run(ctx context.Context, o options, useRange bool) error {
	cfg := common.DefaultConfig()
	cfg.LogLevel = o.logLevel
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	var (
		paths []string
		err   error
	)
	if useRange {
		paths, err = batch.RangePaths(o.template, o.start, o.end)
	} else {
		paths, err = batch.GlobPaths(o.dir, o.pattern)
	}
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errNoFiles
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := batch.NewRunner(batch.NewClient(o.apiURL, o.timeout), o.outDir, os.Stdout, os.Stderr, logger)
	sum, err := runner.Run(ctx, paths)
	if err != nil {
		return err
	}

	if o.xlsx != "" {
		data, err := export.NewService(nil, logger).WriteXLSX(sum.Results())
		if err != nil {
			return fmt.Errorf("build xlsx: %w", err)
		}
		if err := os.WriteFile(o.xlsx, data, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		fmt.Printf("XLSX written to %s\n", o.xlsx)
	}
	return nil
}
