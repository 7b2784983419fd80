package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/ensayos/internal/common"
	"github.com/joseph-ayodele/ensayos/internal/core"
	"github.com/joseph-ayodele/ensayos/internal/core/assay"
	"github.com/joseph-ayodele/ensayos/internal/core/ocr"
	"github.com/joseph-ayodele/ensayos/internal/core/source"
	"github.com/joseph-ayodele/ensayos/internal/entity"
	"github.com/joseph-ayodele/ensayos/internal/export"
)

func main() {
	var (
		xlsxPath string
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "runextract <file> [file...]",
		Short: "Extract assay reports locally and print them as JSON",
		Long: `Run the extraction pipeline in-process, without the HTTP service.

One file prints a JSON object; several files print a JSON array.
OCR settings come from the usual config file and environment.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args, xlsxPath, timeout)
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the results to this XLSX file")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, files []string, xlsxPath string, timeout time.Duration) error {
	cfg, err := common.LoadConfig("")
	if err != nil {
		return err
	}
	// stdout carries the JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	engine, err := ocr.New(ocr.Config{
		Engine:      cfg.OCR.Engine,
		Tesseract:   cfg.OCR.Tesseract,
		Lang:        cfg.OCR.Lang,
		TessdataDir: cfg.OCR.TessdataDir,
		PSM:         cfg.OCR.PSM,
	}, logger)
	if err != nil {
		return err
	}
	processor := core.NewProcessor(logger, source.NewRouter(engine, logger), assay.NewExtractor(logger))

	results := make([]entity.ExtractionResult, 0, len(files))
	for _, f := range files {
		start := time.Now()
		out, err := processor.ProcessFile(ctx, f)
		if err != nil {
			return err
		}
		logger.Info("extraction OK",
			"file", f,
			"method", out.Method,
			"page", out.Page,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		results = append(results, out.Result)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	var v any = results
	if len(results) == 1 {
		v = results[0]
	}
	if err := enc.Encode(v); err != nil {
		return err
	}

	if xlsxPath != "" {
		data, err := export.NewService(nil, logger).WriteXLSX(results)
		if err != nil {
			return fmt.Errorf("build xlsx: %w", err)
		}
		if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}
	return nil
}
