// Package ocr turns raster images of lab certificates into plain text.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Engine recognizes the text of one image file.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

type Config struct {
	Engine      string // "tesseract" (default) or "gosseract"
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "spa"
	TessdataDir string
	PSM         int // page segmentation mode; 0 leaves tesseract's default
}

// New returns the engine selected by cfg.Engine.
func New(cfg Config, logger *slog.Logger) (Engine, error) {
	switch cfg.Engine {
	case "", "tesseract":
		return NewTesseractEngine(cfg, nil, logger), nil
	case "gosseract":
		g, err := NewGosseractEngine(cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
	}
}

// TesseractEngine shells out to the tesseract CLI.
type TesseractEngine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseractEngine(cfg Config, runner Runner, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "spa"
	}
	return &TesseractEngine{cfg: cfg, runner: runner, logger: logger}
}

// Recognize runs `tesseract <img> stdout -l <lang>` and normalizes the output.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", e.cfg.Lang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(truncate(string(errb), 512)))
	}
	txt := Normalize(string(out))
	e.logger.Debug("ocr complete", "path", imagePath, "lang", e.cfg.Lang, "bytes", len(txt))
	return txt, nil
}
