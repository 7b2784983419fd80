//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine runs tesseract in-process through cgo. Build with
// -tags gosseract; it needs the tesseract and leptonica development headers.
type GosseractEngine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewGosseractEngine creates an engine for lang (default "spa").
// Close releases the underlying tesseract handle.
func NewGosseractEngine(cfg Config) (*GosseractEngine, error) {
	client := gosseract.NewClient()
	lang := cfg.Lang
	if lang == "" {
		lang = "spa"
	}
	if err := client.SetLanguage(lang); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set language: %w", err)
	}
	if cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataDir); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if cfg.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PSM)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set page seg mode: %w", err)
		}
	}
	return &GosseractEngine{client: client}, nil
}

// Recognize is serialized: a gosseract client holds one image at a time.
func (e *GosseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return Normalize(text), nil
}

func (e *GosseractEngine) Close() error {
	return e.client.Close()
}
