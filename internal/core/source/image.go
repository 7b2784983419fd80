package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/ensayos/internal/core/assay"
	"github.com/joseph-ayodele/ensayos/internal/core/ocr"
)

// ImageSource OCRs a raster scan into a single page without tables.
type ImageSource struct {
	engine ocr.Engine
	logger *slog.Logger
}

func NewImageSource(engine ocr.Engine, logger *slog.Logger) *ImageSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageSource{engine: engine, logger: logger}
}

func (s *ImageSource) Load(ctx context.Context, path string) (assay.Document, error) {
	txt, err := s.engine.Recognize(ctx, path)
	if err != nil {
		return assay.Document{}, fmt.Errorf("ocr %s: %w", path, err)
	}
	s.logger.Debug("image loaded", "path", path, "chars", len(txt))
	return assay.Document{Pages: []assay.Page{{Number: 1, Text: txt}}}, nil
}
