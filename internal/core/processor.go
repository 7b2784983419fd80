package core

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/ensayos/internal/common"
	"github.com/joseph-ayodele/ensayos/internal/core/assay"
	"github.com/joseph-ayodele/ensayos/internal/core/source"
)

// Processor coordinates decoding (text + tables) then assay extraction.
type Processor struct {
	logger    *slog.Logger
	source    source.Source
	extractor *assay.Extractor
}

func NewProcessor(logger *slog.Logger, src source.Source, extractor *assay.Extractor) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = assay.NewExtractor(logger)
	}
	return &Processor{
		logger:    logger,
		source:    src,
		extractor: extractor,
	}
}

// ProcessFile decodes the file at path and extracts its report. Decoding
// errors are returned; once a document is loaded extraction always yields a
// result, possibly with an empty header and no elements.
func (p *Processor) ProcessFile(ctx context.Context, path string) (assay.Outcome, error) {
	start := time.Now()
	doc, err := p.source.Load(ctx, path)
	if err != nil {
		p.logger.Error("processor.load.failed", "file", filepath.Base(path), "err", err)
		return assay.Outcome{}, common.WrapError(err, "load "+filepath.Base(path))
	}

	out := p.extractor.Extract(doc)
	p.logger.Info("processed file",
		"file", filepath.Base(path),
		"pages", len(doc.Pages),
		"numero_ensayo", out.Result.Informe.NumeroEnsayo,
		"method", out.Method,
		"elements", len(out.Result.InformeElemento),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
