// Package source decodes input files into assay documents: page text plus
// any tables the layout detector finds.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/joseph-ayodele/ensayos/constants"
	"github.com/joseph-ayodele/ensayos/internal/common"
	"github.com/joseph-ayodele/ensayos/internal/core/assay"
	"github.com/joseph-ayodele/ensayos/internal/core/ocr"
)

// Source loads one file into a Document.
type Source interface {
	Load(ctx context.Context, path string) (assay.Document, error)
}

// Router dispatches to a PDF or image source by file extension.
type Router struct {
	PDF   Source
	Image Source // nil disables image input
}

func NewRouter(engine ocr.Engine, logger *slog.Logger) *Router {
	r := &Router{PDF: NewPDFSource(logger)}
	if engine != nil {
		r.Image = NewImageSource(engine, logger)
	}
	return r
}

// ForPath returns the source that handles path.
func (r *Router) ForPath(path string) (Source, error) {
	ext := filepath.Ext(path)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		return r.PDF, nil
	case constants.IMAGE:
		if r.Image != nil {
			return r.Image, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
}

// Load implements Source by routing on the path's extension.
func (r *Router) Load(ctx context.Context, path string) (assay.Document, error) {
	src, err := r.ForPath(path)
	if err != nil {
		return assay.Document{}, err
	}
	return src.Load(ctx, path)
}
