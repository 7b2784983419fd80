package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"
	"github.com/tsawler/tabula/text"

	"github.com/joseph-ayodele/ensayos/internal/core/assay"
)

const (
	// fragments whose baselines differ by less than this share of their
	// height sit on the same line
	lineTolerance = 0.5
	// a horizontal gap wider than this share of the font size is a word break
	wordGapRatio = 0.3
)

// PDFSource reads PDFs with tabula: per-page text rebuilt from positioned
// fragments and tables from the geometric detector. Files tabula cannot open
// are re-read as plain text with ledongthuc/pdf, without tables.
type PDFSource struct {
	logger   *slog.Logger
	detector *tables.GeometricDetector
}

func NewPDFSource(logger *slog.Logger) *PDFSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFSource{logger: logger, detector: tables.NewGeometricDetector()}
}

func (s *PDFSource) Load(ctx context.Context, path string) (assay.Document, error) {
	doc, err := s.loadLayout(ctx, path)
	if err == nil {
		return doc, nil
	}
	if ctx.Err() != nil {
		return assay.Document{}, ctx.Err()
	}
	s.logger.Warn("layout read failed, using plain text", "path", path, "error", err)

	doc, ferr := loadPlainText(ctx, path)
	if ferr != nil {
		return assay.Document{}, fmt.Errorf("read pdf: %w", errors.Join(err, ferr))
	}
	return doc, nil
}

func (s *PDFSource) loadLayout(ctx context.Context, path string) (assay.Document, error) {
	r, err := reader.Open(path)
	if err != nil {
		return assay.Document{}, fmt.Errorf("open: %w", err)
	}
	defer r.Close()

	n, err := r.PageCount()
	if err != nil {
		return assay.Document{}, fmt.Errorf("page count: %w", err)
	}

	doc := assay.Document{Pages: make([]assay.Page, 0, n)}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return assay.Document{}, err
		}
		p, err := r.GetPage(i)
		if err != nil {
			return assay.Document{}, fmt.Errorf("page %d: %w", i+1, err)
		}
		frags, err := r.ExtractTextFragments(p)
		if err != nil {
			// one undecodable content stream should not sink the document
			s.logger.Warn("page text unreadable", "path", path, "page", i+1, "error", err)
			frags = nil
		}
		doc.Pages = append(doc.Pages, s.buildPage(i+1, frags))
	}
	s.logger.Debug("pdf loaded", "path", path, "pages", n)
	return doc, nil
}

func (s *PDFSource) buildPage(number int, frags []text.TextFragment) assay.Page {
	page := assay.Page{Number: number, Text: assembleLines(frags)}
	if len(frags) == 0 {
		return page
	}

	mp := &model.Page{Number: number, RawText: toModelFragments(frags)}
	detected, err := s.detector.Detect(mp)
	if err != nil {
		s.logger.Debug("table detection failed", "page", number, "error", err)
		return page
	}
	for _, t := range detected {
		if t == nil {
			continue
		}
		page.Tables = append(page.Tables, fromModelTable(t))
	}
	return page
}

func toModelFragments(frags []text.TextFragment) []model.TextFragment {
	out := make([]model.TextFragment, 0, len(frags))
	for _, f := range frags {
		out = append(out, model.TextFragment{
			Text:     f.Text,
			BBox:     model.BBox{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
			FontSize: f.FontSize,
			FontName: f.FontName,
		})
	}
	return out
}

// fromModelTable keeps the detector's grid shape; cells without any text
// become absent cells.
func fromModelTable(t *model.Table) assay.Table {
	out := make(assay.Table, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = make([]assay.Cell, len(row))
		for j, c := range row {
			txt := strings.TrimSpace(c.Text)
			if txt == "" {
				continue
			}
			out[i][j] = assay.TextCell(txt)
		}
	}
	return out
}

// assembleLines rebuilds reading-order text: fragments are grouped into
// lines top to bottom (PDF y grows upwards), each line is ordered left to
// right, and a space is inserted where the gap between fragments is wide.
func assembleLines(frags []text.TextFragment) string {
	if len(frags) == 0 {
		return ""
	}
	sorted := make([]text.TextFragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines [][]text.TextFragment
	var baseline, height float64
	for _, f := range sorted {
		if f.Text == "" {
			continue
		}
		if len(lines) > 0 && math.Abs(f.Y-baseline) <= math.Max(height, f.Height)*lineTolerance {
			lines[len(lines)-1] = append(lines[len(lines)-1], f)
			continue
		}
		lines = append(lines, []text.TextFragment{f})
		baseline, height = f.Y, f.Height
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
		var b strings.Builder
		var lastEnd float64
		for k, f := range line {
			if k > 0 && f.X-lastEnd > f.FontSize*wordGapRatio &&
				!strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(f.Text, " ") {
				b.WriteByte(' ')
			}
			b.WriteString(f.Text)
			lastEnd = f.X + f.Width
		}
		if l := strings.TrimSpace(b.String()); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func loadPlainText(ctx context.Context, path string) (assay.Document, error) {
	f, r, err := lpdf.Open(path)
	if err != nil {
		return assay.Document{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	doc := assay.Document{Pages: make([]assay.Page, 0, n)}
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return assay.Document{}, err
		}
		page := assay.Page{Number: i}
		if p := r.Page(i); !p.V.IsNull() {
			if txt, err := p.GetPlainText(nil); err == nil {
				page.Text = strings.TrimSpace(txt)
			}
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}
