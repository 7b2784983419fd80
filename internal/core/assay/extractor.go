package assay

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/ensayos/constants"
	"github.com/joseph-ayodele/ensayos/internal/entity"
)

// Outcome is an extraction result plus how its elements were found.
type Outcome struct {
	Result entity.ExtractionResult
	Method constants.ExtractionMethod
	Page   int // page that supplied the table; 0 unless Method is MethodTable
}

// Extractor runs header extraction and the two element strategies over a
// decoded document. It holds no per-document state and is safe for concurrent use.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract reads the header once from the full text, then tries the table
// extractor page by page, stopping at the first page that yields elements.
// When every page comes back empty the text fallback runs once over the full
// text. An empty element list is a valid outcome.
func (e *Extractor) Extract(doc Document) Outcome {
	fullText := doc.FullText()
	header := ExtractHeader(fullText)

	out := Outcome{Method: constants.MethodNone}
	var items []entity.InformeElemento
	for _, page := range doc.Pages {
		if items = ExtractTableElements(page, header.NumeroEnsayo); len(items) > 0 {
			out.Method = constants.MethodTable
			out.Page = page.Number
			break
		}
	}
	if len(items) == 0 {
		if items = ExtractTextElements(fullText, header.NumeroEnsayo); len(items) > 0 {
			out.Method = constants.MethodText
		}
	}
	if items == nil {
		items = []entity.InformeElemento{}
	}

	header.Cliente = FinalizeCliente(header.Cliente)
	out.Result = entity.ExtractionResult{Informe: header, InformeElemento: items}

	e.logger.Debug("assay extracted",
		"numero_ensayo", header.NumeroEnsayo,
		"method", out.Method,
		"page", out.Page,
		"elements", len(items),
	)
	return out
}

// FinalizeCliente gives a non-empty client name exactly one trailing period.
func FinalizeCliente(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), " .")
	if s == "" {
		return ""
	}
	return s + "."
}
