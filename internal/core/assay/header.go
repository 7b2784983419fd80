package assay

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/ensayos/internal/entity"
)

var (
	reNumero    = regexp.MustCompile(`(?i)INFORME DE ENSAYO\s*N[°º]\s*(\d+)`)
	reCliente   = regexp.MustCompile(`(?i)Cliente\s*:\s*(.+)`)
	reRecepcion = regexp.MustCompile(`(?i)Fecha de Recepción\s*:\s*(\d{2}/\d{2}/\d{4})`)
	reInicio    = regexp.MustCompile(`(?i)Fecha de Inicio de Ensayo\s*:\s*(\d{2}/\d{2}/\d{4})`)
	reTermino   = regexp.MustCompile(`(?i)Fecha de Término de Ensayo\s*:\s*(\d{2}/\d{2}/\d{4})`)

	reDate = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)
)

// ExtractHeader applies the five header patterns independently to the full
// document text. Any pattern that does not match leaves its field empty.
// The client name comes back without trailing spaces or periods; Extractor
// re-appends the canonical final period.
func ExtractHeader(text string) entity.Informe {
	text = normalizeText(text)
	return entity.Informe{
		NumeroEnsayo:   strings.TrimSpace(firstGroup(reNumero, text)),
		Cliente:        strings.TrimRight(strings.TrimSpace(firstGroup(reCliente, text)), " ."),
		FechaRecepcion: dateField(reRecepcion, text),
		FechaInicio:    dateField(reInicio, text),
		FechaTermino:   dateField(reTermino, text),
	}
}

// ToISO rewrites the first DD/MM/YYYY found in s as YYYY-MM-DD. Input without
// such a date is returned unchanged.
func ToISO(s string) string {
	m := reDate.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return m[3] + "-" + m[2] + "-" + m[1]
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

func dateField(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return ToISO(m[1])
}
