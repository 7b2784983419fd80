package assay

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// elementRule maps a Spanish label fragment to its canonical element.
// Rules are evaluated in order and the first key contained in the cleaned
// label wins. No key may be a substring of another key.
type elementRule struct {
	key    string
	symbol string
	name   string
}

var elementRules = []elementRule{
	{key: "oro", symbol: "Au", name: "Oro"},
	{key: "plata", symbol: "Ag", name: "Plata"},
	{key: "cobre", symbol: "Cu", name: "Cobre"},
	{key: "plomo", symbol: "Pb", name: "Plomo"},
	{key: "zinc", symbol: "Zn", name: "Zinc"},
	{key: "arsénico", symbol: "As", name: "Arsénico"},
	{key: "arsenico", symbol: "As", name: "Arsénico"},
	{key: "humedad", symbol: "H2O", name: "Humedad"},
}

// reSymbolNote matches a parenthesized symbol annotation such as "(Au)" or "( H2O )".
var reSymbolNote = regexp.MustCompile(`(?i)\(\s*(?:au|ag|cu|pb|zn|as|h2o)\s*\)`)

// NormalizeElement maps a raw column label to its canonical (symbol, name).
//
// The label is trimmed, NFC-folded, lower-cased and stripped of symbol
// annotations, then matched by containment against elementRules. A label that
// is itself a canonical symbol ("AU", "Au(Au)") resolves to that element.
// Anything else comes back as the trimmed label and its title-cased form.
func NormalizeElement(label string) (symbol, name string) {
	raw := strings.TrimSpace(label)
	cleaned := strings.ToLower(norm.NFC.String(raw))
	cleaned = strings.TrimSpace(reSymbolNote.ReplaceAllString(cleaned, ""))

	for _, r := range elementRules {
		if strings.Contains(cleaned, r.key) {
			return r.symbol, r.name
		}
	}
	for _, r := range elementRules {
		if cleaned == strings.ToLower(r.symbol) {
			return r.symbol, r.name
		}
	}
	return raw, titleWords(raw)
}

// titleWords upper-cases the first letter of every run of letters and
// lower-cases the rest, so "h2o x" becomes "H2O X" and "o'neil" "O'Neil".
func titleWords(s string) string {
	// Casers are stateful; one per call keeps this safe for concurrent use.
	caser := cases.Title(language.Spanish)
	var b strings.Builder
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(caser.String(s[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(caser.String(s[start:]))
	}
	return b.String()
}

// normalizeText folds decomposed accents ("e" + U+0301) into their composed
// form so that patterns written with "é"/"ó" match text from any PDF encoder.
func normalizeText(s string) string {
	return norm.NFC.String(s)
}
