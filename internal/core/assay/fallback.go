package assay

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/ensayos/internal/entity"
)

// minLeyValues is the fewest numbers a "Ley" window must yield to be accepted.
const minLeyValues = 7

// leyWindowLines is how many lines (the "Ley" line included) are stitched
// together to recover values that wrapped onto following lines.
const leyWindowLines = 3

// leySlot describes one position of the flattened "Ley" row.
type leySlot struct {
	symbol string
	name   string
	unit   string
	keep   bool // false for the ozt/tc duplicates of Au and Ag
}

// leySlots is the printed column order of the certificate grade row:
// Au g/tm, Au ozt/tc, Ag g/tm, Ag ozt/tc, Cu, Pb, Zn, As, H2O.
var leySlots = [9]leySlot{
	0: {symbol: "Au", name: "Oro", unit: "g/tm", keep: true},
	1: {symbol: "Au", name: "Oro", unit: "ozt/tc"},
	2: {symbol: "Ag", name: "Plata", unit: "g/tm", keep: true},
	3: {symbol: "Ag", name: "Plata", unit: "ozt/tc"},
	4: {symbol: "Cu", name: "Cobre", unit: "%", keep: true},
	5: {symbol: "Pb", name: "Plomo", unit: "%", keep: true},
	6: {symbol: "Zn", name: "Zinc", unit: "%", keep: true},
	7: {symbol: "As", name: "Arsénico", unit: "%", keep: true},
	8: {symbol: "H2O", name: "Humedad", unit: "%", keep: true},
}

var reNumber = regexp.MustCompile(`[-+]?\d+(?:[.,]\d+)?`)

// ExtractTextElements is the last-resort strategy over the flattened document
// text. The first line that reads as a "Ley" row and whose window yields at
// least minLeyValues numbers is mapped onto leySlots; later candidates are not
// considered. Slots past the recovered values are omitted.
func ExtractTextElements(fullText, numeroEnsayo string) []entity.InformeElemento {
	values := findLeyValues(splitLines(fullText))
	if len(values) == 0 {
		return nil
	}

	var out []entity.InformeElemento
	for i, slot := range leySlots {
		if i >= len(values) {
			break
		}
		if !slot.keep {
			continue
		}
		out = append(out, entity.InformeElemento{
			NumeroEnsayo: numeroEnsayo,
			Elemento:     slot.symbol,
			Nombre:       slot.name,
			Unidad:       slot.unit,
			Ley:          values[i],
		})
	}
	return out
}

func findLeyValues(lines []string) []float64 {
	for i, line := range lines {
		if !isLeyLine(line) {
			continue
		}
		window := line
		if _, after, found := strings.Cut(line, "Ley"); found {
			window = after
		}
		for j := i + 1; j < i+leyWindowLines && j < len(lines); j++ {
			window += " " + lines[j]
		}
		if nums := numbers(window); len(nums) >= minLeyValues {
			return nums
		}
	}
	return nil
}

// isLeyLine accepts lines holding "Ley" as a standalone word or starting with
// "ley" in any case.
func isLeyLine(line string) bool {
	return strings.Contains(" "+line+" ", " Ley ") ||
		strings.HasPrefix(strings.ToLower(line), "ley")
}

func numbers(s string) []float64 {
	var out []float64
	for _, tok := range reNumber.FindAllString(s, -1) {
		if v, ok := ParseLey(tok); ok {
			out = append(out, v)
		}
	}
	return out
}

// splitLines returns the trimmed, non-empty lines of s. Form feeds, vertical
// tabs and the Unicode line separators count as line breaks.
func splitLines(s string) []string {
	raw := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '\n', '\r', '\f', '\v', '\u0085', '\u2028', '\u2029':
			return true
		}
		return false
	})
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
