package assay

import (
	"strings"

	"github.com/joseph-ayodele/ensayos/constants"
	"github.com/joseph-ayodele/ensayos/internal/entity"
)

// headerScanRows is how many leading rows may hold the "Elemento" header.
const headerScanRows = 3

// gradeTable holds the three positionally aligned columns read from an
// element table: labels[i], units[i] and values[i] describe the same element.
type gradeTable struct {
	labels []string
	units  []string
	values []string
}

// findGradeTable returns the columns of the first table that has an
// "Elemento" header row within its first rows and a "Ley" row. The units row
// is optional. ok is false when no table qualifies.
func findGradeTable(tables []Table) (gradeTable, bool) {
	for _, t := range tables {
		header := findHeaderRow(t)
		if header == nil {
			continue
		}

		var unitRow, leyRow []Cell
		for _, row := range t {
			first := ""
			if len(row) > 0 {
				first = strings.ToLower(strings.TrimSpace(row[0].String()))
			}
			if strings.Contains(first, "unidad") {
				unitRow = row
			}
			if first == "ley" {
				leyRow = row
			}
		}
		if leyRow == nil {
			continue
		}

		var g gradeTable
		for _, c := range header[1:] {
			if !c.empty() {
				g.labels = append(g.labels, c.Text)
			}
		}
		for _, c := range leyRow[1:] {
			if !c.empty() {
				g.values = append(g.values, c.Text)
			}
		}
		if len(unitRow) > 1 {
			for _, c := range unitRow[1:] {
				g.units = append(g.units, c.String())
			}
		}
		return g, true
	}
	return gradeTable{}, false
}

func findHeaderRow(t Table) []Cell {
	n := min(len(t), headerScanRows)
	for _, row := range t[:n] {
		for _, c := range row {
			if strings.Contains(c.String(), "Elemento") {
				return row
			}
		}
	}
	return nil
}

// ExtractTableElements reads element grades from the first qualifying table on
// a page. Entries whose grade does not parse are skipped. An empty result means
// the page has no usable table.
func ExtractTableElements(page Page, numeroEnsayo string) []entity.InformeElemento {
	g, ok := findGradeTable(page.Tables)
	if !ok {
		return nil
	}

	var out []entity.InformeElemento
	for i, label := range g.labels {
		if i >= len(g.values) {
			break
		}
		ley, ok := ParseLey(g.values[i])
		if !ok {
			continue
		}
		symbol, name := NormalizeElement(label)

		unit := ""
		if i < len(g.units) {
			unit = strings.TrimSpace(g.units[i])
		}
		if unit == "" {
			unit = constants.InferUnit(symbol)
		}

		out = append(out, entity.InformeElemento{
			NumeroEnsayo: numeroEnsayo,
			Elemento:     symbol,
			Nombre:       name,
			Unidad:       unit,
			Ley:          ley,
		})
	}
	return out
}
