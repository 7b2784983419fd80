package assay

import (
	"strings"
	"testing"

	"github.com/joseph-ayodele/ensayos/internal/entity"
)

func TestLeySlotsLayout(t *testing.T) {
	want := []struct {
		symbol string
		unit   string
		keep   bool
	}{
		{"Au", "g/tm", true},
		{"Au", "ozt/tc", false},
		{"Ag", "g/tm", true},
		{"Ag", "ozt/tc", false},
		{"Cu", "%", true},
		{"Pb", "%", true},
		{"Zn", "%", true},
		{"As", "%", true},
		{"H2O", "%", true},
	}
	for i, w := range want {
		s := leySlots[i]
		if s.symbol != w.symbol || s.unit != w.unit || s.keep != w.keep {
			t.Errorf("slot %d = %+v, want %+v", i, s, w)
		}
		if sym, _ := NormalizeElement(s.name); sym != s.symbol {
			t.Errorf("slot %d name %q normalizes to %q, want %q", i, s.name, sym, s.symbol)
		}
	}
}

func TestExtractTextElementsPositionalMapping(t *testing.T) {
	text := strings.Join([]string{
		"INFORME DE ENSAYO N° 555",
		"Muestra M-1 Ley 1.2 0.05 15.3 0.4 0.10 0.20 0.30 0.015 1.1",
		"Observaciones: ninguna",
	}, "\n")

	got := ExtractTextElements(text, "555")
	want := []entity.InformeElemento{
		{NumeroEnsayo: "555", Elemento: "Au", Nombre: "Oro", Unidad: "g/tm", Ley: 1.2},
		{NumeroEnsayo: "555", Elemento: "Ag", Nombre: "Plata", Unidad: "g/tm", Ley: 15.3},
		{NumeroEnsayo: "555", Elemento: "Cu", Nombre: "Cobre", Unidad: "%", Ley: 0.10},
		{NumeroEnsayo: "555", Elemento: "Pb", Nombre: "Plomo", Unidad: "%", Ley: 0.20},
		{NumeroEnsayo: "555", Elemento: "Zn", Nombre: "Zinc", Unidad: "%", Ley: 0.30},
		{NumeroEnsayo: "555", Elemento: "As", Nombre: "Arsénico", Unidad: "%", Ley: 0.015},
		{NumeroEnsayo: "555", Elemento: "H2O", Nombre: "Humedad", Unidad: "%", Ley: 1.1},
	}
	assertElements(t, got, want)
}

func TestExtractTextElementsStitchesWrappedLines(t *testing.T) {
	text := "Resultados\n\n  Ley 1,2 0,05 15,3  \n0,4 0,10 0,20\r\n0,30 0,015 1,1\nFin"

	got := ExtractTextElements(text, "8")
	if len(got) != 7 {
		t.Fatalf("got %d elements, want 7: %+v", len(got), got)
	}
	wantLey := []float64{1.2, 15.3, 0.10, 0.20, 0.30, 0.015, 1.1}
	for i, w := range wantLey {
		if got[i].Ley != w {
			t.Errorf("element %d (%s) ley = %v, want %v", i, got[i].Elemento, got[i].Ley, w)
		}
	}
}

func TestExtractTextElementsWindowIsThreeLines(t *testing.T) {
	// The last three values sit on the fourth line and are out of reach.
	text := "Ley 1 2\n3 4\n5 6\n7 8 9"
	if got := ExtractTextElements(text, ""); len(got) != 0 {
		t.Errorf("expected no elements, got %+v", got)
	}
}

func TestExtractTextElementsKeepsScanningShortCandidates(t *testing.T) {
	text := strings.Join([]string{
		"Ley aplicable 2024",
		"sin datos",
		"otro",
		"mas texto",
		"Ley 1 2 3 4 5 6 7",
	}, "\n")

	got := ExtractTextElements(text, "")
	want := []entity.InformeElemento{
		{Elemento: "Au", Nombre: "Oro", Unidad: "g/tm", Ley: 1},
		{Elemento: "Ag", Nombre: "Plata", Unidad: "g/tm", Ley: 3},
		{Elemento: "Cu", Nombre: "Cobre", Unidad: "%", Ley: 5},
		{Elemento: "Pb", Nombre: "Plomo", Unidad: "%", Ley: 6},
		{Elemento: "Zn", Nombre: "Zinc", Unidad: "%", Ley: 7},
	}
	assertElements(t, got, want)
}

// The first qualifying line wins even when a later one looks cleaner.
func TestExtractTextElementsFirstQualifyingLineWins(t *testing.T) {
	text := "Ley 1 2 3 4 5 6 7\nx\ny\nLey 9 9 9 9 9 9 9 9 9"
	got := ExtractTextElements(text, "")
	if len(got) == 0 || got[0].Ley != 1 {
		t.Fatalf("expected first candidate to win, got %+v", got)
	}
}

func TestExtractTextElementsUpperCaseLey(t *testing.T) {
	got := ExtractTextElements("LEY 1 2 3 4 5 6 7 8 9", "")
	if len(got) != 7 {
		t.Fatalf("got %d elements, want 7", len(got))
	}
	if got[6].Elemento != "H2O" || got[6].Ley != 9 {
		t.Errorf("last element = %+v", got[6])
	}
}

func TestExtractTextElementsNoLeyLine(t *testing.T) {
	for _, text := range []string{"", "Cliente: ACME\n1 2 3 4 5 6 7 8 9", "Leyes 1 2 3"} {
		if got := ExtractTextElements(text, ""); len(got) != 0 {
			t.Errorf("ExtractTextElements(%q) = %+v, want none", text, got)
		}
	}
}

func TestIsLeyLine(t *testing.T) {
	tests := map[string]bool{
		"Ley 1 2":         true,
		"Muestra Ley 1":   true,
		"Muestra Ley":     true,
		"ley: 1":          true,
		"LEY":             true,
		"Muestra Ley:1":   false,
		"Ensayo de leyes": false,
	}
	for line, want := range tests {
		if got := isLeyLine(line); got != want {
			t.Errorf("isLeyLine(%q) = %v, want %v", line, got, want)
		}
	}
}
