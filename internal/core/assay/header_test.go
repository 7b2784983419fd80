package assay

import "testing"

const sampleHeader = `LABORATORIO ANALITICO DEL SUR
INFORME DE ENSAYO N° 12345
Cliente: Minera Los Andes S.A.C. .
Fecha de Recepción: 05/03/2024
Fecha de Inicio de Ensayo: 06/03/2024
Fecha de Término de Ensayo: 08/03/2024
`

func TestExtractHeader(t *testing.T) {
	got := ExtractHeader(sampleHeader)

	if got.NumeroEnsayo != "12345" {
		t.Errorf("NumeroEnsayo = %q", got.NumeroEnsayo)
	}
	if got.Cliente != "Minera Los Andes S.A.C" {
		t.Errorf("Cliente = %q", got.Cliente)
	}
	if got.FechaRecepcion != "2024-03-05" {
		t.Errorf("FechaRecepcion = %q", got.FechaRecepcion)
	}
	if got.FechaInicio != "2024-03-06" {
		t.Errorf("FechaInicio = %q", got.FechaInicio)
	}
	if got.FechaTermino != "2024-03-08" {
		t.Errorf("FechaTermino = %q", got.FechaTermino)
	}
}

func TestExtractHeaderCaseInsensitive(t *testing.T) {
	text := "informe de ensayo nº 77\ncliente :  ACME\nfecha de recepción: 01/02/2023"
	got := ExtractHeader(text)
	if got.NumeroEnsayo != "77" || got.Cliente != "ACME" || got.FechaRecepcion != "2023-02-01" {
		t.Errorf("ExtractHeader = %+v", got)
	}
}

func TestExtractHeaderDecomposedAccents(t *testing.T) {
	text := "Fecha de Te\u0301rmino de Ensayo: 10/11/2022"
	if got := ExtractHeader(text).FechaTermino; got != "2022-11-10" {
		t.Errorf("FechaTermino = %q", got)
	}
}

func TestExtractHeaderMissingFields(t *testing.T) {
	got := ExtractHeader("INFORME DE ENSAYO N° 9\nFecha de Inicio de Ensayo: 2024-01-01")
	if got.NumeroEnsayo != "9" {
		t.Errorf("NumeroEnsayo = %q", got.NumeroEnsayo)
	}
	if got.Cliente != "" || got.FechaRecepcion != "" || got.FechaInicio != "" || got.FechaTermino != "" {
		t.Errorf("expected empty optional fields, got %+v", got)
	}

	if empty := ExtractHeader(""); empty != (ExtractHeader("nothing here")) {
		t.Errorf("empty text should behave like unmatched text")
	}
}

func TestToISO(t *testing.T) {
	tests := map[string]string{
		"05/03/2024":       "2024-03-05",
		"05/03/2024 10:30": "2024-03-05",
		"not-a-date":       "not-a-date",
		"":                 "",
		"5/3/2024":         "5/3/2024",
	}
	for in, want := range tests {
		if got := ToISO(in); got != want {
			t.Errorf("ToISO(%q) = %q, want %q", in, got, want)
		}
	}
}
