package batch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joseph-ayodele/ensayos/internal/common"
)

const okBody = `{
  "informe": {"numero_ensayo": "12345", "cliente": "Minera Sur", "fecha_recepcion": "2024-01-02",
    "fecha_inicio": "2024-01-03", "fecha_termino": "2024-01-05"},
  "informe_elemento": [
    {"numero_ensayo": "12345", "elemento": "Au", "nombre": "Oro", "unidad": "g/t", "ley": 1.25}
  ]
}`

func TestClientExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "12345.pdf" || string(data) != "%PDF-1.4" {
			t.Errorf("got upload %q with %q", hdr.Filename, data)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, okBody)
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, 0).Extract(context.Background(), "12345.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Informe.NumeroEnsayo != "12345" || res.Informe.Cliente != "Minera Sur" {
		t.Errorf("informe = %+v", res.Informe)
	}
	if len(res.InformeElemento) != 1 || res.InformeElemento[0].Ley != 1.25 {
		t.Errorf("elementos = %+v", res.InformeElemento)
	}
}

func TestClientExtractHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).Extract(context.Background(), "a.pdf", []byte("x"))
	if err == nil || !strings.HasPrefix(err.Error(), "HTTP 500: ") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("got %v", err)
	}
}

func TestClientExtractUnexpectedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"informe": {"numero_ensayo": 5}}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).Extract(context.Background(), "a.pdf", []byte("x"))
	if !errors.Is(err, common.ErrUnexpectedResponse) {
		t.Errorf("got %v, want ErrUnexpectedResponse", err)
	}
}

func TestDecodeResponse(t *testing.T) {
	t.Run("list takes first element", func(t *testing.T) {
		res, err := decodeResponse([]byte("[" + okBody + "]"))
		if err != nil {
			t.Fatalf("decodeResponse: %v", err)
		}
		if res.Informe.NumeroEnsayo != "12345" {
			t.Errorf("numero = %q", res.Informe.NumeroEnsayo)
		}
	})
	t.Run("empty elements stay non-nil", func(t *testing.T) {
		body := `{"informe": {"numero_ensayo": "", "cliente": "", "fecha_recepcion": "",
			"fecha_inicio": "", "fecha_termino": ""}, "informe_elemento": []}`
		res, err := decodeResponse([]byte(body))
		if err != nil {
			t.Fatalf("decodeResponse: %v", err)
		}
		if res.InformeElemento == nil {
			t.Error("InformeElemento is nil")
		}
	})
	for name, body := range map[string]string{
		"empty list":      `[]`,
		"not json":        `<html>`,
		"missing key":     `{"informe": {}}`,
		"ley as a string": strings.Replace(okBody, "1.25", `"1.25"`, 1),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := decodeResponse([]byte(body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc..." {
		t.Errorf("got %q", got)
	}
	if got := truncate("abc", 3); got != "abc" {
		t.Errorf("got %q", got)
	}
}
