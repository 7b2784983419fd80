package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubRunner struct {
	name   string
	args   []string
	stdout string
	stderr string
	err    error
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.name = name
	s.args = args
	return []byte(s.stdout), []byte(s.stderr), s.err
}

func TestTesseractEngineRecognize(t *testing.T) {
	r := &stubRunner{stdout: "INFORME DE ENSAYO N° 12\r\n\r\n\r\n\r\nLey\t1,2   0,05\n-----\n"}
	e := NewTesseractEngine(Config{TessdataDir: "/opt/tessdata", PSM: 6}, r, nil)

	got, err := e.Recognize(context.Background(), "scan.png")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if want := "INFORME DE ENSAYO N° 12\n\nLey 1,2 0,05"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	if r.name != "tesseract" {
		t.Errorf("binary = %q", r.name)
	}
	wantArgs := "scan.png stdout -l spa --psm 6 --tessdata-dir /opt/tessdata"
	if strings.Join(r.args, " ") != wantArgs {
		t.Errorf("args = %q, want %q", strings.Join(r.args, " "), wantArgs)
	}
}

func TestTesseractEngineError(t *testing.T) {
	r := &stubRunner{stderr: "Error opening data file", err: errors.New("exit status 1")}
	e := NewTesseractEngine(Config{Tesseract: "/usr/local/bin/tesseract", Lang: "eng"}, r, nil)

	_, err := e.Recognize(context.Background(), "scan.png")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Error opening data file") {
		t.Errorf("error %q does not carry stderr", err)
	}
	if r.name != "/usr/local/bin/tesseract" || r.args[3] != "eng" {
		t.Errorf("unexpected invocation %s %v", r.name, r.args)
	}
}

func TestNew(t *testing.T) {
	if _, err := New(Config{}, nil); err != nil {
		t.Errorf("default engine: %v", err)
	}
	if _, err := New(Config{Engine: "paddle"}, nil); err == nil {
		t.Error("expected error for unknown engine")
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"":                           "",
		"a\r\nb":                     "a\nb",
		"a\t\tb   c  ":               "a b c",
		"a\n\n\n\n\nb":               "a\n\nb",
		"Ley 0,5\n______\nCu 1":      "Ley 0,5\n\nCu 1",
		"  Muestra 01 Ley 0,015  \n": "Muestra 01 Ley 0,015",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
