package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/ensayos/constants"
	"github.com/joseph-ayodele/ensayos/internal/entity"
)

// Uploader sends one document for extraction.
type Uploader interface {
	Extract(ctx context.Context, filename string, data []byte) (entity.ExtractionResult, error)
}

// FileResult is the outcome for one input file. Err is empty on success.
type FileResult struct {
	Path    string
	Result  entity.ExtractionResult
	OutPath string
	Err     string
}

type Summary struct {
	RunID  string
	OK     int
	Failed int
	OutDir string // absolute
	Files  []FileResult
}

// Results returns the successful extraction results in input order.
func (s Summary) Results() []entity.ExtractionResult {
	var out []entity.ExtractionResult
	for _, f := range s.Files {
		if f.Err == "" {
			out = append(out, f.Result)
		}
	}
	return out
}

// Runner processes files one by one; a failing file never stops the batch.
type Runner struct {
	uploader Uploader
	outDir   string
	stdout   io.Writer
	stderr   io.Writer
	logger   *slog.Logger
}

func NewRunner(uploader Uploader, outDir string, stdout, stderr io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &Runner{uploader: uploader, outDir: outDir, stdout: stdout, stderr: stderr, logger: logger}
}

// Run processes paths in order and prints one line per file plus a summary.
// It only fails when the output directory cannot be created.
func (r *Runner) Run(ctx context.Context, paths []string) (Summary, error) {
	abs, err := filepath.Abs(r.outDir)
	if err != nil {
		return Summary{}, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create output dir: %w", err)
	}

	sum := Summary{RunID: uuid.NewString(), OutDir: abs}
	logger := r.logger.With("run_id", sum.RunID)
	logger.Info("batch started", "files", len(paths), "out_dir", abs)

	for _, p := range paths {
		fr := r.processFile(ctx, p, abs)
		name := filepath.Base(p)
		if fr.Err != "" {
			sum.Failed++
			fmt.Fprintf(r.stderr, "[ERROR] %s: %s\n", name, fr.Err)
			logger.Warn("file failed", "file", name, "error", fr.Err)
		} else {
			sum.OK++
			fmt.Fprintf(r.stdout, "[OK] %s -> ensayo %s, elementos=%d\n",
				name, fr.Result.Informe.NumeroEnsayo, len(fr.Result.InformeElemento))
		}
		sum.Files = append(sum.Files, fr)
	}

	fmt.Fprintf(r.stdout, "Summary: %d OK, %d with errors. JSON files in: %s\n", sum.OK, sum.Failed, abs)
	logger.Info("batch finished", "ok", sum.OK, "failed", sum.Failed)
	return sum, nil
}

func (r *Runner) processFile(ctx context.Context, path, outDir string) FileResult {
	fr := FileResult{Path: path}
	fail := func(err error) FileResult {
		fr.Err = err.Error()
		return fr
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fail(errors.New("file does not exist"))
	}
	if err != nil {
		return fail(err)
	}
	if info.IsDir() {
		return fail(errors.New("file does not exist"))
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	var data []byte
	uploadName := base
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		if data, err = os.ReadFile(path); err != nil {
			return fail(err)
		}
	case constants.IMAGE:
		if data, err = ImageToPDF(path); err != nil {
			return fail(err)
		}
		uploadName = stem + ".pdf"
	default:
		return fail(fmt.Errorf("unsupported extension: %s", strings.ToLower(ext)))
	}

	res, err := r.uploader.Extract(ctx, uploadName, data)
	if err != nil {
		return fail(err)
	}
	fr.Result = res

	out := filepath.Join(outDir, stem+".json")
	if err := writeJSONFile(out, res); err != nil {
		return fail(err)
	}
	fr.OutPath = out
	return fr
}

// writeJSONFile writes v indented, keeping non-ASCII characters as UTF-8.
func writeJSONFile(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
