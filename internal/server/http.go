package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/ensayos/constants"
	"github.com/joseph-ayodele/ensayos/internal/common"
	"github.com/joseph-ayodele/ensayos/internal/core/assay"
	"github.com/joseph-ayodele/ensayos/internal/core/async"
	"github.com/joseph-ayodele/ensayos/internal/entity"
)

const (
	defaultMaxUploadBytes = 32 << 20
	requestIDHeader       = "X-Request-ID"
)

// FileProcessor extracts one report from a file on disk.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (assay.Outcome, error)
}

type Options struct {
	MaxUploadBytes  int64
	BulkConcurrency int
	// Queue receives every result that carries a report number; nil disables persistence.
	Queue async.Queue
}

// ExtractServer serves the extraction endpoints over HTTP.
type ExtractServer struct {
	proc   FileProcessor
	opts   Options
	logger *slog.Logger
}

func NewExtractServer(proc FileProcessor, opts Options, logger *slog.Logger) *ExtractServer {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.BulkConcurrency <= 0 {
		opts.BulkConcurrency = 4
	}
	return &ExtractServer{proc: proc, opts: opts, logger: logger}
}

// Register mounts the extraction routes on mux.
func (s *ExtractServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("POST /extract/bulk", s.handleExtractBulk)
}

func (s *ExtractServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *ExtractServer) handleExtract(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		writeErr(w, err)
		return
	}
	fh := firstFile(r.MultipartForm, "file")
	if fh == nil {
		writeErr(w, fmt.Errorf("%w: multipart field \"file\" is required", common.ErrInvalidInput))
		return
	}

	res, err := s.extractUpload(r.Context(), fh)
	if err != nil {
		common.LoggerFromContext(r.Context(), s.logger).Error("extract failed", "file", fh.Filename, "error", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *ExtractServer) handleExtractBulk(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		writeErr(w, err)
		return
	}
	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["files"]
	}
	if len(files) == 0 {
		writeErr(w, fmt.Errorf("%w: multipart field \"files\" is required", common.ErrInvalidInput))
		return
	}

	results := make([]entity.ExtractionResult, len(files))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(s.opts.BulkConcurrency)
	for i, fh := range files {
		g.Go(func() error {
			res, err := s.extractUpload(ctx, fh)
			if err != nil {
				return fmt.Errorf("%s: %w", fh.Filename, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		common.LoggerFromContext(r.Context(), s.logger).Error("bulk extract failed", "files", len(files), "error", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *ExtractServer) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	return nil
}

// extractUpload spools the upload to a temp file named after the upload's
// extension, runs the processor on it and queues the result for persistence.
func (s *ExtractServer) extractUpload(ctx context.Context, fh *multipart.FileHeader) (entity.ExtractionResult, error) {
	path, err := spool(fh)
	if err != nil {
		return entity.ExtractionResult{}, err
	}
	defer os.Remove(path)

	out, err := s.proc.ProcessFile(ctx, path)
	if err != nil {
		return entity.ExtractionResult{}, err
	}
	s.persist(ctx, out.Result)
	return out.Result, nil
}

func (s *ExtractServer) persist(ctx context.Context, res entity.ExtractionResult) {
	if s.opts.Queue == nil {
		return
	}
	logger := common.LoggerFromContext(ctx, s.logger)
	if res.Informe.NumeroEnsayo == "" {
		logger.Debug("skipping persistence: no report number")
		return
	}
	job := async.Job{Result: res, SubmittedAt: time.Now(), RequestID: common.RequestIDFromContext(ctx)}
	if err := s.opts.Queue.Enqueue(ctx, job); err != nil {
		logger.Warn("enqueue failed", "numero_ensayo", res.Informe.NumeroEnsayo, "error", err)
	}
}

func spool(fh *multipart.FileHeader) (string, error) {
	suffix := "." + constants.NormalizeExt(filepath.Ext(fh.Filename))
	if suffix == "." {
		suffix = ".pdf"
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open upload: %v", common.ErrInvalidInput, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "ensayo-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return tmp.Name(), nil
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil || len(form.File[field]) == 0 {
		return nil
	}
	return form.File[field][0]
}

// WithRequestID tags each request with an X-Request-ID (reusing the
// caller's) and a request-scoped logger.
func WithRequestID(next http.Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		reqLogger := logger.With("request_id", id)
		ctx := common.WithRequestID(r.Context(), id)
		ctx = common.WithLogger(ctx, reqLogger)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		reqLogger.Info("http request", "method", r.Method, "path", r.URL.Path, "duration_ms", time.Since(start).Milliseconds())
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeErr maps err onto a status: caller mistakes are 400, missing reports
// 404, the rest 500.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case common.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
