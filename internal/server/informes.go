package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joseph-ayodele/ensayos/internal/common"
	"github.com/joseph-ayodele/ensayos/internal/export"
	"github.com/joseph-ayodele/ensayos/internal/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InformeServer exposes the stored reports read-only.
type InformeServer struct {
	repo   repository.InformeRepository
	export *export.Service
	logger *slog.Logger
}

func NewInformeServer(repo repository.InformeRepository, exp *export.Service, logger *slog.Logger) *InformeServer {
	if logger == nil {
		logger = slog.Default()
	}
	if exp == nil {
		exp = export.NewService(repo, logger)
	}
	return &InformeServer{repo: repo, export: exp, logger: logger}
}

func (s *InformeServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /informes", s.handleList)
	mux.HandleFunc("GET /informes/{numero}", s.handleGet)
	mux.HandleFunc("GET /export/informes.xlsx", s.handleExport)
}

func (s *InformeServer) handleList(w http.ResponseWriter, r *http.Request) {
	infs, err := s.repo.List(r.Context())
	if err != nil {
		common.LoggerFromContext(r.Context(), s.logger).Error("list informes failed", "error", err)
		writeErr(w, err)
		return
	}
	if infs == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, infs)
}

func (s *InformeServer) handleGet(w http.ResponseWriter, r *http.Request) {
	numero := strings.TrimSpace(r.PathValue("numero"))
	if numero == "" {
		writeErr(w, fmt.Errorf("%w: numero is required", common.ErrInvalidInput))
		return
	}
	res, err := s.repo.Get(r.Context(), numero)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *InformeServer) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.export.ExportStoredXLSX(r.Context())
	if err != nil {
		common.LoggerFromContext(r.Context(), s.logger).Error("export.xlsx.failed", "err", err)
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="informes.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
