package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/ensayos/internal/entity"
	"github.com/joseph-ayodele/ensayos/internal/repository"
)

const (
	SheetInformes  = "Informes"
	SheetElementos = "Elementos"
)

var (
	informeHeaders  = []string{"Numero Ensayo", "Cliente", "Fecha Recepcion", "Fecha Inicio", "Fecha Termino", "Elementos"}
	elementoHeaders = []string{"Numero Ensayo", "Elemento", "Nombre", "Unidad", "Ley"}
)

// Service produces XLSX workbooks from extraction results, either given
// directly or read back from the report store.
type Service struct {
	repo   repository.InformeRepository
	logger *slog.Logger
}

func NewService(repo repository.InformeRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportStoredXLSX writes every stored report.
func (s *Service) ExportStoredXLSX(ctx context.Context) ([]byte, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("export: no report store configured")
	}
	headers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list informes: %w", err)
	}
	results := make([]entity.ExtractionResult, 0, len(headers))
	for _, h := range headers {
		r, err := s.repo.Get(ctx, h.NumeroEnsayo)
		if err != nil {
			return nil, fmt.Errorf("load informe %s: %w", h.NumeroEnsayo, err)
		}
		results = append(results, r)
	}
	return s.WriteXLSX(results)
}

// WriteXLSX returns a workbook with one Informes row per result and one
// Elementos row per element, in the order given.
func (s *Service) WriteXLSX(results []entity.ExtractionResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetInformes); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetElementos); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(SheetInformes)
	f.SetActiveSheet(activeIndex)

	writeRow(f, SheetInformes, 1, toAny(informeHeaders))
	writeRow(f, SheetElementos, 1, toAny(elementoHeaders))

	infRow, elRow := 2, 2
	for _, r := range results {
		inf := r.Informe
		writeRow(f, SheetInformes, infRow, []any{
			inf.NumeroEnsayo, inf.Cliente, inf.FechaRecepcion, inf.FechaInicio, inf.FechaTermino, len(r.InformeElemento),
		})
		infRow++
		for _, it := range r.InformeElemento {
			writeRow(f, SheetElementos, elRow, []any{it.NumeroEnsayo, it.Elemento, it.Nombre, it.Unidad, it.Ley})
			elRow++
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(SheetInformes, "A", "A", 14)
	_ = f.SetColWidth(SheetInformes, "B", "B", 40)
	_ = f.SetColWidth(SheetInformes, "C", "E", 16)
	_ = f.SetColWidth(SheetElementos, "A", "A", 14)
	_ = f.SetColWidth(SheetElementos, "C", "C", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"informes", infRow-2,
		"elementos", elRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
