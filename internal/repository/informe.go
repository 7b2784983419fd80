package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/ensayos/internal/common"
	"github.com/joseph-ayodele/ensayos/internal/entity"
)

// InformeRepository stores extraction results keyed by report number.
type InformeRepository interface {
	Upsert(ctx context.Context, result entity.ExtractionResult) error
	Get(ctx context.Context, numeroEnsayo string) (entity.ExtractionResult, error)
	List(ctx context.Context) ([]entity.Informe, error)
}

type informeRepository struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewInformeRepository(db *DB, logger *slog.Logger) InformeRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &informeRepository{db: db, logger: logger, now: time.Now}
}

// Upsert writes the header and replaces every element row of the report in
// one transaction, so saving the same report twice leaves one copy.
func (r *informeRepository) Upsert(ctx context.Context, result entity.ExtractionResult) (err error) {
	inf := result.Informe
	v := common.NewValidator().
		Field("numero_ensayo", inf.NumeroEnsayo, common.Required, common.Digits, common.MaxLen(32))
	for i, it := range result.InformeElemento {
		v.Field(fmt.Sprintf("informe_elemento[%d].elemento", i), it.Elemento, common.Required)
	}
	if err := v.Err("VALIDATION_ERROR"); err != nil {
		return err
	}

	b := entsql.Dialect(r.db.Dialect)
	tx, err := r.db.Driver.Tx(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", common.ErrDatabase, err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				r.logger.Error("rollback failed", "numero_ensayo", inf.NumeroEnsayo, "error", rerr)
			}
		}
	}()

	query, args := b.Insert(TableInforme).
		Columns("numero_ensayo", "cliente", "fecha_recepcion", "fecha_inicio", "fecha_termino", "updated_at").
		Values(inf.NumeroEnsayo, inf.Cliente, inf.FechaRecepcion, inf.FechaInicio, inf.FechaTermino, r.now().UTC()).
		OnConflict(entsql.ConflictColumns("numero_ensayo"), entsql.ResolveWithNewValues()).
		Query()
	if err = tx.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("%w: upsert informe %s: %v", common.ErrDatabase, inf.NumeroEnsayo, err)
	}

	query, args = b.Delete(TableInformeElemento).Where(entsql.EQ("numero_ensayo", inf.NumeroEnsayo)).Query()
	if err = tx.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("%w: clear elementos %s: %v", common.ErrDatabase, inf.NumeroEnsayo, err)
	}

	if len(result.InformeElemento) > 0 {
		ins := b.Insert(TableInformeElemento).Columns("numero_ensayo", "elemento", "nombre", "unidad", "ley")
		for _, it := range result.InformeElemento {
			// rows always belong to the header being written
			ins.Values(inf.NumeroEnsayo, it.Elemento, it.Nombre, it.Unidad, it.Ley)
		}
		query, args = ins.Query()
		if err = tx.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("%w: insert elementos %s: %v", common.ErrDatabase, inf.NumeroEnsayo, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", common.ErrDatabase, err)
	}
	r.logger.Info("informe saved", "numero_ensayo", inf.NumeroEnsayo, "elementos", len(result.InformeElemento))
	return nil
}

func (r *informeRepository) Get(ctx context.Context, numeroEnsayo string) (entity.ExtractionResult, error) {
	b := entsql.Dialect(r.db.Dialect)

	query, args := b.Select("numero_ensayo", "cliente", "fecha_recepcion", "fecha_inicio", "fecha_termino").
		From(b.Table(TableInforme)).
		Where(entsql.EQ("numero_ensayo", numeroEnsayo)).
		Query()
	headers, err := r.scanInformes(ctx, query, args)
	if err != nil {
		return entity.ExtractionResult{}, err
	}
	if len(headers) == 0 {
		return entity.ExtractionResult{}, fmt.Errorf("informe %s: %w", numeroEnsayo, common.ErrNotFound)
	}

	query, args = b.Select("numero_ensayo", "elemento", "nombre", "unidad", "ley").
		From(b.Table(TableInformeElemento)).
		Where(entsql.EQ("numero_ensayo", numeroEnsayo)).
		OrderBy("id").
		Query()
	rows := &entsql.Rows{}
	if err := r.db.Driver.Query(ctx, query, args, rows); err != nil {
		r.logger.Error("failed to query elementos", "numero_ensayo", numeroEnsayo, "error", err)
		return entity.ExtractionResult{}, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	items := []entity.InformeElemento{}
	for rows.Next() {
		var it entity.InformeElemento
		if err := rows.Scan(&it.NumeroEnsayo, &it.Elemento, &it.Nombre, &it.Unidad, &it.Ley); err != nil {
			return entity.ExtractionResult{}, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return entity.ExtractionResult{}, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return entity.ExtractionResult{Informe: headers[0], InformeElemento: items}, nil
}

func (r *informeRepository) List(ctx context.Context) ([]entity.Informe, error) {
	b := entsql.Dialect(r.db.Dialect)
	query, args := b.Select("numero_ensayo", "cliente", "fecha_recepcion", "fecha_inicio", "fecha_termino").
		From(b.Table(TableInforme)).
		OrderBy("numero_ensayo").
		Query()
	return r.scanInformes(ctx, query, args)
}

func (r *informeRepository) scanInformes(ctx context.Context, query string, args []any) ([]entity.Informe, error) {
	rows := &entsql.Rows{}
	if err := r.db.Driver.Query(ctx, query, args, rows); err != nil {
		r.logger.Error("failed to query informes", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.Informe
	for rows.Next() {
		var inf entity.Informe
		if err := rows.Scan(&inf.NumeroEnsayo, &inf.Cliente, &inf.FechaRecepcion, &inf.FechaInicio, &inf.FechaTermino); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		out = append(out, inf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

// IsNotFound reports whether err means the report is not stored.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
