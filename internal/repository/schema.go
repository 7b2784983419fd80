package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/joseph-ayodele/ensayos/internal/common"
)

const (
	TableInforme         = "informe"
	TableInformeElemento = "informe_elemento"
)

// Tables returns the report tables as Ent schema tables. A fresh set is built
// per call since migration annotates the values it is given.
func Tables() []*schema.Table {
	numero := &schema.Column{Name: "numero_ensayo", Type: field.TypeString, Size: 32}
	informe := schema.NewTable(TableInforme).
		AddPrimary(numero).
		AddColumn(&schema.Column{Name: "cliente", Type: field.TypeString, Default: ""}).
		AddColumn(&schema.Column{Name: "fecha_recepcion", Type: field.TypeString, Default: ""}).
		AddColumn(&schema.Column{Name: "fecha_inicio", Type: field.TypeString, Default: ""}).
		AddColumn(&schema.Column{Name: "fecha_termino", Type: field.TypeString, Default: ""}).
		AddColumn(&schema.Column{Name: "updated_at", Type: field.TypeTime})

	fkNumero := &schema.Column{Name: "numero_ensayo", Type: field.TypeString, Size: 32}
	elemento := schema.NewTable(TableInformeElemento).
		AddPrimary(&schema.Column{Name: "id", Type: field.TypeInt64, Increment: true}).
		AddColumn(fkNumero).
		AddColumn(&schema.Column{Name: "elemento", Type: field.TypeString}).
		AddColumn(&schema.Column{Name: "nombre", Type: field.TypeString}).
		AddColumn(&schema.Column{Name: "unidad", Type: field.TypeString}).
		AddColumn(&schema.Column{Name: "ley", Type: field.TypeFloat64})
	elemento.AddForeignKey(&schema.ForeignKey{
		Symbol:     "informe_elemento_informe",
		Columns:    []*schema.Column{fkNumero},
		RefTable:   informe,
		RefColumns: []*schema.Column{numero},
		OnDelete:   schema.Cascade,
	})
	elemento.AddIndex("informeelemento_numero_ensayo", false, []string{"numero_ensayo"})

	return []*schema.Table{informe, elemento}
}

// EnsureSchema creates or updates the report tables through Ent's migration
// engine. Columns and indexes are never dropped.
func (d *DB) EnsureSchema(ctx context.Context) error {
	m, err := schema.NewMigrate(d.Driver)
	if err != nil {
		return fmt.Errorf("%w: ensure schema: %v", common.ErrDatabase, err)
	}
	if err := m.Create(ctx, Tables()...); err != nil {
		return fmt.Errorf("%w: ensure schema: %v", common.ErrDatabase, err)
	}
	return nil
}
