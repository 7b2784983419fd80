package repository

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"entgo.io/ent/dialect/sql/schema"

	"github.com/joseph-ayodele/ensayos/internal/common"
	"github.com/joseph-ayodele/ensayos/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{Driver: "sqlite", DSN: ":memory:"}, slog.Default())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close(slog.Default()) })
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return db
}

func sampleResult(numero string, leyes ...float64) entity.ExtractionResult {
	symbols := []string{"Au", "Ag", "Cu", "Pb", "Zn"}
	items := []entity.InformeElemento{}
	for i, ley := range leyes {
		items = append(items, entity.InformeElemento{
			NumeroEnsayo: numero,
			Elemento:     symbols[i%len(symbols)],
			Nombre:       "Elemento " + symbols[i%len(symbols)],
			Unidad:       "%",
			Ley:          ley,
		})
	}
	return entity.ExtractionResult{
		Informe: entity.Informe{
			NumeroEnsayo:   numero,
			Cliente:        "Minera Los Andes S.A.",
			FechaRecepcion: "2022-11-03",
			FechaInicio:    "2022-11-04",
			FechaTermino:   "2022-11-10",
		},
		InformeElemento: items,
	}
}

func TestUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewInformeRepository(openTestDB(t), nil)

	want := sampleResult("4512", 1.25, 0.5, 0.04)
	if err := repo.Upsert(ctx, want); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.Get(ctx, "4512")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Informe != want.Informe {
		t.Errorf("informe = %+v, want %+v", got.Informe, want.Informe)
	}
	if len(got.InformeElemento) != 3 {
		t.Fatalf("elementos = %d, want 3", len(got.InformeElemento))
	}
	for i := range want.InformeElemento {
		if got.InformeElemento[i] != want.InformeElemento[i] {
			t.Errorf("elemento %d = %+v, want %+v", i, got.InformeElemento[i], want.InformeElemento[i])
		}
	}
}

func TestUpsertReplacesElements(t *testing.T) {
	ctx := context.Background()
	repo := NewInformeRepository(openTestDB(t), nil)

	if err := repo.Upsert(ctx, sampleResult("77", 1, 2, 3, 4)); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	second := sampleResult("77", 9)
	second.Informe.Cliente = "Otra Cia."
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	// idempotent per report number
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("third Upsert: %v", err)
	}

	got, err := repo.Get(ctx, "77")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Informe.Cliente != "Otra Cia." {
		t.Errorf("cliente = %q", got.Informe.Cliente)
	}
	if len(got.InformeElemento) != 1 || got.InformeElemento[0].Ley != 9 {
		t.Errorf("elementos = %+v", got.InformeElemento)
	}
}

func TestUpsertWithoutElements(t *testing.T) {
	ctx := context.Background()
	repo := NewInformeRepository(openTestDB(t), nil)

	if err := repo.Upsert(ctx, sampleResult("5")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := repo.Get(ctx, "5")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.InformeElemento == nil || len(got.InformeElemento) != 0 {
		t.Errorf("elementos = %#v, want empty non-nil slice", got.InformeElemento)
	}
}

func TestUpsertRejectsInvalid(t *testing.T) {
	repo := NewInformeRepository(openTestDB(t), nil)
	for _, numero := range []string{"", "12a"} {
		err := repo.Upsert(context.Background(), sampleResult(numero, 1))
		if !errors.Is(err, common.ErrInvalidInput) {
			t.Errorf("Upsert(%q) err = %v, want ErrInvalidInput", numero, err)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	repo := NewInformeRepository(openTestDB(t), nil)
	_, err := repo.Get(context.Background(), "999")
	if !IsNotFound(err) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	repo := NewInformeRepository(openTestDB(t), nil)
	for _, n := range []string{"300", "100", "200"} {
		if err := repo.Upsert(ctx, sampleResult(n, 1)); err != nil {
			t.Fatalf("Upsert %s: %v", n, err)
		}
	}
	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var nums []string
	for _, inf := range got {
		nums = append(nums, inf.NumeroEnsayo)
	}
	if strings.Join(nums, ",") != "100,200,300" {
		t.Errorf("List order = %v", nums)
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)
	if err := db.HealthCheck(context.Background(), time.Second, slog.Default()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}

func TestTables(t *testing.T) {
	tables := Tables()
	if len(tables) != 2 || tables[0].Name != TableInforme || tables[1].Name != TableInformeElemento {
		t.Fatalf("tables = %v", tables)
	}
	informe, elemento := tables[0], tables[1]
	if len(informe.PrimaryKey) != 1 || informe.PrimaryKey[0].Name != "numero_ensayo" {
		t.Errorf("informe primary key = %v", informe.PrimaryKey)
	}
	if len(elemento.PrimaryKey) != 1 || !elemento.PrimaryKey[0].Increment {
		t.Errorf("elemento primary key = %v", elemento.PrimaryKey)
	}
	if len(elemento.ForeignKeys) != 1 {
		t.Fatalf("elemento foreign keys = %d", len(elemento.ForeignKeys))
	}
	fk := elemento.ForeignKeys[0]
	if fk.RefTable != informe || fk.OnDelete != schema.Cascade {
		t.Errorf("foreign key = %+v", fk)
	}
}

func TestEnsureSchemaIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}

	rows, err := db.Driver.DB().Query("SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			t.Fatal(err)
		}
		names = append(names, n)
	}
	got := strings.Join(names, ",")
	if !strings.Contains(got, TableInforme+",") || !strings.Contains(got, TableInformeElemento) {
		t.Errorf("tables = %s", got)
	}
}

func TestDeletingInformeCascadesToElementos(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewInformeRepository(db, slog.Default())
	if err := repo.Upsert(ctx, sampleResult("555", 1.5, 2.5)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	sqlDB := db.Driver.DB()
	if _, err := sqlDB.Exec("DELETE FROM informe WHERE numero_ensayo = ?", "555"); err != nil {
		t.Fatalf("delete informe: %v", err)
	}
	var n int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM informe_elemento WHERE numero_ensayo = ?", "555").Scan(&n); err != nil {
		t.Fatalf("count elementos: %v", err)
	}
	if n != 0 {
		t.Errorf("elementos left after delete = %d", n)
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct{ in, want string }{
		{":memory:", "file::memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"ensayos.db", "ensayos.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"x.db?mode=rwc", "x.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"y.db?_pragma=foreign_keys(0)", "y.db?_pragma=foreign_keys(0)&_pragma=busy_timeout(5000)"},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.in); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
