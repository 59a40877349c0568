package table_test

import (
	"path/filepath"
	"testing"

	"github.com/example/tablecore/engine/internal/catalog"
	"github.com/example/tablecore/engine/internal/config"
	"github.com/example/tablecore/engine/internal/rowgroup"
	"github.com/example/tablecore/engine/internal/storage"
	"github.com/example/tablecore/engine/internal/table"
	"github.com/example/tablecore/engine/internal/txn"
)

func twoColumnSchema(t *testing.T) *catalog.Schema {
	t.Helper()
	schema, err := catalog.NewSchema([]catalog.Column{
		{Name: "id", Type: catalog.ColumnTypeInt, NotNull: true, PrimaryKey: true},
		{Name: "name", Type: catalog.ColumnTypeVarChar, Length: 32},
	})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return schema
}

func newTestTable(t *testing.T, tuplesPerGroup uint32, lockMgr *txn.LockManager) *table.Table {
	t.Helper()
	dir := rowgroup.NewDirectory()
	tbl, err := table.New(1, 1, "widgets", twoColumnSchema(t), nil, dir, tuplesPerGroup, lockMgr)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	return tbl
}

func TestNewSeedsExactlyOneRowGroup(t *testing.T) {
	tbl := newTestTable(t, 4, txn.NewLockManager(0))
	if got := tbl.RowGroupCount(); got != 1 {
		t.Fatalf("expected exactly one seed row group, got %d", got)
	}
}

func TestNewRejectsZeroCapacity(t *testing.T) {
	dir := rowgroup.NewDirectory()
	if _, err := table.New(1, 1, "widgets", twoColumnSchema(t), nil, dir, 0, txn.NewLockManager(0)); err == nil {
		t.Fatalf("expected an error for a zero tuples-per-row-group table")
	}
}

func TestGetTupleSlotGrowsOnFullTail(t *testing.T) {
	tbl := newTestTable(t, 2, txn.NewLockManager(0))
	schema := tbl.Schema()

	insertOne := func(id int) rowgroup.ItemPointer {
		tup := mustTuple(t, schema, id, "row")
		loc, err := tbl.GetTupleSlot(1, tup)
		if err != nil {
			t.Fatalf("GetTupleSlot: %v", err)
		}
		return loc
	}

	first := insertOne(1)
	second := insertOne(2)
	if first.RowGroupID != second.RowGroupID {
		t.Fatalf("expected first two inserts to land in the same row group")
	}

	third := insertOne(3)
	if third.RowGroupID == first.RowGroupID {
		t.Fatalf("expected the third insert to grow into a new row group")
	}
	if tbl.RowGroupCount() != 2 {
		t.Fatalf("expected two row groups after growth, got %d", tbl.RowGroupCount())
	}
}

func TestGetTupleSlotRejectsNotNullViolation(t *testing.T) {
	tbl := newTestTable(t, 4, txn.NewLockManager(0))
	tup := mustTuple(t, tbl.Schema(), nil, "row")
	if _, err := tbl.GetTupleSlot(1, tup); err == nil {
		t.Fatalf("expected a not-null constraint violation")
	}
}

func TestNewFromConfigUsesConfiguredCapacity(t *testing.T) {
	dir := rowgroup.NewDirectory()
	cfg := config.DefaultTableConfig()
	cfg.Storage.TuplesPerRowGroup = 3

	tbl, err := table.NewFromConfig(1, 1, "widgets", twoColumnSchema(t), nil, dir, cfg, txn.NewLockManager(0))
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := tbl.GetTupleSlot(1, mustTuple(t, tbl.Schema(), i, "row")); err != nil {
			t.Fatalf("GetTupleSlot %d: %v", i, err)
		}
	}
	if tbl.RowGroupCount() != 1 {
		t.Fatalf("expected the configured capacity to hold 3 rows in one group, got %d groups", tbl.RowGroupCount())
	}
	if _, err := tbl.GetTupleSlot(1, mustTuple(t, tbl.Schema(), 3, "row")); err != nil {
		t.Fatalf("GetTupleSlot overflow: %v", err)
	}
	if tbl.RowGroupCount() != 2 {
		t.Fatalf("expected growth past the configured capacity, got %d groups", tbl.RowGroupCount())
	}
}

func TestForeignKeyAddAttachesConstraintToSchema(t *testing.T) {
	tbl := newTestTable(t, 4, txn.NewLockManager(0))
	fk := catalog.ForeignKey{
		Name:          "fk_owner",
		ChildColumns:  []string{"id"},
		ParentTable:   "owners",
		ParentColumns: []string{"id"},
	}
	if err := tbl.AddForeignKey(fk); err != nil {
		t.Fatalf("AddForeignKey: %v", err)
	}
	_, col, ok := tbl.Schema().ColumnByName("id")
	if !ok {
		t.Fatalf("expected column id to exist")
	}
	found := false
	for _, c := range col.Constraints {
		if c == "fk_owner" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected constraint fk_owner attached to column id, got %v", col.Constraints)
	}
	if tbl.ForeignKeyCount() != 1 {
		t.Fatalf("expected one foreign key, got %d", tbl.ForeignKeyCount())
	}
}

func TestNewWiresRealBackendThroughRowGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widgets.tcb")
	if err := storage.New(path); err != nil {
		t.Fatalf("create backend: %v", err)
	}
	backend, err := storage.Open(path)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer backend.Close()

	dir := rowgroup.NewDirectory()
	tbl, err := table.New(1, 1, "widgets", twoColumnSchema(t), backend, dir, 4, txn.NewLockManager(0))
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}

	loc, err := tbl.GetTupleSlot(1, mustTuple(t, tbl.Schema(), 1, "row"))
	if err != nil {
		t.Fatalf("GetTupleSlot: %v", err)
	}
	group, ok := tbl.Directory().Lookup(loc.RowGroupID)
	if !ok {
		t.Fatalf("expected row group %d in directory", loc.RowGroupID)
	}
	if group.Backend() != backend {
		t.Fatalf("expected the row group to carry the table's backend handle")
	}
}
