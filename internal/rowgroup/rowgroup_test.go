package rowgroup_test

import (
	"testing"

	"github.com/example/tablecore/engine/internal/catalog"
	"github.com/example/tablecore/engine/internal/rowgroup"
	"github.com/example/tablecore/engine/internal/txn"
)

func twoColumnSchema() []catalog.Column {
	return []catalog.Column{
		{Name: "id", Type: catalog.ColumnTypeInt, NotNull: true, PrimaryKey: true},
		{Name: "name", Type: catalog.ColumnTypeVarChar, Length: 32},
	}
}

func TestInsertFillsCapacityThenFails(t *testing.T) {
	schema := twoColumnSchema()
	rg := rowgroup.New(1, 1, 1, nil, 2, [][]catalog.Column{schema}, rowgroup.DefaultColumnMap(len(schema)))

	if _, ok := rg.Insert(txn.ID(1), []interface{}{1, "a"}); !ok {
		t.Fatalf("expected first insert to succeed")
	}
	if _, ok := rg.Insert(txn.ID(1), []interface{}{2, "b"}); !ok {
		t.Fatalf("expected second insert to succeed")
	}
	if _, ok := rg.Insert(txn.ID(1), []interface{}{3, "c"}); ok {
		t.Fatalf("expected third insert to fail on a full row group")
	}
	if rg.NextSlot() != 2 {
		t.Fatalf("expected next slot 2, got %d", rg.NextSlot())
	}
}

func TestVisibilityBeforeAndAfterCommit(t *testing.T) {
	schema := twoColumnSchema()
	rg := rowgroup.New(1, 1, 1, nil, 4, [][]catalog.Column{schema}, rowgroup.DefaultColumnMap(len(schema)))

	inserter := txn.ID(10)
	slot, ok := rg.Insert(inserter, []interface{}{1, "a"})
	if !ok {
		t.Fatalf("insert failed")
	}

	if !rg.IsVisible(slot, inserter, 0) {
		t.Fatalf("expected the inserting transaction to see its own uncommitted row")
	}
	other := txn.ID(11)
	if rg.IsVisible(slot, other, 0) {
		t.Fatalf("expected another transaction not to see the uncommitted row")
	}

	rg.MarkInsertCommitted(slot, 100)
	if !rg.IsVisible(slot, other, 100) {
		t.Fatalf("expected visibility once committed at or before the snapshot")
	}
	if rg.IsVisible(slot, other, 50) {
		t.Fatalf("expected invisibility when the snapshot predates the commit")
	}
}

func TestDeleteHidesRowOnceCommitted(t *testing.T) {
	schema := twoColumnSchema()
	rg := rowgroup.New(1, 1, 1, nil, 4, [][]catalog.Column{schema}, rowgroup.DefaultColumnMap(len(schema)))

	inserter := txn.ID(1)
	slot, _ := rg.Insert(inserter, []interface{}{5, "x"})
	rg.MarkInsertCommitted(slot, 10)

	deleter := txn.ID(2)
	if !rg.Delete(deleter, slot, 10) {
		t.Fatalf("expected delete to succeed")
	}
	if rg.IsVisible(slot, deleter, 10) {
		t.Fatalf("expected deleting transaction to no longer see its own deleted row")
	}
	reader := txn.ID(3)
	if !rg.IsVisible(slot, reader, 10) {
		t.Fatalf("expected the row to remain visible to a reader until the delete commits")
	}

	rg.MarkDeleteCommitted(slot, 20)
	if rg.IsVisible(slot, reader, 20) {
		t.Fatalf("expected invisibility once the delete commits at or before the snapshot")
	}
	if !rg.IsVisible(slot, reader, 15) {
		t.Fatalf("expected continued visibility to a reader whose snapshot predates the delete commit")
	}
}

func TestDeleteFailsWhenAlreadyLatchedByAnotherTransaction(t *testing.T) {
	schema := twoColumnSchema()
	rg := rowgroup.New(1, 1, 1, nil, 4, [][]catalog.Column{schema}, rowgroup.DefaultColumnMap(len(schema)))
	slot, _ := rg.Insert(txn.ID(1), []interface{}{5, "x"})
	rg.MarkInsertCommitted(slot, 1)

	if !rg.Delete(txn.ID(2), slot, 1) {
		t.Fatalf("expected first delete to succeed")
	}
	if rg.Delete(txn.ID(3), slot, 1) {
		t.Fatalf("expected second delete by a different transaction to fail")
	}
}

func TestDirectoryRebindIsSeenByFreshLookups(t *testing.T) {
	dir := rowgroup.NewDirectory()
	id := dir.MintID()
	schema := twoColumnSchema()
	original := rowgroup.New(id, 1, 1, nil, 4, [][]catalog.Column{schema}, rowgroup.DefaultColumnMap(len(schema)))
	dir.Register(id, original)

	resolved, ok := dir.Lookup(id)
	if !ok || resolved != original {
		t.Fatalf("expected lookup to resolve the registered row group")
	}

	replacement := rowgroup.New(id, 1, 1, nil, 4, [][]catalog.Column{schema}, rowgroup.DefaultColumnMap(len(schema)))
	dir.Rebind(id, replacement)

	resolved, ok = dir.Lookup(id)
	if !ok || resolved != replacement {
		t.Fatalf("expected lookup to resolve the rebound row group")
	}
}
