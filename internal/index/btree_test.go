package index_test

import (
	"testing"

	"github.com/example/tablecore/engine/internal/catalog"
	"github.com/example/tablecore/engine/internal/index"
	"github.com/example/tablecore/engine/internal/rowgroup"
)

func TestEncodeKeySkipsNullComponents(t *testing.T) {
	cols := []catalog.Column{{Name: "id", Type: catalog.ColumnTypeInt}}
	_, isNull, err := index.EncodeKey(cols, []int{0}, []interface{}{nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isNull {
		t.Fatalf("expected isNull true for a nil component")
	}
}

func TestEncodeKeyOrderPreservingForIntegers(t *testing.T) {
	cols := []catalog.Column{{Name: "id", Type: catalog.ColumnTypeInt}}
	lo, _, err := index.EncodeKey(cols, []int{0}, []interface{}{int32(1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hi, _, err := index.EncodeKey(cols, []int{0}, []interface{}{int32(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(lo) >= string(hi) {
		t.Fatalf("expected encoded key for 1 to sort before encoded key for 2")
	}

	neg, _, err := index.EncodeKey(cols, []int{0}, []interface{}{int32(-1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(neg) >= string(lo) {
		t.Fatalf("expected encoded key for -1 to sort before encoded key for 1")
	}
}

func TestBTreeIndexScanInsertUpdateDelete(t *testing.T) {
	idx := index.NewBTreeIndex(1, "pk_id", index.ConstraintPrimaryKey, []int{0})

	key := []byte{0, 1, 'x'}
	ptrA := rowgroup.ItemPointer{RowGroupID: 1, Slot: 0}
	idx.Insert(key, ptrA)

	found := idx.Scan(key)
	if len(found) != 1 || found[0] != ptrA {
		t.Fatalf("expected scan to find ptrA, got %v", found)
	}

	ptrB := rowgroup.ItemPointer{RowGroupID: 1, Slot: 1}
	if !idx.Update(key, ptrB) {
		t.Fatalf("expected update of existing key to succeed")
	}
	found = idx.Scan(key)
	if len(found) != 1 || found[0] != ptrB {
		t.Fatalf("expected scan to find repointed ptrB, got %v", found)
	}

	missing := []byte{0, 1, 'y'}
	if idx.Update(missing, ptrB) {
		t.Fatalf("expected update of missing key to fail")
	}

	idx.Delete(key, ptrB)
	if found := idx.Scan(key); len(found) != 0 {
		t.Fatalf("expected scan after delete to be empty, got %v", found)
	}
}

func TestBTreeIndexKeepsEntriesSorted(t *testing.T) {
	idx := index.NewBTreeIndex(2, "sec", index.ConstraintNone, []int{0})
	idx.Insert([]byte{3}, rowgroup.ItemPointer{RowGroupID: 1, Slot: 0})
	idx.Insert([]byte{1}, rowgroup.ItemPointer{RowGroupID: 1, Slot: 1})
	idx.Insert([]byte{2}, rowgroup.ItemPointer{RowGroupID: 1, Slot: 2})

	if got := idx.Scan([]byte{1}); len(got) != 1 || got[0].Slot != 1 {
		t.Fatalf("unexpected scan result for key 1: %v", got)
	}
	if got := idx.Scan([]byte{2}); len(got) != 1 || got[0].Slot != 2 {
		t.Fatalf("unexpected scan result for key 2: %v", got)
	}
}
