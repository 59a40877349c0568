package table

import (
	"fmt"

	"github.com/example/tablecore/engine/internal/index"
	"github.com/example/tablecore/engine/internal/rowgroup"
	"github.com/example/tablecore/engine/internal/tuple"
	"github.com/example/tablecore/engine/internal/txn"
)

// InsertTuple acquires an exclusive table latch through the lock manager for
// the duration of the slot claim and index synchronization below, then
// claims a slot for the tuple, checks primary/unique constraints against
// every visible index entry (in reverse addition order), inserts the key
// into every index (also in reverse order), and increments row counts on
// success. The latch guards this critical section against other concurrent
// mutators of the same table; it is released before return, not held until
// commit, since uniqueness here is judged against committed visibility, not
// against other in-flight transactions.
func (t *Table) InsertTuple(transaction *txn.Transaction, tup *tuple.Tuple) (rowgroup.ItemPointer, error) {
	if err := t.lockManager.Acquire(transaction, txn.TableResource(t.name), txn.LockModeExclusive); err != nil {
		return rowgroup.Invalid, err
	}
	defer t.lockManager.ReleaseAll(transaction.ID())

	location, err := t.GetTupleSlot(transaction.ID(), tup)
	if err != nil {
		return rowgroup.Invalid, err
	}

	if err := t.insertInIndexes(transaction, tup, location, true); err != nil {
		return rowgroup.Invalid, err
	}

	if group, ok := t.directory.Lookup(location.RowGroupID); ok {
		slot := location.Slot
		transaction.RegisterCommitHook(func(commitID uint64) {
			group.MarkInsertCommitted(slot, commitID)
		})
	}

	t.stats.IncreaseBy(1)
	for _, idx := range t.indexSnapshot() {
		idx.IncreaseRowCount()
	}
	return location, nil
}

// insertInIndexes runs the two-pass index synchronization the original
// insert path performs: a reverse-order uniqueness check (only when
// checkUnique is true), then a reverse-order insert into every index.
// Both passes iterate indexes from the last one added to the first —
// grounded in the observation that the original engine iterates
// index_itr from count-1 down to 0 for both the check and the insert.
func (t *Table) insertInIndexes(transaction *txn.Transaction, tup *tuple.Tuple, location rowgroup.ItemPointer, checkUnique bool) error {
	indexes := t.indexSnapshot()

	if checkUnique {
		for i := len(indexes) - 1; i >= 0; i-- {
			idx := indexes[i]
			if idx.Kind() != index.ConstraintPrimaryKey && idx.Kind() != index.ConstraintUnique {
				continue
			}
			key, isNull, err := index.EncodeKey(t.schema.Columns, idx.IndexedColumns(), tup.Values)
			if err != nil {
				return err
			}
			if isNull {
				continue
			}
			if t.containsVisibleEntry(idx.Scan(key), transaction) {
				return fmt.Errorf("table: index %s: %w", idx.Name(), ErrUniqueViolation)
			}
		}
	}

	for i := len(indexes) - 1; i >= 0; i-- {
		idx := indexes[i]
		key, isNull, err := index.EncodeKey(t.schema.Columns, idx.IndexedColumns(), tup.Values)
		if err != nil {
			return err
		}
		if isNull {
			continue
		}
		idx.Insert(key, location)
	}
	return nil
}

// containsVisibleEntry reports whether any of the located item pointers is
// visible to the transaction, per that pointer's row group's MVCC header.
func (t *Table) containsVisibleEntry(locations []rowgroup.ItemPointer, transaction *txn.Transaction) bool {
	for _, loc := range locations {
		group, ok := t.directory.Lookup(loc.RowGroupID)
		if !ok {
			continue
		}
		if group.IsVisible(loc.Slot, transaction.ID(), transaction.LastCommitID()) {
			return true
		}
	}
	return false
}

// UpdateTuple acquires an exclusive table latch through the lock manager for
// the duration of the operation below, then implements "insert-then-repoint"
// MVCC update: a fresh slot is always claimed for the new version. It first
// attempts a same-key update across every index (forward addition order);
// on failure it falls back to insert-style index synchronization without
// the uniqueness pre-check, since the caller has already committed to this
// slot.
func (t *Table) UpdateTuple(transaction *txn.Transaction, newTuple *tuple.Tuple) (rowgroup.ItemPointer, error) {
	if err := t.lockManager.Acquire(transaction, txn.TableResource(t.name), txn.LockModeExclusive); err != nil {
		return rowgroup.Invalid, err
	}
	defer t.lockManager.ReleaseAll(transaction.ID())

	location, err := t.GetTupleSlot(transaction.ID(), newTuple)
	if err != nil {
		return rowgroup.Invalid, err
	}

	if err := t.updateInIndexes(newTuple, location); err != nil {
		if err := t.insertInIndexes(transaction, newTuple, location, false); err != nil {
			return rowgroup.Invalid, err
		}
	}

	if group, ok := t.directory.Lookup(location.RowGroupID); ok {
		slot := location.Slot
		transaction.RegisterCommitHook(func(commitID uint64) {
			group.MarkInsertCommitted(slot, commitID)
		})
	}
	return location, nil
}

// updateInIndexes attempts a same-key repoint across every index in
// forward addition order — distinct from insert's reverse order. If any
// index has no existing entry for the projected key, the whole same-key
// update is considered to have failed.
func (t *Table) updateInIndexes(newTuple *tuple.Tuple, location rowgroup.ItemPointer) error {
	for _, idx := range t.indexSnapshot() {
		key, isNull, err := index.EncodeKey(t.schema.Columns, idx.IndexedColumns(), newTuple.Values)
		if err != nil {
			return err
		}
		if isNull {
			return fmt.Errorf("table: same-key update: nil indexed column")
		}
		if !idx.Update(key, location) {
			return fmt.Errorf("table: same-key update failed on index %s", idx.Name())
		}
	}
	return nil
}

// DeleteTuple acquires an exclusive table latch through the lock manager for
// the duration of the operation below, then performs a pure row-group
// header operation: it resolves the row group by id and invokes its header
// delete. Indexes are not touched; stale pointers are filtered later by
// visibility.
func (t *Table) DeleteTuple(transaction *txn.Transaction, location rowgroup.ItemPointer) bool {
	if err := t.lockManager.Acquire(transaction, txn.TableResource(t.name), txn.LockModeExclusive); err != nil {
		return false
	}
	defer t.lockManager.ReleaseAll(transaction.ID())

	group, ok := t.directory.Lookup(location.RowGroupID)
	if !ok {
		return false
	}
	if !group.Delete(transaction.ID(), location.Slot, transaction.LastCommitID()) {
		return false
	}
	slot := location.Slot
	transaction.RegisterCommitHook(func(commitID uint64) {
		group.MarkDeleteCommitted(slot, commitID)
	})
	t.stats.DecreaseBy(1)
	return true
}
