// Package table implements the table storage core: a table's physical
// layout as a growing sequence of row groups, transactional insert/update/
// delete against them under MVCC, synchronized secondary indexes, and
// online row-group reorganization.
package table

import (
	"fmt"
	"sync"

	"github.com/example/tablecore/engine/internal/catalog"
	"github.com/example/tablecore/engine/internal/config"
	"github.com/example/tablecore/engine/internal/index"
	"github.com/example/tablecore/engine/internal/rowgroup"
	"github.com/example/tablecore/engine/internal/storage"
	"github.com/example/tablecore/engine/internal/tuple"
	"github.com/example/tablecore/engine/internal/txn"
)

// Table owns a table's physical layout: an ordered, by-id sequence of row
// groups, grown on demand, plus the secondary indexes and foreign keys
// bound to it. A single mutex guards only the three lists named in the
// design: row-group ids, indexes, foreign keys. It is never held during
// row-group header operations or index operations.
type Table struct {
	mu sync.Mutex

	databaseID     catalog.OID
	tableID        catalog.OID
	name           string
	schema         *catalog.Schema
	backend        *storage.Manager
	directory      *rowgroup.Directory
	lockManager    *txn.LockManager
	tuplesPerGroup uint32

	rowGroupIDs []rowgroup.ID
	indexes     *IndexSet
	foreignKeys *ForeignKeySet
	stats       Stats
}

// New constructs a table with a seed row group already allocated. lockManager
// is the shared lock manager the table's mutating operations latch through;
// it must be the same instance the caller's transaction manager releases
// locks on at commit/rollback.
func New(databaseID, tableID catalog.OID, name string, schema *catalog.Schema, backend *storage.Manager, directory *rowgroup.Directory, tuplesPerGroup uint32, lockManager *txn.LockManager) (*Table, error) {
	if tuplesPerGroup == 0 {
		return nil, fmt.Errorf("table: tuples_per_row_group must be positive")
	}
	t := &Table{
		databaseID:     databaseID,
		tableID:        tableID,
		name:           name,
		schema:         schema,
		backend:        backend,
		directory:      directory,
		lockManager:    lockManager,
		tuplesPerGroup: tuplesPerGroup,
		indexes:        NewIndexSet(),
		foreignKeys:    NewForeignKeySet(),
	}
	if _, _, err := t.addDefaultRowGroup(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewFromConfig constructs a table using the row-group capacity named in
// cfg, rather than requiring the caller to pass tuplesPerGroup directly.
func NewFromConfig(databaseID, tableID catalog.OID, name string, schema *catalog.Schema, backend *storage.Manager, directory *rowgroup.Directory, cfg *config.TableConfig, lockManager *txn.LockManager) (*Table, error) {
	return New(databaseID, tableID, name, schema, backend, directory, cfg.Storage.TuplesPerRowGroup, lockManager)
}

// DatabaseID returns the table's owning database identifier.
func (t *Table) DatabaseID() catalog.OID { return t.databaseID }

// TableID returns the table's own identifier.
func (t *Table) TableID() catalog.OID { return t.tableID }

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// Schema returns the table's column schema.
func (t *Table) Schema() *catalog.Schema { return t.schema }

// Directory returns the row-group directory this table registers into.
func (t *Table) Directory() *rowgroup.Directory { return t.directory }

// RowGroupIDs returns a copy of the table's row-group id list, in append
// order — the observed allocation history.
func (t *Table) RowGroupIDs() []rowgroup.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]rowgroup.ID, len(t.rowGroupIDs))
	copy(out, t.rowGroupIDs)
	return out
}

// RowGroupCount returns the number of row groups the table has allocated.
func (t *Table) RowGroupCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rowGroupIDs)
}

// RowCount returns the table's approximate row count.
func (t *Table) RowCount() int64 { return t.stats.RowCount() }

// IsDirty reports whether the stats have changed since the last reset.
func (t *Table) IsDirty() bool { return t.stats.IsDirty() }

// ResetDirty clears the stats dirty flag.
func (t *Table) ResetDirty() { t.stats.ResetDirty() }

// defaultTileSchemas builds the single-tile, identity-mapped layout a
// freshly allocated row group starts with.
func (t *Table) defaultTileSchemas() [][]catalog.Column {
	return [][]catalog.Column{t.schema.Columns}
}

// addDefaultRowGroup pre-mints a candidate row group outside the table
// mutex, then commits it only if the tail is still full (or there is no
// tail at all) once inside the mutex. Losers of the race discard their
// candidate; this produces at-most-one growth per full tail under
// concurrent inserters.
func (t *Table) addDefaultRowGroup() (rowgroup.ID, bool, error) {
	id := t.directory.MintID()
	columnMap := rowgroup.DefaultColumnMap(t.schema.NumColumns())
	candidate := rowgroup.New(id, t.databaseID, t.tableID, t.backend, t.tuplesPerGroup, t.defaultTileSchemas(), columnMap)

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.rowGroupIDs) == 0 {
		t.rowGroupIDs = append(t.rowGroupIDs, id)
		t.directory.Register(id, candidate)
		return id, true, nil
	}

	tailID := t.rowGroupIDs[len(t.rowGroupIDs)-1]
	tail, ok := t.directory.Lookup(tailID)
	if !ok {
		return rowgroup.ID(0), false, fmt.Errorf("table: tail row group %d missing from directory", tailID)
	}
	if tail.NextSlot() < tail.AllocatedCount() {
		// Someone else already grew the table while we were building our
		// candidate; discard it.
		return rowgroup.ID(0), false, nil
	}

	t.rowGroupIDs = append(t.rowGroupIDs, id)
	t.directory.Register(id, candidate)
	return id, true, nil
}

// GetTupleSlot claims a slot for tup in the tail row group, growing the
// table as needed. It does not touch indexes or stats.
func (t *Table) GetTupleSlot(transactionID txn.ID, tup *tuple.Tuple) (rowgroup.ItemPointer, error) {
	if err := tup.CheckNotNullConstraints(); err != nil {
		return rowgroup.Invalid, fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}

	for {
		t.mu.Lock()
		tailID := t.rowGroupIDs[len(t.rowGroupIDs)-1]
		t.mu.Unlock()

		group, ok := t.directory.Lookup(tailID)
		if !ok {
			return rowgroup.Invalid, fmt.Errorf("table: tail row group %d missing from directory", tailID)
		}

		slot, ok := group.Insert(transactionID, tup.Values)
		if ok {
			return rowgroup.ItemPointer{RowGroupID: tailID, Slot: slot}, nil
		}

		if _, _, err := t.addDefaultRowGroup(); err != nil {
			return rowgroup.Invalid, err
		}
	}
}

// AddIndex appends a secondary index to the table and updates the derived
// has-primary-key / unique-count flags.
func (t *Table) AddIndex(idx index.Index) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indexes.Add(idx)
}

// GetIndexByOffset returns the index at the given addition-order offset.
func (t *Table) GetIndexByOffset(offset int) (index.Index, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.indexes.ByOffset(offset)
}

// GetIndexByOID returns the index with the given object id.
func (t *Table) GetIndexByOID(oid catalog.OID) (index.Index, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.indexes.ByOID(oid)
}

// DropIndexByOID removes the index with the given object id.
func (t *Table) DropIndexByOID(oid catalog.OID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.indexes.DropByOID(oid)
}

// IndexCount returns the number of indexes bound to the table.
func (t *Table) IndexCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.indexes.Count()
}

// HasPrimaryKey reports whether the table has a primary-key index.
func (t *Table) HasPrimaryKey() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.indexes.HasPrimaryKey()
}

// UniqueConstraintCount returns the number of non-primary unique indexes.
func (t *Table) UniqueConstraintCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.indexes.UniqueConstraintCount()
}

// indexSnapshot returns a stable, lock-free-to-iterate copy of the index
// list for the coordinator to work against.
func (t *Table) indexSnapshot() []index.Index {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.indexes.snapshot()
}

// AddForeignKey appends a foreign key, attaching its constraint name to
// the affected schema columns.
func (t *Table) AddForeignKey(fk catalog.ForeignKey) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.foreignKeys.Add(t.schema, fk)
}

// GetForeignKey returns the foreign key at the given offset.
func (t *Table) GetForeignKey(offset int) (*catalog.ForeignKey, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.foreignKeys.Get(offset)
}

// DropForeignKey removes the foreign key at the given offset.
func (t *Table) DropForeignKey(offset int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.foreignKeys.Drop(offset)
}

// ForeignKeyCount returns the number of foreign keys bound to the table.
func (t *Table) ForeignKeyCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.foreignKeys.Count()
}
