// Package rowgroup implements the fixed-capacity, tile-backed physical
// storage unit a table grows as a sequence of: the row group. It owns slot
// allocation, the per-slot MVCC header, and the tile layout a reorganizer
// can rewrite.
package rowgroup

import (
	"sync"

	"github.com/example/tablecore/engine/internal/catalog"
	"github.com/example/tablecore/engine/internal/storage"
	"github.com/example/tablecore/engine/internal/txn"
)

// SlotHeader carries the MVCC visibility metadata for a single slot. A zero
// commit id means "not yet committed"; a zero txn id means "no in-flight
// transaction holds this half of the header".
type SlotHeader struct {
	InsertTxnID    txn.ID
	InsertCommitID uint64
	DeleteTxnID    txn.ID
	DeleteCommitID uint64
}

// RowGroup is a fixed-capacity array of C tuple slots, each column-mapped
// into one of the row group's tiles, plus a parallel array of MVCC headers.
type RowGroup struct {
	mu         sync.RWMutex
	id         ID
	databaseID catalog.OID
	tableID    catalog.OID
	backend    *storage.Manager
	capacity   uint32
	nextSlot   uint32
	columnMap  ColumnMap
	tiles      []*Tile
	headers    []SlotHeader
	destroyed  bool
}

// New allocates a row group with the given id, owning table identity,
// backend handle, tile schemas (one []catalog.Column per tile, in tile
// order) and column map. Capacity is fixed for the row group's lifetime.
// The backend handle is opaque here: this in-memory tile layout does not
// itself page tuple data to the backend, but every row group is
// constructed against one so a future on-disk tile implementation has
// somewhere to plug in without changing this constructor's shape.
func New(id ID, databaseID, tableID catalog.OID, backend *storage.Manager, capacity uint32, tileSchemas [][]catalog.Column, columnMap ColumnMap) *RowGroup {
	tiles := make([]*Tile, len(tileSchemas))
	for i, schema := range tileSchemas {
		tiles[i] = newTile(schema, capacity)
	}
	return &RowGroup{
		id:         id,
		databaseID: databaseID,
		tableID:    tableID,
		backend:    backend,
		capacity:   capacity,
		columnMap:  columnMap,
		tiles:      tiles,
		headers:    make([]SlotHeader, capacity),
	}
}

// ID returns the row group's own identifier.
func (rg *RowGroup) ID() ID { return rg.id }

// Backend returns the storage handle this row group was constructed
// against.
func (rg *RowGroup) Backend() *storage.Manager { return rg.backend }

// AllocatedCount returns C, the fixed slot capacity.
func (rg *RowGroup) AllocatedCount() uint32 { return rg.capacity }

// NextSlot returns the high-water mark of allocated slots.
func (rg *RowGroup) NextSlot() uint32 {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return rg.nextSlot
}

// ColumnMap returns the row group's column-to-tile mapping.
func (rg *RowGroup) ColumnMap() ColumnMap {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	out := make(ColumnMap, len(rg.columnMap))
	copy(out, rg.columnMap)
	return out
}

// LocateTileAndColumn resolves a logical column index to its physical
// (tile, offset within tile) location.
func (rg *RowGroup) LocateTileAndColumn(column int) (tile int, offset int) {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	loc := rg.columnMap[column]
	return loc.Tile, loc.Offset
}

// TileSchemas returns a copy of each tile's column schema, in tile order.
func (rg *RowGroup) TileSchemas() [][]catalog.Column {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	out := make([][]catalog.Column, len(rg.tiles))
	for i, t := range rg.tiles {
		out[i] = t.Schema()
	}
	return out
}

// GetTile returns the tile at the given index.
func (rg *RowGroup) GetTile(tileOffset int) *Tile {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return rg.tiles[tileOffset]
}

// Value reads the value of logical column k at the given slot.
func (rg *RowGroup) Value(slot uint32, column int) interface{} {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	loc := rg.columnMap[column]
	return rg.tiles[loc.Tile].GetValue(slot, loc.Offset)
}

// SetValue writes the value of logical column k at the given slot.
func (rg *RowGroup) SetValue(slot uint32, column int, value interface{}) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	loc := rg.columnMap[column]
	rg.tiles[loc.Tile].SetValue(slot, loc.Offset, value)
}

// Insert claims the next free slot for the given transaction and writes the
// tuple's values into it, uncommitted. It returns (0, false) when the row
// group is full; the caller grows the table and retries elsewhere.
func (rg *RowGroup) Insert(transactionID txn.ID, values []interface{}) (uint32, bool) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	if rg.nextSlot >= rg.capacity {
		return 0, false
	}
	slot := rg.nextSlot
	rg.nextSlot++
	for column, value := range values {
		loc := rg.columnMap[column]
		rg.tiles[loc.Tile].SetValue(slot, loc.Offset, value)
	}
	rg.headers[slot] = SlotHeader{InsertTxnID: transactionID}
	return slot, true
}

// Delete latches the slot for deletion by the given transaction. It fails
// if the slot is not allocated, is already latched by a different
// in-flight transaction, or already has a delete visible to lastCommitID.
func (rg *RowGroup) Delete(transactionID txn.ID, slot uint32, lastCommitID uint64) bool {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	if slot >= rg.nextSlot {
		return false
	}
	h := &rg.headers[slot]
	if h.DeleteTxnID != 0 && h.DeleteTxnID != transactionID {
		return false
	}
	if h.DeleteCommitID != 0 && h.DeleteCommitID <= lastCommitID {
		return false
	}
	h.DeleteTxnID = transactionID
	return true
}

// IsVisible answers the MVCC visibility predicate for a slot: is it visible
// to a transaction with the given id and commit-id snapshot?
func (rg *RowGroup) IsVisible(slot uint32, transactionID txn.ID, lastCommitID uint64) bool {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	if slot >= rg.nextSlot {
		return false
	}
	h := rg.headers[slot]

	insertVisible := h.InsertTxnID == transactionID ||
		(h.InsertCommitID != 0 && h.InsertCommitID <= lastCommitID)
	if !insertVisible {
		return false
	}

	if h.DeleteTxnID == transactionID {
		return false
	}
	if h.DeleteCommitID != 0 && h.DeleteCommitID <= lastCommitID {
		return false
	}
	return true
}

// MarkInsertCommitted stamps the commit id onto a slot's insert half. Called
// from a transaction's commit hook, never directly by the insert path.
func (rg *RowGroup) MarkInsertCommitted(slot uint32, commitID uint64) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	if slot < uint32(len(rg.headers)) {
		rg.headers[slot].InsertCommitID = commitID
	}
}

// MarkDeleteCommitted stamps the commit id onto a slot's delete half.
func (rg *RowGroup) MarkDeleteCommitted(slot uint32, commitID uint64) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	if slot < uint32(len(rg.headers)) {
		rg.headers[slot].DeleteCommitID = commitID
	}
}

// HeaderCopy returns a bitwise copy of the row group's MVCC headers, used by
// the reorganizer to carry slot visibility state into a transformed row
// group untouched.
func (rg *RowGroup) HeaderCopy() []SlotHeader {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	out := make([]SlotHeader, len(rg.headers))
	copy(out, rg.headers)
	return out
}

// SetHeaders overwrites the row group's headers and next-slot mark wholesale.
// Only the reorganizer calls this, immediately after allocating a fresh row
// group and before it is published to readers.
func (rg *RowGroup) SetHeaders(headers []SlotHeader, nextSlot uint32) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	copy(rg.headers, headers)
	rg.nextSlot = nextSlot
}

// Destroy marks the row group as no longer live. It does not release the
// memory backing its tiles (Go's allocator handles that once nothing
// references it) — it exists so a reorganizer's cleanup=true can be
// observed by tests and diagnostics.
func (rg *RowGroup) Destroy() {
	rg.mu.Lock()
	rg.destroyed = true
	rg.mu.Unlock()
}

// Destroyed reports whether Destroy has been called on this row group.
func (rg *RowGroup) Destroyed() bool {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return rg.destroyed
}
