package table

import (
	"fmt"

	"github.com/example/tablecore/engine/internal/catalog"
	"github.com/example/tablecore/engine/internal/rowgroup"
)

// Reorganizer rewrites a row group under a new column-to-tile mapping,
// atomically, without disturbing item pointers already handed out for it:
// the row group's id is unchanged, only its tile layout and the object the
// directory resolves that id to.
type Reorganizer struct {
	table *Table
}

// NewReorganizer builds a reorganizer bound to the given table.
func NewReorganizer(t *Table) *Reorganizer {
	return &Reorganizer{table: t}
}

// TransformRowGroup replaces the row group at id with a new one laid out
// under newColumnMap, copying every logical column's values and the full
// MVCC header array across column-at-a-time, then rebinding the id in the
// directory to the transformed row group. When cleanup is true the original
// row group is marked destroyed once the swap is complete; callers that
// still hold references to it (in-flight scans) are unaffected because the
// transformed row group carries identical values and headers.
func (r *Reorganizer) TransformRowGroup(id rowgroup.ID, newColumnMap rowgroup.ColumnMap, cleanup bool) error {
	r.table.mu.Lock()
	found := false
	for _, existing := range r.table.rowGroupIDs {
		if existing == id {
			found = true
			break
		}
	}
	r.table.mu.Unlock()
	if !found {
		return fmt.Errorf("table: row group %d: %w", id, ErrNotFound)
	}

	original, ok := r.table.directory.Lookup(id)
	if !ok {
		return fmt.Errorf("table: row group %d missing from directory: %w", id, ErrNotFound)
	}

	newTileSchemas := deriveTileSchemas(r.table.schema.Columns, newColumnMap)

	transformed := rowgroup.New(id, r.table.databaseID, r.table.tableID, r.table.backend, original.AllocatedCount(), newTileSchemas, newColumnMap)

	nextSlot := original.NextSlot()
	for column := range r.table.schema.Columns {
		for slot := uint32(0); slot < nextSlot; slot++ {
			transformed.SetValue(slot, column, original.Value(slot, column))
		}
	}

	transformed.SetHeaders(original.HeaderCopy(), nextSlot)

	r.table.directory.Rebind(id, transformed)

	if cleanup {
		original.Destroy()
	}
	return nil
}

// deriveTileSchemas builds the per-tile column schema a new column map
// implies, by grouping the table's logical columns into the tiles
// newColumnMap assigns them to. The column ordering within a tile follows
// the offsets present in newColumnMap, mirroring how the original engine
// derives a transformed tile group's schema from a target column map
// rather than requiring the caller to spell out full tile schemas.
func deriveTileSchemas(columns []catalog.Column, newColumnMap rowgroup.ColumnMap) [][]catalog.Column {
	tileCount := 0
	for _, loc := range newColumnMap {
		if loc.Tile+1 > tileCount {
			tileCount = loc.Tile + 1
		}
	}

	tileWidths := make([]int, tileCount)
	for _, loc := range newColumnMap {
		if loc.Offset+1 > tileWidths[loc.Tile] {
			tileWidths[loc.Tile] = loc.Offset + 1
		}
	}

	schemas := make([][]catalog.Column, tileCount)
	for i, width := range tileWidths {
		schemas[i] = make([]catalog.Column, width)
	}

	for column, loc := range newColumnMap {
		schemas[loc.Tile][loc.Offset] = columns[column]
	}
	return schemas
}
