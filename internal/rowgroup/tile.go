package rowgroup

import "github.com/example/tablecore/engine/internal/catalog"

// TileLocation is where a logical column physically lives: which tile, and
// its column offset within that tile's schema.
type TileLocation struct {
	Tile   int
	Offset int
}

// ColumnMap is the function column_index -> (tile_index, column_offset).
// Index i of the slice describes logical column i.
type ColumnMap []TileLocation

// DefaultColumnMap builds the identity mapping used for a freshly allocated
// row group: every column lives in tile 0, at its own offset.
func DefaultColumnMap(columnCount int) ColumnMap {
	cm := make(ColumnMap, columnCount)
	for i := range cm {
		cm[i] = TileLocation{Tile: 0, Offset: i}
	}
	return cm
}

// Tile is a column-group within a row group: a contiguous subset of columns
// sharing one physical layout, stored as a fixed-capacity array of rows.
type Tile struct {
	schema []catalog.Column
	rows   [][]interface{}
}

func newTile(schema []catalog.Column, capacity uint32) *Tile {
	rows := make([][]interface{}, capacity)
	for i := range rows {
		rows[i] = make([]interface{}, len(schema))
	}
	return &Tile{schema: schema, rows: rows}
}

// Schema returns the tile's column definitions, in tile order.
func (t *Tile) Schema() []catalog.Column {
	out := make([]catalog.Column, len(t.schema))
	copy(out, t.schema)
	return out
}

// GetValue returns the value stored for the given slot at the given
// tile-local column offset.
func (t *Tile) GetValue(slot uint32, offset int) interface{} {
	return t.rows[slot][offset]
}

// SetValue stores a value for the given slot at the given tile-local column
// offset.
func (t *Tile) SetValue(slot uint32, offset int, value interface{}) {
	t.rows[slot][offset] = value
}
