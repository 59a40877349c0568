// Package tuple provides the in-memory row representation table operations
// and indexes exchange: an ordered slice of column values against a schema.
package tuple

import (
	"fmt"

	"github.com/example/tablecore/engine/internal/catalog"
)

// Tuple is a single row's worth of typed values, ordered to match a schema.
type Tuple struct {
	Schema *catalog.Schema
	Values []interface{}
}

// New constructs a Tuple, checking that the value count matches the schema.
func New(schema *catalog.Schema, values []interface{}) (*Tuple, error) {
	if len(values) != schema.NumColumns() {
		return nil, fmt.Errorf("tuple: expected %d values, got %d", schema.NumColumns(), len(values))
	}
	out := make([]interface{}, len(values))
	copy(out, values)
	return &Tuple{Schema: schema, Values: out}, nil
}

// ColumnCount returns the number of columns in the tuple.
func (t *Tuple) ColumnCount() int {
	return len(t.Values)
}

// IsNull reports whether column k holds a nil value.
func (t *Tuple) IsNull(column int) bool {
	return t.Values[column] == nil
}

// Value returns the value at column k.
func (t *Tuple) Value(column int) interface{} {
	return t.Values[column]
}

// CheckNotNullConstraints verifies every non-nullable column holds a value,
// walking columns from the last to the first to match the order in which
// the original storage engine performed this check.
func (t *Tuple) CheckNotNullConstraints() error {
	for i := len(t.Schema.Columns) - 1; i >= 0; i-- {
		col := t.Schema.Columns[i]
		if col.NotNull && t.IsNull(i) {
			return fmt.Errorf("tuple: column %s violates NOT NULL constraint", col.Name)
		}
	}
	return nil
}

// ProjectInto extracts the values of the named indexed columns, in the
// order given, producing the key tuple an index is keyed on.
func (t *Tuple) ProjectInto(indexedColumns []int) []interface{} {
	key := make([]interface{}, len(indexedColumns))
	for i, col := range indexedColumns {
		key[i] = t.Values[col]
	}
	return key
}
