package table

import (
	"fmt"

	"github.com/example/tablecore/engine/internal/catalog"
)

// ForeignKeySet is the ordered list of foreign-key descriptors a table
// owns. Descriptors are deep-copied on add, matching the original engine's
// "table owns a copy" lifecycle. Like IndexSet, it holds no lock of its
// own: callers hold the owning Table's mutex.
type ForeignKeySet struct {
	keys []*catalog.ForeignKey
}

// NewForeignKeySet constructs an empty set.
func NewForeignKeySet() *ForeignKeySet {
	return &ForeignKeySet{}
}

// Add appends a foreign key (by value copy) and attaches its constraint
// name to every source column of the given schema. This schema mutation
// is the only write-through from foreign-key metadata into the schema.
func (fks *ForeignKeySet) Add(schema *catalog.Schema, fk catalog.ForeignKey) error {
	for _, col := range fk.ChildColumns {
		if err := schema.AttachConstraint(col, fk.Name); err != nil {
			return err
		}
	}

	copied := fk
	copied.ChildColumns = append([]string(nil), fk.ChildColumns...)
	copied.ParentColumns = append([]string(nil), fk.ParentColumns...)
	fks.keys = append(fks.keys, &copied)
	return nil
}

// Get returns the foreign key at the given offset.
func (fks *ForeignKeySet) Get(offset int) (*catalog.ForeignKey, bool) {
	if offset < 0 || offset >= len(fks.keys) {
		return nil, false
	}
	return fks.keys[offset], true
}

// Drop removes the foreign key at the given offset.
func (fks *ForeignKeySet) Drop(offset int) error {
	if offset < 0 || offset >= len(fks.keys) {
		return fmt.Errorf("table: foreign key offset %d: %w", offset, ErrNotFound)
	}
	fks.keys = append(fks.keys[:offset], fks.keys[offset+1:]...)
	return nil
}

// Count returns the number of foreign keys currently bound to the table.
func (fks *ForeignKeySet) Count() int {
	return len(fks.keys)
}
