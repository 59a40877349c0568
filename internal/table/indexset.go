package table

import (
	"fmt"

	"github.com/example/tablecore/engine/internal/catalog"
	"github.com/example/tablecore/engine/internal/index"
)

// IndexSet is a table's ordered collection of secondary indexes, plus the
// has-primary-key / unique-count flags derived from what has been added.
// It holds no lock of its own: every method here is called with the owning
// Table's single mutex already held, per the one-mutex-per-table
// discipline the table storage core is required to preserve.
type IndexSet struct {
	indexes               []index.Index
	hasPrimaryKey         bool
	uniqueConstraintCount int
}

// NewIndexSet constructs an empty index set.
func NewIndexSet() *IndexSet {
	return &IndexSet{}
}

// Add appends an index and updates the derived constraint flags.
func (s *IndexSet) Add(idx index.Index) {
	s.indexes = append(s.indexes, idx)
	switch idx.Kind() {
	case index.ConstraintPrimaryKey:
		s.hasPrimaryKey = true
	case index.ConstraintUnique:
		s.uniqueConstraintCount++
	}
}

// ByOffset returns the index at the given addition-order offset.
func (s *IndexSet) ByOffset(offset int) (index.Index, bool) {
	if offset < 0 || offset >= len(s.indexes) {
		return nil, false
	}
	return s.indexes[offset], true
}

// ByOID returns the index with the given object id.
func (s *IndexSet) ByOID(oid catalog.OID) (index.Index, bool) {
	for _, idx := range s.indexes {
		if idx.OID() == oid {
			return idx, true
		}
	}
	return nil, false
}

// DropByOID removes the index with the given object id from the set. The
// index object itself lives on; its further lifetime is the caller's
// concern.
func (s *IndexSet) DropByOID(oid catalog.OID) error {
	for i, idx := range s.indexes {
		if idx.OID() == oid {
			s.indexes = append(s.indexes[:i], s.indexes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("table: index %d: %w", oid, ErrNotFound)
}

// Count returns the number of indexes currently in the set.
func (s *IndexSet) Count() int {
	return len(s.indexes)
}

// HasPrimaryKey reports whether any index in the set enforces PRIMARY KEY.
func (s *IndexSet) HasPrimaryKey() bool {
	return s.hasPrimaryKey
}

// UniqueConstraintCount returns the number of non-primary unique indexes.
func (s *IndexSet) UniqueConstraintCount() int {
	return s.uniqueConstraintCount
}

// snapshot returns a stable copy of the index list, in addition order, for
// the coordinator to iterate (forward or in reverse) after the table
// mutex has been released.
func (s *IndexSet) snapshot() []index.Index {
	out := make([]index.Index, len(s.indexes))
	copy(out, s.indexes)
	return out
}
