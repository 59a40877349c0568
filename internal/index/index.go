// Package index provides the secondary-index contract the table storage
// core synchronizes on every insert and same-key update (deletes leave
// index entries in place), plus a concrete in-memory implementation.
package index

import (
	"github.com/example/tablecore/engine/internal/catalog"
	"github.com/example/tablecore/engine/internal/rowgroup"
)

// ConstraintKind is the small closed enum driving which indexes the
// coordinator must visibility-check before allowing an insert.
type ConstraintKind int

const (
	ConstraintNone ConstraintKind = iota
	ConstraintUnique
	ConstraintPrimaryKey
)

// Index is the contract every secondary index structure must satisfy to be
// synchronized by the table storage core. Scan returns every item pointer
// on file for a key, visible or not; visibility filtering is the caller's
// job because only the caller knows the transaction context.
type Index interface {
	Name() string
	OID() catalog.OID
	Kind() ConstraintKind
	IndexedColumns() []int
	Scan(key []byte) []rowgroup.ItemPointer
	Insert(key []byte, ptr rowgroup.ItemPointer)
	Update(key []byte, ptr rowgroup.ItemPointer) bool
	Delete(key []byte, ptr rowgroup.ItemPointer)
	RowCount() uint64
	IncreaseRowCount()
}
