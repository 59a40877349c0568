package rowgroup

import "fmt"

// ID identifies a row group within a directory. Zero is reserved to mean
// "no row group" so a zero-value ItemPointer is recognizably invalid.
type ID uint32

// InvalidSlot marks the slot half of an invalid ItemPointer.
const InvalidSlot = ^uint32(0)

// ItemPointer is the physical address of a tuple: which row group, which
// slot within it. It is returned by insert and same-key-update operations
// and is what index entries point to.
type ItemPointer struct {
	RowGroupID ID
	Slot       uint32
}

// Invalid is the sentinel pointer returned when a slot could not be
// claimed or an operation otherwise failed to produce a location.
var Invalid = ItemPointer{RowGroupID: 0, Slot: InvalidSlot}

// IsValid reports whether the pointer addresses a real slot.
func (p ItemPointer) IsValid() bool {
	return p.RowGroupID != 0 && p.Slot != InvalidSlot
}

func (p ItemPointer) String() string {
	if !p.IsValid() {
		return "ItemPointer(invalid)"
	}
	return fmt.Sprintf("ItemPointer(%d,%d)", p.RowGroupID, p.Slot)
}
