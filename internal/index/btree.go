package index

import (
	"bytes"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/example/tablecore/engine/internal/catalog"
	"github.com/example/tablecore/engine/internal/rowgroup"
)

type entry struct {
	key []byte
	ptr rowgroup.ItemPointer
}

// BTreeIndex keeps an in-memory, key-ordered slice of entries, the same
// shape the original engine persisted to a dedicated file, minus the file
// I/O: lookups binary-search into the sorted slice and mutations keep it
// sorted by splicing in place.
type BTreeIndex struct {
	mu             sync.Mutex
	oid            catalog.OID
	name           string
	kind           ConstraintKind
	indexedColumns []int
	entries        []entry
	rowCount       uint64
}

// NewBTreeIndex constructs an empty index over the given source columns.
func NewBTreeIndex(oid catalog.OID, name string, kind ConstraintKind, indexedColumns []int) *BTreeIndex {
	return &BTreeIndex{
		oid:            oid,
		name:           name,
		kind:           kind,
		indexedColumns: append([]int(nil), indexedColumns...),
	}
}

func (b *BTreeIndex) Name() string { return b.name }

func (b *BTreeIndex) OID() catalog.OID { return b.oid }

func (b *BTreeIndex) Kind() ConstraintKind { return b.kind }

func (b *BTreeIndex) IndexedColumns() []int {
	return append([]int(nil), b.indexedColumns...)
}

func (b *BTreeIndex) RowCount() uint64 {
	return atomic.LoadUint64(&b.rowCount)
}

func (b *BTreeIndex) IncreaseRowCount() {
	atomic.AddUint64(&b.rowCount, 1)
}

func (b *BTreeIndex) lowerBound(key []byte) int {
	return sort.Search(len(b.entries), func(i int) bool {
		return bytes.Compare(b.entries[i].key, key) >= 0
	})
}

// Scan returns every item pointer on file for the exact key. Among equal
// keys the most recently inserted entry comes first, since Insert splices
// each new entry ahead of any existing entries with the same key.
func (b *BTreeIndex) Scan(key []byte) []rowgroup.ItemPointer {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.lowerBound(key)
	var results []rowgroup.ItemPointer
	for idx < len(b.entries) && bytes.Equal(b.entries[idx].key, key) {
		results = append(results, b.entries[idx].ptr)
		idx++
	}
	return results
}

// Insert splices a new (key, ptr) entry into sorted position. It does not
// itself enforce uniqueness: the coordinator is responsible for the
// visibility-checked uniqueness scan before calling this.
func (b *BTreeIndex) Insert(key []byte, ptr rowgroup.ItemPointer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.lowerBound(key)
	stored := entry{key: cloneBytes(key), ptr: ptr}
	b.entries = append(b.entries, entry{})
	copy(b.entries[idx+1:], b.entries[idx:])
	b.entries[idx] = stored
}

// Update repoints the first entry matching key to ptr, reporting whether a
// matching entry existed at all.
func (b *BTreeIndex) Update(key []byte, ptr rowgroup.ItemPointer) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.lowerBound(key)
	if idx >= len(b.entries) || !bytes.Equal(b.entries[idx].key, key) {
		return false
	}
	b.entries[idx].ptr = ptr
	return true
}

// Delete removes the entry matching both key and ptr exactly, if present.
func (b *BTreeIndex) Delete(key []byte, ptr rowgroup.ItemPointer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.lowerBound(key)
	for idx < len(b.entries) && bytes.Equal(b.entries[idx].key, key) {
		if b.entries[idx].ptr == ptr {
			b.entries = append(b.entries[:idx], b.entries[idx+1:]...)
			return
		}
		idx++
	}
}

func cloneBytes(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}
