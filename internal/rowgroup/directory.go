package rowgroup

import "sync"

// Directory maps row-group ids to the row-group objects themselves and
// mints the ids in the first place. Lookups are the hot path (every insert,
// delete and visibility check goes through one) so only mint, register and
// rebind take the write lock; Lookup takes a read lock and nothing else.
//
// The specification describes this as a process-wide singleton; here it is
// an explicitly constructed object threaded through table construction, one
// per process (or one per test), since a package-level global would make
// every table in a test binary share state unnecessarily.
type Directory struct {
	mu     sync.RWMutex
	nextID uint32
	groups map[ID]*RowGroup
}

// NewDirectory constructs an empty directory.
func NewDirectory() *Directory {
	return &Directory{groups: make(map[ID]*RowGroup)}
}

// MintID hands out a fresh, never-before-used row-group id.
func (d *Directory) MintID() ID {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	return ID(d.nextID)
}

// Register binds an id to a row group. Used for a table's seed row group and
// for each pre-minted growth candidate that wins the growth race; candidates
// that lose the race are discarded without ever being registered.
func (d *Directory) Register(id ID, group *RowGroup) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.groups[id] = group
}

// Lookup resolves a row-group id to its object.
func (d *Directory) Lookup(id ID) (*RowGroup, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.groups[id]
	return g, ok
}

// Rebind atomically replaces the row group registered under id, used by the
// reorganizer to swap in a transformed row group. From a reader's
// perspective this is a single map-entry swap; readers that already hold a
// reference to the old row group keep seeing it, which is safe because the
// transformed row group preserves all prior MVCC state.
func (d *Directory) Rebind(id ID, group *RowGroup) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.groups[id] = group
}
