package table

import "sync/atomic"

// Stats is a running, approximate row count plus a dirty flag, matching
// the original engine's IncreaseNumberOfTuplesBy/DecreaseNumberOfTuplesBy/
// IsDirty/ResetDirty quartet. Neither field is transactional: a rolled
// back insert does not decrement it back down, matching the documented
// "approximate" contract.
type Stats struct {
	rowCount int64
	dirty    int32
}

// IncreaseBy increments the row count and marks the stats dirty.
func (s *Stats) IncreaseBy(amount int64) {
	atomic.AddInt64(&s.rowCount, amount)
	atomic.StoreInt32(&s.dirty, 1)
}

// DecreaseBy decrements the row count and marks the stats dirty.
func (s *Stats) DecreaseBy(amount int64) {
	atomic.AddInt64(&s.rowCount, -amount)
	atomic.StoreInt32(&s.dirty, 1)
}

// RowCount returns the current approximate row count.
func (s *Stats) RowCount() int64 {
	return atomic.LoadInt64(&s.rowCount)
}

// IsDirty reports whether the stats have changed since the last ResetDirty.
func (s *Stats) IsDirty() bool {
	return atomic.LoadInt32(&s.dirty) != 0
}

// ResetDirty clears the dirty flag.
func (s *Stats) ResetDirty() {
	atomic.StoreInt32(&s.dirty, 0)
}
