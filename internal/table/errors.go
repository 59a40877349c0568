package table

import "errors"

// ErrConstraintViolation is returned when a tuple violates a NOT NULL
// column constraint; no slot is claimed for it.
var ErrConstraintViolation = errors.New("table: not-null constraint violated")

// ErrUniqueViolation is returned when a primary/unique index already has a
// visible entry for the inserted key. The heap slot claimed before the
// check ran is not reclaimed: it stays allocated, with no index entry
// pointing at it.
var ErrUniqueViolation = errors.New("table: unique constraint violated")

// ErrNotFound is returned when an operation names a row-group id that is
// not part of this table, or an index/foreign-key offset or oid that does
// not exist.
var ErrNotFound = errors.New("table: not found")
