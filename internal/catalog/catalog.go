// Package catalog describes table schemas: columns, their types, and the
// foreign key constraints a table participates in. It intentionally knows
// nothing about how a table stores its rows — that is rowgroup's and
// table's job — and nothing about how a database might persist these
// definitions to disk, since recovery from an on-disk catalog is out of
// scope for the table storage core.
package catalog

import (
	"fmt"
	"sync/atomic"
)

// OID identifies a catalog object (a table or an index) for the lifetime of
// the process. Unlike Peloton's persisted object ids, these are minted
// fresh on every process start; nothing here claims durability.
type OID uint32

// OIDGenerator mints monotonically increasing object identifiers.
type OIDGenerator struct {
	next uint32
}

// NewOIDGenerator constructs a generator whose first minted id is 1; 0 is
// reserved to mean "unassigned".
func NewOIDGenerator() *OIDGenerator {
	return &OIDGenerator{next: 0}
}

// Next mints and returns the next object identifier.
func (g *OIDGenerator) Next() OID {
	return OID(atomic.AddUint32(&g.next, 1))
}

// ColumnType enumerates the column kinds a schema may declare.
type ColumnType uint8

const (
	ColumnTypeInt ColumnType = iota
	ColumnTypeBigInt
	ColumnTypeVarChar
	ColumnTypeBoolean
	ColumnTypeDate
	ColumnTypeTimestamp
	ColumnTypeDecimal
)

func (t ColumnType) String() string {
	switch t {
	case ColumnTypeInt:
		return "INT"
	case ColumnTypeBigInt:
		return "BIGINT"
	case ColumnTypeVarChar:
		return "VARCHAR"
	case ColumnTypeBoolean:
		return "BOOLEAN"
	case ColumnTypeDate:
		return "DATE"
	case ColumnTypeTimestamp:
		return "TIMESTAMP"
	case ColumnTypeDecimal:
		return "DECIMAL"
	default:
		return "UNKNOWN"
	}
}

// Column describes a single column of a table schema.
type Column struct {
	Name        string
	Type        ColumnType
	Length      int
	Precision   int
	Scale       int
	NotNull     bool
	PrimaryKey  bool
	Constraints []string
}

// Validate reports whether the column's declared metadata is internally
// consistent (VARCHAR needs a positive length, DECIMAL needs a sane
// precision/scale pair), mirroring the constraints the original on-disk
// encoding enforced.
func (c Column) Validate() error {
	switch c.Type {
	case ColumnTypeVarChar:
		if c.Length <= 0 {
			return fmt.Errorf("catalog: VARCHAR column %s must declare a positive length", c.Name)
		}
	case ColumnTypeDecimal:
		if c.Precision <= 0 {
			return fmt.Errorf("catalog: DECIMAL column %s must declare a positive precision", c.Name)
		}
		if c.Scale < 0 || c.Scale > c.Precision {
			return fmt.Errorf("catalog: DECIMAL column %s has an invalid scale %d for precision %d", c.Name, c.Scale, c.Precision)
		}
	}
	return nil
}

// Schema is the ordered list of columns making up a table's row shape. Its
// columns and their offsets are fixed once a table is constructed; the one
// later change is AttachConstraint appending a constraint name to a
// column. Foreign-key descriptors themselves are tracked separately in
// ForeignKeySet, so adding or dropping one never reshuffles column offsets.
type Schema struct {
	Columns []Column
}

// NewSchema validates and wraps the given columns into a Schema.
func NewSchema(columns []Column) (*Schema, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("catalog: schema must declare at least one column")
	}
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if err := col.Validate(); err != nil {
			return nil, err
		}
		lower := col.Name
		if _, dup := seen[lower]; dup {
			return nil, fmt.Errorf("catalog: duplicate column name %s", col.Name)
		}
		seen[lower] = struct{}{}
	}
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Schema{Columns: cols}, nil
}

// NumColumns returns the number of columns in the schema.
func (s *Schema) NumColumns() int {
	return len(s.Columns)
}

// ColumnByName returns the offset and definition of the named column.
func (s *Schema) ColumnByName(name string) (int, Column, bool) {
	for i, col := range s.Columns {
		if col.Name == name {
			return i, col, true
		}
	}
	return 0, Column{}, false
}

// AttachConstraint records a named constraint against a column, the only
// way schema state changes after construction. Used when a foreign key is
// added to a table: the constraint name is attached to each of the key's
// source columns.
func (s *Schema) AttachConstraint(columnName, constraintName string) error {
	idx, _, ok := s.ColumnByName(columnName)
	if !ok {
		return fmt.Errorf("catalog: unknown column %s", columnName)
	}
	s.Columns[idx].Constraints = append(s.Columns[idx].Constraints, constraintName)
	return nil
}

// ForeignKeyAction identifies the referential action taken when a parent
// row referenced by a foreign key is deleted or updated.
type ForeignKeyAction uint8

const (
	ForeignKeyActionRestrict ForeignKeyAction = iota
	ForeignKeyActionNoAction
)

// ForeignKey describes a child-to-parent relationship between two tables.
type ForeignKey struct {
	Name          string
	ChildColumns  []string
	ParentTable   string
	ParentColumns []string
	OnDelete      ForeignKeyAction
	OnUpdate      ForeignKeyAction
}
