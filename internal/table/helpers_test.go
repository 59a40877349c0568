package table_test

import (
	"testing"

	"github.com/example/tablecore/engine/internal/catalog"
	"github.com/example/tablecore/engine/internal/tuple"
)

func mustTuple(t *testing.T, schema *catalog.Schema, values ...interface{}) *tuple.Tuple {
	t.Helper()
	tup, err := tuple.New(schema, values)
	if err != nil {
		t.Fatalf("tuple.New: %v", err)
	}
	return tup
}
