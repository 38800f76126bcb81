// Package snapshot defines the engine's inbound interface to an external
// columnar store (spec.md §6) and a minimal in-memory reference
// implementation used by the engine's own tests.
package snapshot

import (
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/zonemap"
)

// Store is the read-only external column store the engine queries
// against. Every method must be safe for concurrent use by multiple
// queries: a Store is published once and then only ever read.
type Store interface {
	Schema() column.TableSchema
	RowCount() uint64
	ColumnByIndex(i int) column.Chunk
	// ZoneMapFor returns the zone map built for column i, when one exists
	// (numeric columns only; string/bool columns have none).
	ZoneMapFor(i int) (*zonemap.Map, bool)
	// IsSorted reports whether columnName carries a sorted hint, letting
	// the physical planner choose SortedAggregate for a GroupBy safely.
	IsSorted(columnName string) bool
}

// InMemory is a reference Store backed by already-built column.Chunk
// values, used by engine tests and the demo CLI; a production deployment
// would instead adapt an existing columnar store (Parquet, Arrow IPC,
// a custom WAL-backed store) to this same interface.
type InMemory struct {
	schema   column.TableSchema
	rowCount uint64
	columns  []column.Chunk
	zoneMaps map[int]*zonemap.Map
	sorted   map[string]bool
}

// NewInMemory builds a Store from a schema and one chunk per column, and
// eagerly builds zone maps for every numeric column (spec.md §4.2: zone
// maps are "built once at snapshot publication").
func NewInMemory(schema column.TableSchema, columns []column.Chunk) *InMemory {
	var rowCount uint64
	if len(columns) > 0 {
		rowCount = uint64(columns[0].Len())
	}
	zoneMaps := make(map[int]*zonemap.Map)
	for i, c := range columns {
		if i < len(schema) && schema[i].Dtype.IsNumeric() {
			zoneMaps[i] = zonemap.Build(c)
		}
	}
	return &InMemory{schema: schema, rowCount: rowCount, columns: columns, zoneMaps: zoneMaps, sorted: map[string]bool{}}
}

// MarkSorted records that columnName is known to be sorted ascending,
// letting the physical planner pick SortedAggregate for group-bys keyed
// on it. The in-memory store trusts the caller; it does not verify order.
func (s *InMemory) MarkSorted(columnName string) { s.sorted[columnName] = true }

func (s *InMemory) Schema() column.TableSchema { return s.schema }
func (s *InMemory) RowCount() uint64           { return s.rowCount }
func (s *InMemory) ColumnByIndex(i int) column.Chunk {
	return s.columns[i]
}
func (s *InMemory) ZoneMapFor(i int) (*zonemap.Map, bool) {
	m, ok := s.zoneMaps[i]
	return m, ok
}
func (s *InMemory) IsSorted(columnName string) bool { return s.sorted[columnName] }

// zoneMapLookup adapts a Store to logicalplan.ZoneMapLookup without the
// logicalplan package needing to know about Store directly.
type zoneMapLookup struct{ store Store }

// ZoneMapLookup wraps store so it satisfies logicalplan.ZoneMapLookup.
func ZoneMapLookup(store Store) interface {
	ZoneMapFor(columnIndex int) (*zonemap.Map, bool)
} {
	return zoneMapLookup{store: store}
}

func (z zoneMapLookup) ZoneMapFor(columnIndex int) (*zonemap.Map, bool) {
	return z.store.ZoneMapFor(columnIndex)
}
