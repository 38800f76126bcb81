package exec

import (
	"sort"

	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/logicalplan"
)

// SortPositions stably reorders positions (row indices already selected by
// an upstream filter, in ascending order) according to keys, resolving
// each key's values against columnFor. Ties fall back to the next key in
// order and finally to the original (ascending) position, so the sort is
// deterministic regardless of Go's sort.Slice stability guarantees.
func SortPositions(positions []int, keys []logicalplan.SortKey, columnFor func(name string) column.Chunk) []int {
	out := make([]int, len(positions))
	copy(out, positions)
	if len(keys) == 0 {
		return out
	}

	type keyColumn struct {
		chunk      column.Chunk
		descending bool
	}
	cols := make([]keyColumn, len(keys))
	for i, k := range keys {
		cols[i] = keyColumn{chunk: columnFor(k.Column), descending: k.Descending}
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i], out[j]
		for _, kc := range cols {
			vi, iValid := column.ValueAt(kc.chunk, pi)
			vj, jValid := column.ValueAt(kc.chunk, pj)
			if iValid != jValid {
				return iValid // nulls last, independent of direction
			}
			cmp := compareValues(vi, iValid, vj, jValid)
			if cmp == 0 {
				continue
			}
			if kc.descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return pi < pj
	})
	return out
}

// compareValues orders nulls last regardless of sort direction (spec.md
// §4.8: "nulls sort after every non-null value, in either direction").
func compareValues(a any, aValid bool, b any, bValid bool) int {
	if !aValid && !bValid {
		return 0
	}
	if !aValid {
		return 1
	}
	if !bValid {
		return -1
	}
	switch av := a.(type) {
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case bool:
		bv := b.(bool)
		switch {
		case !av && bv:
			return -1
		case av && !bv:
			return 1
		default:
			return 0
		}
	case column.Decimal64:
		bv := b.(column.Decimal64)
		switch {
		case av.Value < bv.Value:
			return -1
		case av.Value > bv.Value:
			return 1
		default:
			return 0
		}
	default:
		af, aok := asFloat64(a)
		bf, bok := asFloat64(b)
		if !aok || !bok {
			return 0
		}
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
}

// asFloat64 widens any of the numeric chunk value types column.ValueAt can
// return into a float64 for ordering purposes only (never used on the
// aggregation hot path, which reads typed buffers directly).
func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
