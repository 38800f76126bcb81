// Package zonemap implements per-column, per-chunk min/max/all-null
// summaries built once at snapshot publication and consulted by predicate
// evaluation to skip whole chunks without touching a single row.
package zonemap

import (
	"math"

	"github.com/arrowkit/arrowkit/src/column"
)

// ChunkSize is the fixed row count per zone-map chunk; it is the same
// 16384 used by parallel execution chunking, so a zone-map chunk boundary
// always lines up with an execution chunk boundary.
const ChunkSize = 16384

// Entry summarizes one chunk of one numeric column.
type Entry struct {
	Min     float64
	Max     float64
	AllNull bool
}

// OverlapsRange reports whether this entry's [Min, Max] could possibly
// contain a value in [lo, hi] (bounds inclusive per loInclusive/hiInclusive).
// Conservative: an AllNull chunk never overlaps a value range, since every
// row is null and null never satisfies a comparison predicate.
func (e Entry) OverlapsRange(lo, hi float64, loInclusive, hiInclusive bool) bool {
	if e.AllNull {
		return false
	}
	if hiInclusive {
		if e.Min > hi {
			return false
		}
	} else if e.Min >= hi {
		return false
	}
	if loInclusive {
		if e.Max < lo {
			return false
		}
	} else if e.Max <= lo {
		return false
	}
	return true
}

// Map holds the built zone-map entries for a single numeric column, one
// Entry per chunk of ChunkSize rows.
type Map struct {
	entries []Entry
}

func (m *Map) NumChunks() int { return len(m.entries) }

func (m *Map) Entry(chunk int) Entry { return m.entries[chunk] }

// Range returns the [start, end) row range covered by the given chunk
// index within a column of the given total row count.
func Range(chunk, rowCount int) (start, end int) {
	start = chunk * ChunkSize
	end = start + ChunkSize
	if end > rowCount {
		end = rowCount
	}
	return start, end
}

// Build scans c once and produces one Entry per ChunkSize-row window.
// String and boolean columns have no zone map: callers simply never call
// Build for those dtypes, and the optimizer treats an absent Map as "no
// pushdown available" rather than an error.
func Build(c column.Chunk) *Map {
	n := c.Len()
	numChunks := (n + ChunkSize - 1) / ChunkSize
	m := &Map{entries: make([]Entry, numChunks)}
	for ci := 0; ci < numChunks; ci++ {
		start, end := Range(ci, n)
		m.entries[ci] = summarizeRange(c, start, end)
	}
	return m
}

func summarizeRange(c column.Chunk, start, end int) Entry {
	// i64/u64 are summarized by accumulating native-width min/max instead
	// of routing through forEachFloat's float64 widening: float64 only
	// carries 53 bits of exact integer precision, so two distinct values
	// above 2^53 can round to the same float and narrow the stored
	// [Min, Max] bound past the chunk's true extremes, which would let
	// MayContainMatches wrongly prune a chunk that does contain a match.
	switch c.(type) {
	case *column.NumericChunk[int64]:
		return summarizeRangeInt64(c, start, end)
	case *column.NumericChunk[uint64]:
		return summarizeRangeUint64(c, start, end)
	}

	min, max := math.Inf(1), math.Inf(-1)
	sawValue := false
	sawNaN := false

	forEachFloat(c, start, end, func(pos int, v float64, valid bool) {
		if !valid {
			return
		}
		if math.IsNaN(v) {
			sawNaN = true
			return
		}
		sawValue = true
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	})

	if !sawValue {
		// every row in range is either null or NaN: treat as allNull so a
		// subsequent IsNotNull / comparison predicate does not wrongly prune.
		return Entry{AllNull: true}
	}
	if sawNaN {
		// spec: "For columns containing any NaN the chunk's min/max are set
		// so that no chunk is ever excluded" — widen to [-Inf, +Inf].
		return Entry{Min: math.Inf(-1), Max: math.Inf(1)}
	}
	return Entry{Min: min, Max: max}
}

func summarizeRangeInt64(c column.Chunk, start, end int) Entry {
	cc := c.(*column.NumericChunk[int64])
	validity := cc.Validity()
	valid := func(i int) bool { return validity == nil || validity.Get(i) }
	vals := cc.Values()

	min, max := int64(math.MaxInt64), int64(math.MinInt64)
	sawValue := false
	for i := start; i < end; i++ {
		if !valid(i) {
			continue
		}
		sawValue = true
		if vals[i] < min {
			min = vals[i]
		}
		if vals[i] > max {
			max = vals[i]
		}
	}
	if !sawValue {
		return Entry{AllNull: true}
	}
	return Entry{Min: widenIntOutward(min, false), Max: widenIntOutward(max, true)}
}

func summarizeRangeUint64(c column.Chunk, start, end int) Entry {
	cc := c.(*column.NumericChunk[uint64])
	validity := cc.Validity()
	valid := func(i int) bool { return validity == nil || validity.Get(i) }
	vals := cc.Values()

	var min, max uint64 = math.MaxUint64, 0
	sawValue := false
	for i := start; i < end; i++ {
		if !valid(i) {
			continue
		}
		sawValue = true
		if vals[i] < min {
			min = vals[i]
		}
		if vals[i] > max {
			max = vals[i]
		}
	}
	if !sawValue {
		return Entry{AllNull: true}
	}
	return Entry{Min: widenUintOutward(min, false), Max: widenUintOutward(max, true)}
}

// exactInt64Range is the largest magnitude an integer can have and still
// convert to float64 without any rounding (float64 carries 53 bits of
// exact integer precision).
const exactInt64Range = 1 << 53

// widenIntOutward converts v to its nearest float64. Past exactInt64Range,
// that conversion may round toward the interior of the [min, max] bound v
// is part of, so this nudges the result one float64 step further out
// whenever v's magnitude crosses the exact range — unconditionally, since
// computing whether a given v actually rounded inward would itself
// require a precision-losing round trip. A bound widened by one ULP more
// than strictly necessary is still conservative; a bound narrowed even
// once is not. up selects which direction is outward: true for a Max
// bound (round up), false for a Min bound (round down).
func widenIntOutward(v int64, up bool) float64 {
	f := float64(v)
	if v <= -exactInt64Range || v >= exactInt64Range {
		if up {
			f = math.Nextafter(f, math.Inf(1))
		} else {
			f = math.Nextafter(f, math.Inf(-1))
		}
	}
	return f
}

func widenUintOutward(v uint64, up bool) float64 {
	f := float64(v)
	if v >= exactInt64Range {
		if up {
			f = math.Nextafter(f, math.Inf(1))
		} else {
			f = math.Nextafter(f, math.Inf(-1))
		}
	}
	return f
}

// forEachFloat visits rows [start, end) of c as float64, regardless of c's
// concrete numeric instantiation. Non-numeric chunks (string/bool) are
// never passed to Build, so this only needs to cover the numeric dtypes.
func forEachFloat(c column.Chunk, start, end int, fn func(pos int, v float64, valid bool)) {
	validity := c.Validity()
	valid := func(i int) bool { return validity == nil || validity.Get(i) }

	switch cc := c.(type) {
	case *column.NumericChunk[int8]:
		for i := start; i < end; i++ {
			fn(i, float64(cc.Values()[i]), valid(i))
		}
	case *column.NumericChunk[int16]:
		for i := start; i < end; i++ {
			fn(i, float64(cc.Values()[i]), valid(i))
		}
	case *column.NumericChunk[int32]:
		for i := start; i < end; i++ {
			fn(i, float64(cc.Values()[i]), valid(i))
		}
	case *column.NumericChunk[int64]:
		for i := start; i < end; i++ {
			fn(i, float64(cc.Values()[i]), valid(i))
		}
	case *column.NumericChunk[uint8]:
		for i := start; i < end; i++ {
			fn(i, float64(cc.Values()[i]), valid(i))
		}
	case *column.NumericChunk[uint16]:
		for i := start; i < end; i++ {
			fn(i, float64(cc.Values()[i]), valid(i))
		}
	case *column.NumericChunk[uint32]:
		for i := start; i < end; i++ {
			fn(i, float64(cc.Values()[i]), valid(i))
		}
	case *column.NumericChunk[uint64]:
		for i := start; i < end; i++ {
			fn(i, float64(cc.Values()[i]), valid(i))
		}
	case *column.NumericChunk[float32]:
		for i := start; i < end; i++ {
			fn(i, float64(cc.Values()[i]), valid(i))
		}
	case *column.NumericChunk[float64]:
		for i := start; i < end; i++ {
			fn(i, cc.Values()[i], valid(i))
		}
	case *column.DecimalChunk:
		for i := start; i < end; i++ {
			fn(i, cc.NthValue(i).Float64(), valid(i))
		}
	}
}
