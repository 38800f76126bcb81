package exec

import (
	"math"
	"math/bits"

	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/logicalplan"
)

// AggResult carries every accumulator an Aggregate node's kernel might
// need, regardless of which Op was requested; the caller reads only the
// field(s) relevant to its Op. Integer dtypes accumulate Sum in IntSum
// (widened to int64 per spec.md §4.7: "i32 -> i64... to avoid overflow");
// floating and decimal dtypes accumulate in FloatSum / DecimalSum instead.
type AggResult struct {
	Count      int64
	IsInteger  bool
	IsDecimal  bool
	IntSum     int64
	FloatSum   float64
	DecimalSum column.Decimal64
	Min, Max   float64
}

// Average divides Sum by Count once, per spec.md §4.7 ("Average returns
// (Sum, Count) and divides once at the end").
func (r AggResult) Average() float64 {
	if r.Count == 0 {
		return 0
	}
	if r.IsInteger {
		return float64(r.IntSum) / float64(r.Count)
	}
	if r.IsDecimal {
		return r.DecimalSum.Float64() / float64(r.Count)
	}
	return r.FloatSum / float64(r.Count)
}

// Aggregate reduces chunk over the rows set in sel according to op. Count
// never touches the column at all (spec.md §4.7: "Count is
// bitmap.countSet() with no column access").
func Aggregate(chunk column.Chunk, sel *bitmap.Bitmap, op logicalplan.AggregateOp) (AggResult, error) {
	if op == logicalplan.AggCount {
		return AggResult{Count: int64(sel.CountSet())}, nil
	}
	if dc, ok := chunk.(*column.DecimalChunk); ok {
		sum, err := column.SumDecimal(dc, sel)
		if err != nil {
			return AggResult{}, err
		}
		return AggResult{IsDecimal: true, DecimalSum: sum, Count: int64(sel.CountSet())}, nil
	}
	if reader := intReaderFor(chunk); reader != nil {
		return aggregateInt(chunk, sel, reader), nil
	}
	if reader := floatReaderFor(chunk); reader != nil {
		return aggregateFloat(chunk, sel, reader), nil
	}
	return AggResult{}, nil
}

// aggregateInt performs the "bulk word" / "trailing-zero-count" pass
// spec.md §4.7 describes, accumulating in a widened int64 sum.
func aggregateInt(chunk column.Chunk, sel *bitmap.Bitmap, reader func(int) int64) AggResult {
	validity := chunk.Validity()
	res := AggResult{IsInteger: true, Min: math.Inf(1), Max: math.Inf(-1)}
	var sum int64
	var count int64
	sel.ForEachSetWord(func(base int, word uint64) {
		for word != 0 {
			pos := base + bits.TrailingZeros64(word)
			word &= word - 1
			if validity != nil && !validity.Get(pos) {
				continue
			}
			v := reader(pos)
			sum += v
			count++
			fv := float64(v)
			if fv < res.Min {
				res.Min = fv
			}
			if fv > res.Max {
				res.Max = fv
			}
		}
	})
	res.IntSum = sum
	res.Count = count
	return res
}

func aggregateFloat(chunk column.Chunk, sel *bitmap.Bitmap, reader func(int) float64) AggResult {
	validity := chunk.Validity()
	res := AggResult{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	var count int64
	sel.ForEachSetWord(func(base int, word uint64) {
		for word != 0 {
			pos := base + bits.TrailingZeros64(word)
			word &= word - 1
			if validity != nil && !validity.Get(pos) {
				continue
			}
			v := reader(pos)
			sum += v
			count++
			if v < res.Min {
				res.Min = v
			}
			if v > res.Max {
				res.Max = v
			}
		}
	})
	res.FloatSum = sum
	res.Count = count
	return res
}

func intReaderFor(chunk column.Chunk) func(int) int64 {
	switch cc := chunk.(type) {
	case *column.NumericChunk[int8]:
		return func(i int) int64 { return int64(cc.Values()[i]) }
	case *column.NumericChunk[int16]:
		return func(i int) int64 { return int64(cc.Values()[i]) }
	case *column.NumericChunk[int32]:
		return func(i int) int64 { return int64(cc.Values()[i]) }
	case *column.NumericChunk[int64]:
		return func(i int) int64 { return cc.Values()[i] }
	case *column.NumericChunk[uint8]:
		return func(i int) int64 { return int64(cc.Values()[i]) }
	case *column.NumericChunk[uint16]:
		return func(i int) int64 { return int64(cc.Values()[i]) }
	case *column.NumericChunk[uint32]:
		return func(i int) int64 { return int64(cc.Values()[i]) }
	case *column.NumericChunk[uint64]:
		return func(i int) int64 { return int64(cc.Values()[i]) }
	default:
		// float32/float64/Decimal fall through to their own readers; every
		// other chunk type (string/bool/null) is never the target of a
		// numeric aggregate by plan-construction invariant.
		return nil
	}
}

func floatReaderFor(chunk column.Chunk) func(int) float64 {
	switch cc := chunk.(type) {
	case *column.NumericChunk[float32]:
		return func(i int) float64 { return float64(cc.Values()[i]) }
	case *column.NumericChunk[float64]:
		return func(i int) float64 { return cc.Values()[i] }
	default:
		return nil
	}
}
