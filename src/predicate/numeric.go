package predicate

import (
	"math"

	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/zonemap"
)

// Op is a numeric comparison operator.
type Op int

const (
	OpEQ Op = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
)

// NumericComparison is the ⟨type, op, constant⟩ predicate variant.
type NumericComparison struct {
	columnIndex int
	op          Op
	constant    float64
}

// NewNumericComparison binds a comparison predicate to columnIndex. The
// column's dtype is validated by the caller (translator/logical-plan
// construction) against s.Dtype.IsNumeric(); this constructor itself
// accepts any column index since it has no schema to consult directly.
func NewNumericComparison(columnIndex int, op Op, constant float64) *NumericComparison {
	return &NumericComparison{columnIndex: columnIndex, op: op, constant: constant}
}

func (p *NumericComparison) ColumnIndex() int { return p.columnIndex }
func (p *NumericComparison) Kind() Kind       { return KindNumericComparison }
func (p *NumericComparison) Op() Op           { return p.op }
func (p *NumericComparison) Constant() float64 { return p.constant }

func (p *NumericComparison) EstimatedSelectivity() float64 {
	return baseRateSelectivity(KindNumericComparison)
}

func (p *NumericComparison) MayContainMatches(entry zonemap.Entry, hasZoneMap bool) bool {
	if !hasZoneMap {
		return true
	}
	if entry.AllNull {
		return false
	}
	switch p.op {
	case OpEQ:
		return entry.Min <= p.constant && p.constant <= entry.Max
	case OpNE:
		return entry.Min != entry.Max || entry.Min != p.constant
	case OpLT:
		return entry.Min < p.constant
	case OpLE:
		return entry.Min <= p.constant
	case OpGT:
		return entry.Max > p.constant
	case OpGE:
		return entry.Max >= p.constant
	default:
		return true
	}
}

func (p *NumericComparison) Evaluate(chunk column.Chunk, sel *bitmap.Bitmap, start, end int) {
	evaluateNumericPredicate(chunk, sel, start, end,
		func(v float64, valid bool) bool {
			if !valid {
				return false
			}
			switch p.op {
			case OpEQ:
				return v == p.constant
			case OpNE:
				return v != p.constant
			case OpLT:
				return v < p.constant
			case OpLE:
				return v <= p.constant
			case OpGT:
				return v > p.constant
			case OpGE:
				return v >= p.constant
			default:
				return false
			}
		},
		func(v int64, valid bool) bool {
			if !valid {
				return false
			}
			return applyOrdinal(compareInt64ToFloat(v, p.constant), p.op)
		},
		func(v uint64, valid bool) bool {
			if !valid {
				return false
			}
			return applyOrdinal(compareUint64ToFloat(v, p.constant), p.op)
		},
	)
}

// Range is the ⟨type, lo, hi, inclusivity⟩ predicate variant.
type Range struct {
	columnIndex              int
	lo, hi                   float64
	loInclusive, hiInclusive bool
}

func NewRange(columnIndex int, lo, hi float64, loInclusive, hiInclusive bool) *Range {
	return &Range{columnIndex: columnIndex, lo: lo, hi: hi, loInclusive: loInclusive, hiInclusive: hiInclusive}
}

func (p *Range) ColumnIndex() int { return p.columnIndex }
func (p *Range) Kind() Kind       { return KindRange }

// Bounds returns the range's (lo, hi, loInclusive, hiInclusive) fields.
func (p *Range) Bounds() (lo, hi float64, loInclusive, hiInclusive bool) {
	return p.lo, p.hi, p.loInclusive, p.hiInclusive
}

func (p *Range) EstimatedSelectivity() float64 { return baseRateSelectivity(KindRange) }

func (p *Range) MayContainMatches(entry zonemap.Entry, hasZoneMap bool) bool {
	if !hasZoneMap {
		return true
	}
	return entry.OverlapsRange(p.lo, p.hi, p.loInclusive, p.hiInclusive)
}

func (p *Range) Evaluate(chunk column.Chunk, sel *bitmap.Bitmap, start, end int) {
	inRange := func(cmpLo, cmpHi int) bool {
		if p.loInclusive {
			if cmpLo < 0 {
				return false
			}
		} else if cmpLo <= 0 {
			return false
		}
		if p.hiInclusive {
			if cmpHi > 0 {
				return false
			}
		} else if cmpHi >= 0 {
			return false
		}
		return true
	}
	evaluateNumericPredicate(chunk, sel, start, end,
		func(v float64, valid bool) bool {
			if !valid {
				return false
			}
			if p.loInclusive {
				if v < p.lo {
					return false
				}
			} else if v <= p.lo {
				return false
			}
			if p.hiInclusive {
				if v > p.hi {
					return false
				}
			} else if v >= p.hi {
				return false
			}
			return true
		},
		func(v int64, valid bool) bool {
			if !valid {
				return false
			}
			return inRange(compareInt64ToFloat(v, p.lo), compareInt64ToFloat(v, p.hi))
		},
		func(v uint64, valid bool) bool {
			if !valid {
				return false
			}
			return inRange(compareUint64ToFloat(v, p.lo), compareUint64ToFloat(v, p.hi))
		},
	)
}

// compareInt64ToFloat compares an exact int64 v against a float64 constant
// c without ever widening v through float64, so i64 values beyond 2^53
// still compare exactly: float64 only carries 53 bits of exact integer
// precision. Returns -1/0/1 the usual way, or 2 to flag c as NaN, which
// applyOrdinal maps onto IEEE754's "every ordered comparison against NaN
// is false, except !=" semantics.
func compareInt64ToFloat(v int64, c float64) int {
	if math.IsNaN(c) {
		return 2
	}
	if c > math.MaxInt64 {
		return -1
	}
	if c < math.MinInt64 {
		return 1
	}
	floor := math.Floor(c)
	fi := int64(floor)
	if floor == c {
		switch {
		case v < fi:
			return -1
		case v > fi:
			return 1
		default:
			return 0
		}
	}
	// c has a fractional part strictly between fi and fi+1.
	if v <= fi {
		return -1
	}
	return 1
}

// compareUint64ToFloat is compareInt64ToFloat's unsigned counterpart.
func compareUint64ToFloat(v uint64, c float64) int {
	if math.IsNaN(c) {
		return 2
	}
	if c < 0 {
		return 1
	}
	if c > math.MaxUint64 {
		return -1
	}
	floor := math.Floor(c)
	fu := uint64(floor)
	if floor == c {
		switch {
		case v < fu:
			return -1
		case v > fu:
			return 1
		default:
			return 0
		}
	}
	if v <= fu {
		return -1
	}
	return 1
}

// applyOrdinal turns a compareInt64ToFloat/compareUint64ToFloat result
// into a predicate test for op.
func applyOrdinal(cmp int, op Op) bool {
	if cmp == 2 {
		return op == OpNE
	}
	switch op {
	case OpEQ:
		return cmp == 0
	case OpNE:
		return cmp != 0
	case OpLT:
		return cmp < 0
	case OpLE:
		return cmp <= 0
	case OpGT:
		return cmp > 0
	case OpGE:
		return cmp >= 0
	default:
		return false
	}
}

// evaluateNumericPredicate dispatches chunk to the concrete numeric
// instantiation it holds and walks rows [start,end), clearing sel's bit
// whenever the matching test closure returns false. i64 and u64 route
// through their own exact-comparison closures (testInt64/testUint64)
// instead of test, since widening either through float64 loses precision
// above 2^53; every other numeric dtype is exact up to 32 bits wide, so
// the shared float64 path (test) is lossless for them.
func evaluateNumericPredicate(
	chunk column.Chunk, sel *bitmap.Bitmap, start, end int,
	test func(v float64, valid bool) bool,
	testInt64 func(v int64, valid bool) bool,
	testUint64 func(v uint64, valid bool) bool,
) {
	validity := chunk.Validity()
	valid := func(i int) bool { return validity == nil || validity.Get(i) }

	clearUnless := func(i int, ok bool) {
		if !ok {
			sel.Clear(i)
		}
	}

	switch c := chunk.(type) {
	case *column.NumericChunk[int32]:
		vals := c.Values()
		for i := start; i < end; i++ {
			clearUnless(i, test(float64(vals[i]), valid(i)))
		}
	case *column.NumericChunk[int64]:
		vals := c.Values()
		for i := start; i < end; i++ {
			clearUnless(i, testInt64(vals[i], valid(i)))
		}
	case *column.NumericChunk[float64]:
		vals := c.Values()
		for i := start; i < end; i++ {
			clearUnless(i, test(vals[i], valid(i)))
		}
	case *column.NumericChunk[int8]:
		vals := c.Values()
		for i := start; i < end; i++ {
			clearUnless(i, test(float64(vals[i]), valid(i)))
		}
	case *column.NumericChunk[int16]:
		vals := c.Values()
		for i := start; i < end; i++ {
			clearUnless(i, test(float64(vals[i]), valid(i)))
		}
	case *column.NumericChunk[uint8]:
		vals := c.Values()
		for i := start; i < end; i++ {
			clearUnless(i, test(float64(vals[i]), valid(i)))
		}
	case *column.NumericChunk[uint16]:
		vals := c.Values()
		for i := start; i < end; i++ {
			clearUnless(i, test(float64(vals[i]), valid(i)))
		}
	case *column.NumericChunk[uint32]:
		vals := c.Values()
		for i := start; i < end; i++ {
			clearUnless(i, test(float64(vals[i]), valid(i)))
		}
	case *column.NumericChunk[uint64]:
		vals := c.Values()
		for i := start; i < end; i++ {
			clearUnless(i, testUint64(vals[i], valid(i)))
		}
	case *column.NumericChunk[float32]:
		vals := c.Values()
		for i := start; i < end; i++ {
			clearUnless(i, test(float64(vals[i]), valid(i)))
		}
	case *column.DecimalChunk:
		for i := start; i < end; i++ {
			clearUnless(i, test(c.NthValue(i).Float64(), valid(i)))
		}
	default:
		for i := start; i < end; i++ {
			sel.Clear(i)
		}
	}
}
