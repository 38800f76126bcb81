package column

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"math/bits"

	"github.com/arrowkit/arrowkit/src/bitmap"
)

// Decimal64 is a fixed-point decimal value: an int64 mantissa scaled by
// 10^-Scale. spec.md §9 leaves the representation of the Decimal logical
// type as an open question; this engine resolves it toward a fixed-point
// scaled integer rather than big.Rat/big.Float, since every arithmetic
// kernel elsewhere in the engine (Sum, comparison) is already built around
// native integer/float widths and a big.Rat accumulator would force every
// aggregation kernel onto a second, allocation-heavy code path.
type Decimal64 struct {
	Value int64
	Scale uint8
}

func (d Decimal64) Float64() float64 {
	return float64(d.Value) / math.Pow10(int(d.Scale))
}

func (d Decimal64) String() string {
	return fmt.Sprintf("%d e-%d", d.Value, d.Scale)
}

// rescale converts d to the target scale, used so two Decimal64 values of
// differing scale can be compared or summed. Overflow while rescaling
// surfaces as ok=false so the caller can report CapacityExceeded rather
// than silently truncating.
func (d Decimal64) rescale(targetScale uint8) (Decimal64, bool) {
	if d.Scale == targetScale {
		return d, true
	}
	if targetScale > d.Scale {
		factor := int64(math.Pow10(int(targetScale - d.Scale)))
		v := d.Value * factor
		if factor != 0 && v/factor != d.Value {
			return Decimal64{}, false
		}
		return Decimal64{Value: v, Scale: targetScale}, true
	}
	factor := int64(math.Pow10(int(d.Scale - targetScale)))
	return Decimal64{Value: d.Value / factor, Scale: targetScale}, true
}

// DecimalChunk stores Decimal64 values with a single chunk-wide scale (the
// scale is part of the column's declared schema, not per-value).
type DecimalChunk struct {
	scale    uint8
	data     []int64
	validity *bitmap.Bitmap
	length   int
}

func NewDecimalChunk(scale uint8, data []int64, validity *bitmap.Bitmap) *DecimalChunk {
	return &DecimalChunk{scale: scale, data: data, validity: validity, length: len(data)}
}

func (c *DecimalChunk) Dtype() Dtype             { return DtypeDecimal }
func (c *DecimalChunk) Len() int                 { return c.length }
func (c *DecimalChunk) Validity() *bitmap.Bitmap { return c.validity }
func (c *DecimalChunk) Scale() uint8             { return c.scale }
func (c *DecimalChunk) Mantissas() []int64       { return c.data }

func (c *DecimalChunk) NthValue(i int) Decimal64 {
	return Decimal64{Value: c.data[i], Scale: c.scale}
}

func (c *DecimalChunk) Clone() Chunk {
	data := make([]int64, len(c.data))
	copy(data, c.data)
	return &DecimalChunk{scale: c.scale, data: data, validity: c.validity.Clone(), length: c.length}
}

func (c *DecimalChunk) Prune(bm *bitmap.Bitmap) Chunk {
	if bm.Len() != c.length {
		panic(errPruneLengthMismatch)
	}
	n := bm.CountSet()
	data := make([]int64, 0, n)
	var validity *bitmap.Bitmap
	idxs := bm.GetSelectedIndices(make([]int, 0, n))
	for outPos, srcPos := range idxs {
		data = append(data, c.data[srcPos])
		if c.validity != nil && c.validity.Get(srcPos) {
			if validity == nil {
				validity = bitmap.New(n, false)
			}
			validity.Set(outPos)
		}
	}
	return &DecimalChunk{scale: c.scale, data: data, validity: validity, length: n}
}

func (c *DecimalChunk) Append(other Chunk) (Chunk, error) {
	o, ok := other.(*DecimalChunk)
	if !ok {
		return nil, errAppendTypeMismatch
	}
	if o.scale != c.scale {
		return nil, fmt.Errorf("column: cannot append decimal chunks of differing scale (%d vs %d)", c.scale, o.scale)
	}
	data := make([]int64, 0, c.length+o.length)
	data = append(data, c.data...)
	data = append(data, o.data...)
	var validity *bitmap.Bitmap
	if c.validity != nil || o.validity != nil {
		validity = bitmap.New(c.length+o.length, false)
		for i := 0; i < c.length; i++ {
			if c.validity != nil && c.validity.Get(i) {
				validity.Set(i)
			}
		}
		for i := 0; i < o.length; i++ {
			if o.validity != nil && o.validity.Get(i) {
				validity.Set(c.length + i)
			}
		}
	}
	return &DecimalChunk{scale: c.scale, data: data, validity: validity, length: c.length + o.length}, nil
}

func (c *DecimalChunk) Hash(hashes []uint64) {
	var buf [8]byte
	hasher := fnv.New64()
	for i, v := range c.data {
		if c.validity != nil && !c.validity.Get(i) {
			hashes[i] ^= hashNull
			continue
		}
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		hasher.Write(buf[:])
		hasher.Write([]byte{c.scale})
		hashes[i] ^= hasher.Sum64()
		hasher.Reset()
	}
}

// ErrDecimalCapacityExceeded is returned by SumDecimal when accumulating
// overflows int64, per spec.md §9's resolution that overflow "surface as
// CapacityExceeded rather than wrap" — silently wrapping a financial sum
// around zero is worse than failing the query outright.
var ErrDecimalCapacityExceeded = fmt.Errorf("column: decimal sum exceeds int64 capacity")

// SumDecimal accumulates the selected rows of c at c's native scale,
// returning ErrDecimalCapacityExceeded on int64 overflow.
func SumDecimal(c *DecimalChunk, bm *bitmap.Bitmap) (result Decimal64, err error) {
	var sum int64
	bm.ForEachSetWord(func(base int, word uint64) {
		for word != 0 {
			pos := base + bits.TrailingZeros64(word)
			word &= word - 1
			if err != nil || (c.validity != nil && !c.validity.Get(pos)) {
				continue
			}
			v := c.data[pos]
			next := sum + v
			if (v > 0 && next < sum) || (v < 0 && next > sum) {
				err = ErrDecimalCapacityExceeded
				continue
			}
			sum = next
		}
	})
	if err != nil {
		return Decimal64{}, err
	}
	return Decimal64{Value: sum, Scale: c.scale}, nil
}
