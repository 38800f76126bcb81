package column

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/arrowkit/arrowkit/src/bitmap"
)

// Numeric is the constraint satisfied by every fixed-width numeric Go type
// the engine stores directly in a column buffer. The teacher represents
// each numeric dtype as its own hand-written Chunk type (ChunkInts,
// ChunkFloats); this repository generalizes that same "typed buffer +
// validity bitmap" shape into a single generic type, since the spec's
// logical type set (i8..u64, f32/f64) is nine numeric types rather than
// the teacher's two, and duplicating the teacher's per-type boilerplate
// nine times would be pure repetition with no behavioral difference.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// NumericChunk is the generic fixed-width column chunk for every numeric
// dtype. dtype is stored explicitly (rather than derived from T) because
// Go generics cannot dispatch on the instantiated type parameter at the
// value level.
type NumericChunk[T Numeric] struct {
	dtype    Dtype
	data     []T
	validity *bitmap.Bitmap // nil => no nulls
	length   int
}

// NewNumericChunk wraps a pre-built value slice and optional validity
// bitmap into a chunk of the given dtype.
func NewNumericChunk[T Numeric](dtype Dtype, data []T, validity *bitmap.Bitmap) *NumericChunk[T] {
	return &NumericChunk[T]{dtype: dtype, data: data, validity: validity, length: len(data)}
}

func (c *NumericChunk[T]) Dtype() Dtype             { return c.dtype }
func (c *NumericChunk[T]) Len() int                 { return c.length }
func (c *NumericChunk[T]) Validity() *bitmap.Bitmap { return c.validity }

// Values returns the raw typed value buffer. Positions where Validity is
// clear hold an unspecified value and must not be read by predicates
// (predicates AND the validity bitmap into the selection before touching
// values, per spec.md §4.3).
func (c *NumericChunk[T]) Values() []T { return c.data }

func (c *NumericChunk[T]) Clone() Chunk {
	data := make([]T, len(c.data))
	copy(data, c.data)
	return &NumericChunk[T]{dtype: c.dtype, data: data, validity: c.validity.Clone(), length: c.length}
}

func (c *NumericChunk[T]) Prune(bm *bitmap.Bitmap) Chunk {
	if bm.Len() != c.length {
		panic(errPruneLengthMismatch)
	}
	n := bm.CountSet()
	data := make([]T, 0, n)
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
	return &NumericChunk[T]{dtype: c.dtype, data: data, validity: validity, length: n}
}

func (c *NumericChunk[T]) Append(other Chunk) (Chunk, error) {
	o, ok := other.(*NumericChunk[T])
	if !ok {
		return nil, errAppendTypeMismatch
	}
	data := make([]T, 0, c.length+o.length)
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
	return &NumericChunk[T]{dtype: c.dtype, data: data, validity: validity, length: c.length + o.length}, nil
}

func (c *NumericChunk[T]) Hash(hashes []uint64) {
	var buf [8]byte
	hasher := fnv.New64()
	for i, v := range c.data {
		if c.validity != nil && !c.validity.Get(i) {
			hashes[i] ^= hashNull
			continue
		}
		binary.LittleEndian.PutUint64(buf[:], numericBits(v))
		hasher.Write(buf[:])
		hashes[i] ^= hasher.Sum64()
		hasher.Reset()
	}
}

// numericBits reinterprets any Numeric value as a uint64 bit pattern for
// hashing, matching the teacher's approach of feeding fixed-width byte
// representations into fnv rather than a textual representation.
func numericBits[T Numeric](v T) uint64 {
	switch x := any(v).(type) {
	case float32:
		return uint64(math.Float32bits(x))
	case float64:
		return math.Float64bits(x)
	case int8:
		return uint64(uint8(x))
	case int16:
		return uint64(uint16(x))
	case int32:
		return uint64(uint32(x))
	case int64:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	default:
		return 0
	}
}
