package column

import (
	"fmt"

	"github.com/arrowkit/arrowkit/src/bitmap"
)

// NewChunkFromSchema allocates an empty, zero-length chunk of the dtype
// named by s — used by the snapshot builder to seed a column before
// appending batches onto it, mirroring the teacher's newChunkFromSchema.
func NewChunkFromSchema(s Schema) (Chunk, error) {
	switch s.Dtype {
	case DtypeNull:
		return NewNullChunk(0), nil
	case DtypeBool:
		return NewBoolChunk(bitmap.New(0, false), nil), nil
	case DtypeI8:
		return NewNumericChunk[int8](DtypeI8, nil, nil), nil
	case DtypeI16:
		return NewNumericChunk[int16](DtypeI16, nil, nil), nil
	case DtypeI32:
		return NewNumericChunk[int32](DtypeI32, nil, nil), nil
	case DtypeI64:
		return NewNumericChunk[int64](DtypeI64, nil, nil), nil
	case DtypeU8:
		return NewNumericChunk[uint8](DtypeU8, nil, nil), nil
	case DtypeU16:
		return NewNumericChunk[uint16](DtypeU16, nil, nil), nil
	case DtypeU32:
		return NewNumericChunk[uint32](DtypeU32, nil, nil), nil
	case DtypeU64:
		return NewNumericChunk[uint64](DtypeU64, nil, nil), nil
	case DtypeF32:
		return NewNumericChunk[float32](DtypeF32, nil, nil), nil
	case DtypeF64:
		return NewNumericChunk[float64](DtypeF64, nil, nil), nil
	case DtypeDecimal:
		return NewDecimalChunk(0, nil, nil), nil
	case DtypeUtf8:
		return NewPlainStringChunk(nil, []uint32{0}, nil), nil
	case DtypeDate32:
		return NewDate32Chunk(nil, nil), nil
	case DtypeDate64:
		return NewDate64Chunk(nil, nil), nil
	case DtypeTimestamp:
		return NewTimestampChunk(nil, nil), nil
	default:
		return nil, fmt.Errorf("column: no chunk constructor for dtype %s", s.Dtype)
	}
}
