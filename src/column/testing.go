package column

// ChunksEqual reports whether two chunks hold the same dtype, length,
// validity and values — used by table-driven tests across this package
// and the exec package to assert on materialized results without
// depending on a chunk's internal encoding.
func ChunksEqual(a, b Chunk) bool {
	if a.Dtype() != b.Dtype() || a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		av := a.Validity() == nil || a.Validity().Get(i)
		bv := b.Validity() == nil || b.Validity().Get(i)
		if av != bv {
			return false
		}
		if !av {
			continue
		}
		if !valuesEqual(a, b, i) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b Chunk, i int) bool {
	switch ac := a.(type) {
	case *StringChunk:
		bc := b.(*StringChunk)
		return ac.NthValue(i) == bc.NthValue(i)
	case *BoolChunk:
		bc := b.(*BoolChunk)
		return ac.Data().Get(i) == bc.Data().Get(i)
	case *DecimalChunk:
		bc := b.(*DecimalChunk)
		return ac.NthValue(i) == bc.NthValue(i)
	case *NullChunk:
		return true
	case *NumericChunk[int8]:
		return ac.Values()[i] == b.(*NumericChunk[int8]).Values()[i]
	case *NumericChunk[int16]:
		return ac.Values()[i] == b.(*NumericChunk[int16]).Values()[i]
	case *NumericChunk[int32]:
		return ac.Values()[i] == b.(*NumericChunk[int32]).Values()[i]
	case *NumericChunk[int64]:
		return ac.Values()[i] == b.(*NumericChunk[int64]).Values()[i]
	case *NumericChunk[uint8]:
		return ac.Values()[i] == b.(*NumericChunk[uint8]).Values()[i]
	case *NumericChunk[uint16]:
		return ac.Values()[i] == b.(*NumericChunk[uint16]).Values()[i]
	case *NumericChunk[uint32]:
		return ac.Values()[i] == b.(*NumericChunk[uint32]).Values()[i]
	case *NumericChunk[uint64]:
		return ac.Values()[i] == b.(*NumericChunk[uint64]).Values()[i]
	case *NumericChunk[float32]:
		return ac.Values()[i] == b.(*NumericChunk[float32]).Values()[i]
	case *NumericChunk[float64]:
		return ac.Values()[i] == b.(*NumericChunk[float64]).Values()[i]
	default:
		return false
	}
}
