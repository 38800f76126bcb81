package column

// ValueAt decodes the logical value of chunk at row i as an any, regardless
// of concrete chunk type or string encoding. ok is false when the row is
// null. This is the renderer-facing decode path (cold, one row at a time);
// predicate evaluation and aggregation never call this, since both operate
// directly on typed buffers for speed (see predicate/numeric.go, exec's
// aggregation kernels).
func ValueAt(c Chunk, i int) (any, bool) {
	if v := c.Validity(); v != nil && !v.Get(i) {
		return nil, false
	}
	switch cc := c.(type) {
	case *NumericChunk[int8]:
		return cc.Values()[i], true
	case *NumericChunk[int16]:
		return cc.Values()[i], true
	case *NumericChunk[int32]:
		return cc.Values()[i], true
	case *NumericChunk[int64]:
		return cc.Values()[i], true
	case *NumericChunk[uint8]:
		return cc.Values()[i], true
	case *NumericChunk[uint16]:
		return cc.Values()[i], true
	case *NumericChunk[uint32]:
		return cc.Values()[i], true
	case *NumericChunk[uint64]:
		return cc.Values()[i], true
	case *NumericChunk[float32]:
		return cc.Values()[i], true
	case *NumericChunk[float64]:
		return cc.Values()[i], true
	case *DecimalChunk:
		return cc.NthValue(i), true
	case *StringChunk:
		return cc.NthValue(i), true
	case *BoolChunk:
		return cc.Data().Get(i), true
	case *NullChunk:
		return nil, false
	default:
		return nil, false
	}
}
