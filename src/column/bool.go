package column

import "github.com/arrowkit/arrowkit/src/bitmap"

const (
	hashBoolTrue  = uint64(0x5a320fa8dfcfe3a7)
	hashBoolFalse = uint64(0x1549571b97ff2995)
)

// BoolChunk stores boolean values as a packed bitmap plus an optional
// validity bitmap, following the teacher's ChunkBools representation.
type BoolChunk struct {
	data     *bitmap.Bitmap
	validity *bitmap.Bitmap
	length   int
}

func NewBoolChunk(data *bitmap.Bitmap, validity *bitmap.Bitmap) *BoolChunk {
	return &BoolChunk{data: data, validity: validity, length: data.Len()}
}

func (c *BoolChunk) Dtype() Dtype             { return DtypeBool }
func (c *BoolChunk) Len() int                 { return c.length }
func (c *BoolChunk) Validity() *bitmap.Bitmap { return c.validity }
func (c *BoolChunk) Data() *bitmap.Bitmap     { return c.data }

// Truths returns a clone of the data bitmap with null positions cleared —
// the form the executor needs when a bool column is itself the Filter
// predicate (e.g. `Filter(IsActive = true)`).
func (c *BoolChunk) Truths() *bitmap.Bitmap {
	bm := c.data.Clone()
	if c.validity != nil {
		bm.And(c.validity)
	}
	return bm
}

func (c *BoolChunk) Clone() Chunk {
	return &BoolChunk{data: c.data.Clone(), validity: c.validity.Clone(), length: c.length}
}

func (c *BoolChunk) Prune(bm *bitmap.Bitmap) Chunk {
	if bm.Len() != c.length {
		panic(errPruneLengthMismatch)
	}
	n := bm.CountSet()
	nd := bitmap.New(n, false)
	var nv *bitmap.Bitmap
	idxs := bm.GetSelectedIndices(make([]int, 0, n))
	for outPos, srcPos := range idxs {
		if c.data.Get(srcPos) {
			nd.Set(outPos)
		}
		if c.validity != nil && c.validity.Get(srcPos) {
			if nv == nil {
				nv = bitmap.New(n, false)
			}
			nv.Set(outPos)
		}
	}
	return &BoolChunk{data: nd, validity: nv, length: n}
}

func (c *BoolChunk) Append(other Chunk) (Chunk, error) {
	o, ok := other.(*BoolChunk)
	if !ok {
		return nil, errAppendTypeMismatch
	}
	nd := bitmap.New(c.length+o.length, false)
	for i := 0; i < c.length; i++ {
		if c.data.Get(i) {
			nd.Set(i)
		}
	}
	for i := 0; i < o.length; i++ {
		if o.data.Get(i) {
			nd.Set(c.length + i)
		}
	}
	var nv *bitmap.Bitmap
	if c.validity != nil || o.validity != nil {
		nv = bitmap.New(c.length+o.length, false)
		for i := 0; i < c.length; i++ {
			if c.validity != nil && c.validity.Get(i) {
				nv.Set(i)
			}
		}
		for i := 0; i < o.length; i++ {
			if o.validity != nil && o.validity.Get(i) {
				nv.Set(c.length + i)
			}
		}
	}
	return &BoolChunk{data: nd, validity: nv, length: c.length + o.length}, nil
}

func (c *BoolChunk) Hash(hashes []uint64) {
	for i := range hashes {
		if c.validity != nil && !c.validity.Get(i) {
			hashes[i] ^= hashNull
			continue
		}
		if c.data.Get(i) {
			hashes[i] ^= hashBoolTrue
		} else {
			hashes[i] ^= hashBoolFalse
		}
	}
}
