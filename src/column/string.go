package column

import (
	"hash/fnv"
	"sync"

	"github.com/arrowkit/arrowkit/src/bitmap"
)

// Dictionary is the deduplicated value table backing a dictionary-encoded
// string column (spec.md §3 ColumnRef: "for dictionary-encoded columns, an
// index buffer plus a value dictionary").
type Dictionary struct {
	values []string
	lookup map[string]int32 // built lazily on first Find
	once   sync.Once        // guards the lazy build for concurrent readers
}

func NewDictionary(values []string) *Dictionary {
	return &Dictionary{values: values}
}

func (d *Dictionary) Len() int { return len(d.values) }

func (d *Dictionary) Value(idx int32) string { return d.values[idx] }

// Find performs the single O(|dict|) lookup spec.md §4.3 calls for: once a
// string-equality predicate resolves its constant to a dictionary index,
// every row comparison downstream is an index compare, never touching the
// value buffer again.
func (d *Dictionary) Find(s string) (idx int32, ok bool) {
	d.once.Do(func() {
		d.lookup = make(map[string]int32, len(d.values))
		for i, v := range d.values {
			d.lookup[v] = int32(i)
		}
	})
	i, ok := d.lookup[s]
	return i, ok
}

// StringChunk stores string values under one of three encodings: Plain
// (contiguous bytes + offsets, as the teacher's ChunkStrings), Dictionary
// (an index buffer against a shared Dictionary), or RunLength (value+count
// run pairs — used by Scenario B's "10000 x A, 10000 x B, 10000 x C").
type StringChunk struct {
	encoding Encoding
	validity *bitmap.Bitmap
	length   int

	// EncodingPlain
	data    []byte
	offsets []uint32

	// EncodingDictionary
	dict    *Dictionary
	indices []int32

	// EncodingRunLength
	runValues  []string
	runLengths []int32
}

func NewPlainStringChunk(data []byte, offsets []uint32, validity *bitmap.Bitmap) *StringChunk {
	return &StringChunk{encoding: EncodingPlain, data: data, offsets: offsets, validity: validity, length: len(offsets) - 1}
}

func NewDictionaryStringChunk(dict *Dictionary, indices []int32, validity *bitmap.Bitmap) *StringChunk {
	return &StringChunk{encoding: EncodingDictionary, dict: dict, indices: indices, validity: validity, length: len(indices)}
}

func NewRunLengthStringChunk(values []string, lengths []int32, validity *bitmap.Bitmap) *StringChunk {
	total := 0
	for _, l := range lengths {
		total += int(l)
	}
	return &StringChunk{encoding: EncodingRunLength, runValues: values, runLengths: lengths, validity: validity, length: total}
}

func (c *StringChunk) Dtype() Dtype             { return DtypeUtf8 }
func (c *StringChunk) Len() int                 { return c.length }
func (c *StringChunk) Validity() *bitmap.Bitmap { return c.validity }
func (c *StringChunk) StringEncoding() Encoding  { return c.encoding }
func (c *StringChunk) Dictionary() *Dictionary   { return c.dict }

// Indices exposes the raw dictionary index buffer; only meaningful when
// StringEncoding() == EncodingDictionary.
func (c *StringChunk) Indices() []int32 { return c.indices }

// NthValue decodes the value at logical row i, regardless of encoding. RLE
// decoding walks the runs from the start, O(runs) per call; callers
// on a hot per-row path (predicate evaluation) should prefer the
// encoding-specific fast paths in the predicate package instead.
func (c *StringChunk) NthValue(i int) string {
	switch c.encoding {
	case EncodingDictionary:
		return c.dict.Value(c.indices[i])
	case EncodingRunLength:
		pos := 0
		for ri, l := range c.runLengths {
			if i < pos+int(l) {
				return c.runValues[ri]
			}
			pos += int(l)
		}
		panic("column: row index out of range for run-length chunk")
	default:
		return string(c.data[c.offsets[i]:c.offsets[i+1]])
	}
}

func (c *StringChunk) Clone() Chunk {
	switch c.encoding {
	case EncodingDictionary:
		idx := make([]int32, len(c.indices))
		copy(idx, c.indices)
		return &StringChunk{encoding: EncodingDictionary, dict: c.dict, indices: idx, validity: c.validity.Clone(), length: c.length}
	case EncodingRunLength:
		rv := make([]string, len(c.runValues))
		copy(rv, c.runValues)
		rl := make([]int32, len(c.runLengths))
		copy(rl, c.runLengths)
		return &StringChunk{encoding: EncodingRunLength, runValues: rv, runLengths: rl, validity: c.validity.Clone(), length: c.length}
	default:
		data := make([]byte, len(c.data))
		copy(data, c.data)
		offsets := make([]uint32, len(c.offsets))
		copy(offsets, c.offsets)
		return &StringChunk{encoding: EncodingPlain, data: data, offsets: offsets, validity: c.validity.Clone(), length: c.length}
	}
}

// decoded materializes this chunk as a plain-encoded chunk. Dictionary and
// RLE chunks are decoded on demand for Prune/Append, which are cold-path
// operations relative to predicate evaluation (the hot path never
// decodes — see predicate.StringEquality).
func (c *StringChunk) decoded() *StringChunk {
	if c.encoding == EncodingPlain {
		return c
	}
	offsets := make([]uint32, 1, c.length+1)
	data := make([]byte, 0, c.length*8)
	for i := 0; i < c.length; i++ {
		v := c.NthValue(i)
		data = append(data, v...)
		offsets = append(offsets, offsets[len(offsets)-1]+uint32(len(v)))
	}
	return &StringChunk{encoding: EncodingPlain, data: data, offsets: offsets, validity: c.validity, length: c.length}
}

func (c *StringChunk) Prune(bm *bitmap.Bitmap) Chunk {
	if bm.Len() != c.length {
		panic(errPruneLengthMismatch)
	}
	plain := c.decoded()
	n := bm.CountSet()
	offsets := make([]uint32, 1, n+1)
	data := make([]byte, 0, n*8)
	var validity *bitmap.Bitmap
	idxs := bm.GetSelectedIndices(make([]int, 0, n))
	for outPos, srcPos := range idxs {
		v := plain.data[plain.offsets[srcPos]:plain.offsets[srcPos+1]]
		data = append(data, v...)
		offsets = append(offsets, offsets[len(offsets)-1]+uint32(len(v)))
		if plain.validity != nil && plain.validity.Get(srcPos) {
			if validity == nil {
				validity = bitmap.New(n, false)
			}
			validity.Set(outPos)
		}
	}
	return &StringChunk{encoding: EncodingPlain, data: data, offsets: offsets, validity: validity, length: n}
}

func (c *StringChunk) Append(other Chunk) (Chunk, error) {
	o, ok := other.(*StringChunk)
	if !ok {
		return nil, errAppendTypeMismatch
	}
	a, b := c.decoded(), o.decoded()
	data := make([]byte, 0, len(a.data)+len(b.data))
	data = append(data, a.data...)
	data = append(data, b.data...)

	offsets := make([]uint32, 0, len(a.offsets)+len(b.offsets)-1)
	offsets = append(offsets, a.offsets...)
	base := a.offsets[len(a.offsets)-1]
	for _, off := range b.offsets[1:] {
		offsets = append(offsets, base+off)
	}

	var validity *bitmap.Bitmap
	if a.validity != nil || b.validity != nil {
		validity = bitmap.New(a.length+b.length, false)
		for i := 0; i < a.length; i++ {
			if a.validity != nil && a.validity.Get(i) {
				validity.Set(i)
			}
		}
		for i := 0; i < b.length; i++ {
			if b.validity != nil && b.validity.Get(i) {
				validity.Set(a.length + i)
			}
		}
	}
	return &StringChunk{encoding: EncodingPlain, data: data, offsets: offsets, validity: validity, length: a.length + b.length}, nil
}

func (c *StringChunk) Hash(hashes []uint64) {
	hasher := fnv.New64()
	for i := 0; i < c.length; i++ {
		if c.validity != nil && !c.validity.Get(i) {
			hashes[i] ^= hashNull
			continue
		}
		v := c.NthValue(i)
		hasher.Write([]byte(v))
		hashes[i] ^= hasher.Sum64()
		hasher.Reset()
	}
}
