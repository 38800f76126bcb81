package column

import (
	"errors"

	"github.com/arrowkit/arrowkit/src/bitmap"
)

var (
	errAppendTypeMismatch = errors.New("column: cannot append chunks of differing concrete types")
	errPruneLengthMismatch = errors.New("column: pruning bitmap does not align with chunk length")
)

// Chunk is one fixed-size, contiguous slice of a column: a constant-type
// value buffer plus an optional validity bitmap (spec.md §3 ColumnRef /
// §2 Column store). Chunks are immutable once built by the write path;
// the query engine only ever produces *new* chunks (Prune, Append) rather
// than mutating an existing one in place, so a Chunk shared across
// concurrent queries is always safe to read.
type Chunk interface {
	// Dtype returns this chunk's logical type.
	Dtype() Dtype
	// Len returns the number of logical rows in this chunk.
	Len() int
	// Validity returns the validity bitmap (nil means "no nulls", matching
	// Arrow's convention of an absent validity buffer).
	Validity() *bitmap.Bitmap
	// Prune returns a new chunk containing only the rows selected by bm.
	// bm must have the same length as this chunk.
	Prune(bm *bitmap.Bitmap) Chunk
	// Append returns a new chunk with other's rows appended after this
	// chunk's rows. other must share this chunk's concrete type.
	Append(other Chunk) (Chunk, error)
	// Clone returns a deep, independent copy.
	Clone() Chunk
	// Hash XORs a hash of each row's value into hashes (used by group-by
	// partitioning); hashes must have length Len().
	Hash(hashes []uint64)
}

// NullChunk represents a chunk where every row is null; only a row count
// is carried, mirroring the teacher's ChunkNulls.
type NullChunk struct {
	length int
}

func NewNullChunk(length int) *NullChunk { return &NullChunk{length: length} }

func (c *NullChunk) Dtype() Dtype               { return DtypeNull }
func (c *NullChunk) Len() int                   { return c.length }
func (c *NullChunk) Validity() *bitmap.Bitmap   { return nil }
func (c *NullChunk) Clone() Chunk               { return &NullChunk{length: c.length} }
func (c *NullChunk) Hash(hashes []uint64) {
	for i := range hashes {
		hashes[i] ^= hashNull
	}
}
func (c *NullChunk) Prune(bm *bitmap.Bitmap) Chunk {
	if bm.Len() != c.length {
		panic(errPruneLengthMismatch)
	}
	return &NullChunk{length: bm.CountSet()}
}
func (c *NullChunk) Append(other Chunk) (Chunk, error) {
	o, ok := other.(*NullChunk)
	if !ok {
		return nil, errAppendTypeMismatch
	}
	return &NullChunk{length: c.length + o.length}, nil
}

const hashNull = uint64(0xe96766e0d6221951)
