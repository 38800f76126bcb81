package column

import "github.com/arrowkit/arrowkit/src/bitmap"

// Date32Chunk stores calendar dates as days since the Unix epoch, and
// Date64/TimestampChunk store milliseconds since the epoch — the same
// fixed-width integer representations Arrow uses for these logical types.
// All three are directly expressible as NumericChunk instantiations, since
// "date" and "timestamp" are encoding decisions over an int32/int64 buffer
// rather than a distinct physical layout; the type aliases below exist so
// call sites read in terms of the logical type rather than its backing
// width.
type (
	Date32Chunk    = NumericChunk[int32]
	Date64Chunk    = NumericChunk[int64]
	TimestampChunk = NumericChunk[int64]
)

// NewDate32Chunk builds a Date32 column from days-since-epoch values.
func NewDate32Chunk(days []int32, validity *bitmap.Bitmap) *Date32Chunk {
	return NewNumericChunk(DtypeDate32, days, validity)
}

// NewDate64Chunk builds a Date64 column from milliseconds-since-epoch
// values truncated to a calendar day.
func NewDate64Chunk(millis []int64, validity *bitmap.Bitmap) *Date64Chunk {
	return NewNumericChunk(DtypeDate64, millis, validity)
}

// NewTimestampChunk builds a Timestamp column from milliseconds-since-epoch
// values with full time-of-day resolution.
func NewTimestampChunk(millis []int64, validity *bitmap.Bitmap) *TimestampChunk {
	return NewNumericChunk(DtypeTimestamp, millis, validity)
}
