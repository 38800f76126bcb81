// Package column implements the engine's typed column storage: the logical
// type system, per-column schema, and the columnar chunk representations
// (Arrow-style contiguous value buffers plus an optional validity bitmap)
// that the rest of the engine operates over.
package column

import (
	"errors"
	"fmt"
)

// Dtype denotes the logical type of a column.
type Dtype uint8

const (
	DtypeInvalid Dtype = iota
	DtypeNull
	DtypeBool
	DtypeI8
	DtypeI16
	DtypeI32
	DtypeI64
	DtypeU8
	DtypeU16
	DtypeU32
	DtypeU64
	DtypeF32
	DtypeF64
	DtypeDecimal
	DtypeUtf8
	DtypeDate32
	DtypeDate64
	DtypeTimestamp
	dtypeMax
)

var dtypeNames = [...]string{
	"invalid", "null", "bool",
	"i8", "i16", "i32", "i64",
	"u8", "u16", "u32", "u64",
	"f32", "f64", "decimal",
	"utf8", "date32", "date64", "timestamp",
}

func (dt Dtype) String() string {
	if int(dt) >= len(dtypeNames) {
		return "invalid"
	}
	return dtypeNames[dt]
}

// IsNumeric reports whether values of this type support arithmetic
// comparison and aggregation (Sum/Avg/Min/Max).
func (dt Dtype) IsNumeric() bool {
	switch dt {
	case DtypeI8, DtypeI16, DtypeI32, DtypeI64,
		DtypeU8, DtypeU16, DtypeU32, DtypeU64,
		DtypeF32, DtypeF64, DtypeDecimal,
		DtypeDate32, DtypeDate64, DtypeTimestamp:
		return true
	}
	return false
}

// IsFloatingPoint reports whether the type's zone map must special-case NaN
// (spec.md §4.2: "For columns containing any NaN... the chunk's min/max are
// set so that no chunk is ever excluded").
func (dt Dtype) IsFloatingPoint() bool {
	return dt == DtypeF32 || dt == DtypeF64
}

// MarshalJSON renders a Dtype as its string name, mirroring the teacher's
// column.Dtype JSON behaviour (so schemas round-trip as readable JSON
// instead of bare integers).
func (dt Dtype) MarshalJSON() ([]byte, error) {
	return append(append([]byte{'"'}, []byte(dt.String())...), '"'), nil
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (dt *Dtype) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("column: dtype must be a JSON string")
	}
	name := string(data[1 : len(data)-1])
	for i, n := range dtypeNames {
		if n == name {
			*dt = Dtype(i)
			return nil
		}
	}
	return fmt.Errorf("column: unknown dtype %q", name)
}

// Encoding denotes how a column's values are physically stored.
type Encoding uint8

const (
	// EncodingPlain stores values contiguously with no value sharing.
	EncodingPlain Encoding = iota
	// EncodingDictionary stores an index buffer plus a deduplicated value
	// dictionary; equality predicates resolve the constant against the
	// dictionary once and then compare indices (spec.md §4.3).
	EncodingDictionary
	// EncodingRunLength stores (value, runLength) pairs; decoded lazily per
	// chunk range by consumers that need individual row values.
	EncodingRunLength
)

func (e Encoding) String() string {
	switch e {
	case EncodingDictionary:
		return "dictionary"
	case EncodingRunLength:
		return "run-length"
	default:
		return "plain"
	}
}

// Schema describes one column: its name, logical type, nullability and
// physical encoding.
type Schema struct {
	Name     string   `json:"name"`
	Dtype    Dtype    `json:"dtype"`
	Nullable bool     `json:"nullable"`
	Encoding Encoding `json:"encoding"`
}

// TableSchema is the ordered schema of a whole snapshot.
type TableSchema []Schema

var errColumnNotFound = errors.New("column: no such column in schema")

// LocateColumn returns the index and Schema of the named column, or
// errColumnNotFound. Column-index resolution happens exactly once, at plan
// construction time — the resolved index is then an immutable field of the
// plan node, never a mutable field of a predicate (see predicate package
// doc comment for why that distinction matters).
func (ts TableSchema) LocateColumn(name string) (int, Schema, error) {
	for i, s := range ts {
		if s.Name == name {
			return i, s, nil
		}
	}
	return -1, Schema{}, fmt.Errorf("%w: %s", errColumnNotFound, name)
}

// Names returns the ordered column names.
func (ts TableSchema) Names() []string {
	names := make([]string, len(ts))
	for i, s := range ts {
		names[i] = s.Name
	}
	return names
}
