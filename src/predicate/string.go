package predicate

import (
	"strings"

	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/zonemap"
)

// StringEquality matches rows whose string value equals constant. Against a
// dictionary-encoded chunk, the constant is resolved to a dictionary index
// exactly once per chunk (via Dictionary.Find's lazily-built lookup map),
// and every row thereafter is an int32 index compare rather than a byte
// compare — this is the "resolve once, compare indices" path spec.md §4.3
// requires for dictionary-encoded columns.
type StringEquality struct {
	columnIndex int
	constant    string
}

func NewStringEquality(columnIndex int, constant string) *StringEquality {
	return &StringEquality{columnIndex: columnIndex, constant: constant}
}

func (p *StringEquality) ColumnIndex() int { return p.columnIndex }
func (p *StringEquality) Kind() Kind       { return KindStringEquality }
func (p *StringEquality) Constant() string { return p.constant }

func (p *StringEquality) EstimatedSelectivity() float64 { return baseRateSelectivity(KindStringEquality) }

// MayContainMatches: no zone map is built over string columns, so this
// always returns true.
func (p *StringEquality) MayContainMatches(entry zonemap.Entry, hasZoneMap bool) bool { return true }

func (p *StringEquality) Evaluate(chunk column.Chunk, sel *bitmap.Bitmap, start, end int) {
	sc, ok := chunk.(*column.StringChunk)
	if !ok {
		for i := start; i < end; i++ {
			sel.Clear(i)
		}
		return
	}
	validity := sc.Validity()
	valid := func(i int) bool { return validity == nil || validity.Get(i) }

	if sc.StringEncoding() == column.EncodingDictionary {
		dict := sc.Dictionary()
		want, found := dict.Find(p.constant)
		if !found {
			// the constant isn't in the dictionary at all: no row in this
			// chunk can possibly match, so the whole range is cleared
			// without touching the index buffer.
			for i := start; i < end; i++ {
				sel.Clear(i)
			}
			return
		}
		indices := sc.Indices()
		for i := start; i < end; i++ {
			if !valid(i) || indices[i] != want {
				sel.Clear(i)
			}
		}
		return
	}

	for i := start; i < end; i++ {
		if !valid(i) || sc.NthValue(i) != p.constant {
			sel.Clear(i)
		}
	}
}

// evaluateStringTest is the shared evaluator for startsWith/
// endsWith/contains — these never get a dictionary-index fast path since
// matching is on a substring, not full equality, so every row must decode
// through StringChunk.NthValue regardless of encoding.
func evaluateStringTest(chunk column.Chunk, sel *bitmap.Bitmap, start, end int, test func(v string) bool) {
	sc, ok := chunk.(*column.StringChunk)
	if !ok {
		for i := start; i < end; i++ {
			sel.Clear(i)
		}
		return
	}
	validity := sc.Validity()
	for i := start; i < end; i++ {
		if (validity != nil && !validity.Get(i)) || !test(sc.NthValue(i)) {
			sel.Clear(i)
		}
	}
}

// StringStartsWith matches rows whose string value has the given prefix.
type StringStartsWith struct {
	columnIndex int
	prefix      string
}

func NewStringStartsWith(columnIndex int, prefix string) *StringStartsWith {
	return &StringStartsWith{columnIndex: columnIndex, prefix: prefix}
}

func (p *StringStartsWith) ColumnIndex() int { return p.columnIndex }
func (p *StringStartsWith) Kind() Kind       { return KindStringStartsWith }
func (p *StringStartsWith) Prefix() string   { return p.prefix }
func (p *StringStartsWith) EstimatedSelectivity() float64 {
	return baseRateSelectivity(KindStringStartsWith)
}
func (p *StringStartsWith) MayContainMatches(entry zonemap.Entry, hasZoneMap bool) bool { return true }
func (p *StringStartsWith) Evaluate(chunk column.Chunk, sel *bitmap.Bitmap, start, end int) {
	evaluateStringTest(chunk, sel, start, end, func(v string) bool { return strings.HasPrefix(v, p.prefix) })
}

// StringEndsWith matches rows whose string value has the given suffix.
type StringEndsWith struct {
	columnIndex int
	suffix      string
}

func NewStringEndsWith(columnIndex int, suffix string) *StringEndsWith {
	return &StringEndsWith{columnIndex: columnIndex, suffix: suffix}
}

func (p *StringEndsWith) ColumnIndex() int { return p.columnIndex }
func (p *StringEndsWith) Kind() Kind       { return KindStringEndsWith }
func (p *StringEndsWith) Suffix() string   { return p.suffix }
func (p *StringEndsWith) EstimatedSelectivity() float64 {
	return baseRateSelectivity(KindStringEndsWith)
}
func (p *StringEndsWith) MayContainMatches(entry zonemap.Entry, hasZoneMap bool) bool { return true }
func (p *StringEndsWith) Evaluate(chunk column.Chunk, sel *bitmap.Bitmap, start, end int) {
	evaluateStringTest(chunk, sel, start, end, func(v string) bool { return strings.HasSuffix(v, p.suffix) })
}

// StringContains matches rows whose string value contains the given
// substring.
type StringContains struct {
	columnIndex int
	substr      string
}

func NewStringContains(columnIndex int, substr string) *StringContains {
	return &StringContains{columnIndex: columnIndex, substr: substr}
}

func (p *StringContains) ColumnIndex() int { return p.columnIndex }
func (p *StringContains) Kind() Kind       { return KindStringContains }
func (p *StringContains) Substr() string   { return p.substr }
func (p *StringContains) EstimatedSelectivity() float64 {
	return baseRateSelectivity(KindStringContains)
}
func (p *StringContains) MayContainMatches(entry zonemap.Entry, hasZoneMap bool) bool { return true }
func (p *StringContains) Evaluate(chunk column.Chunk, sel *bitmap.Bitmap, start, end int) {
	evaluateStringTest(chunk, sel, start, end, func(v string) bool { return strings.Contains(v, p.substr) })
}
