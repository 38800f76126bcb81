package predicate

import (
	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/zonemap"
)

// BoolWant is which boolean state a BoolTest predicate matches.
type BoolWant int

const (
	WantTrue BoolWant = iota
	WantFalse
	WantNull
)

// BoolTest matches rows of a boolean column against true, false, or null.
type BoolTest struct {
	columnIndex int
	want        BoolWant
}

func NewBoolTest(columnIndex int, want BoolWant) *BoolTest {
	return &BoolTest{columnIndex: columnIndex, want: want}
}

func (p *BoolTest) ColumnIndex() int { return p.columnIndex }
func (p *BoolTest) Kind() Kind       { return KindBoolTest }
func (p *BoolTest) Want() BoolWant   { return p.want }

// EstimatedSelectivity: true-test and false-test default to ≈0.5 since
// there is no zone map for boolean columns to refine the estimate from.
func (p *BoolTest) EstimatedSelectivity() float64 { return 0.5 }

// MayContainMatches: no zone map is ever built over boolean columns
// (spec.md §4.2), so this always returns true.
func (p *BoolTest) MayContainMatches(entry zonemap.Entry, hasZoneMap bool) bool { return true }

func (p *BoolTest) Evaluate(chunk column.Chunk, sel *bitmap.Bitmap, start, end int) {
	bc, ok := chunk.(*column.BoolChunk)
	if !ok {
		for i := start; i < end; i++ {
			sel.Clear(i)
		}
		return
	}
	validity := bc.Validity()
	data := bc.Data()
	for i := start; i < end; i++ {
		isNull := validity != nil && !validity.Get(i)
		var matches bool
		switch p.want {
		case WantNull:
			matches = isNull
		case WantTrue:
			matches = !isNull && data.Get(i)
		case WantFalse:
			matches = !isNull && !data.Get(i)
		}
		if !matches {
			sel.Clear(i)
		}
	}
}
