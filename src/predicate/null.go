package predicate

import (
	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/zonemap"
)

// IsNull matches rows where the bound column is null.
type IsNull struct{ columnIndex int }

func NewIsNull(columnIndex int) *IsNull { return &IsNull{columnIndex: columnIndex} }

func (p *IsNull) ColumnIndex() int           { return p.columnIndex }
func (p *IsNull) Kind() Kind                 { return KindIsNull }
func (p *IsNull) EstimatedSelectivity() float64 { return baseRateSelectivity(KindIsNull) }

// MayContainMatches: an allNull chunk definitely contains matches; a chunk
// whose zone map entry is not marked allNull might still contain some nulls
// (zone maps only track min/max/allNull, not a null count), so this is
// conservative and always returns true unless there's no zone map at all,
// in which case it's also true — IsNull is therefore effectively un-prunable
// by a min/max zone map, matching spec.md §4.2's explicit carve-out for
// "IsNull keeps it" when a chunk is allNull.
func (p *IsNull) MayContainMatches(entry zonemap.Entry, hasZoneMap bool) bool { return true }

func (p *IsNull) Evaluate(chunk column.Chunk, sel *bitmap.Bitmap, start, end int) {
	validity := chunk.Validity()
	if validity == nil {
		for i := start; i < end; i++ {
			sel.Clear(i)
		}
		return
	}
	for i := start; i < end; i++ {
		if validity.Get(i) {
			sel.Clear(i)
		}
	}
}

// IsNotNull matches rows where the bound column is not null.
type IsNotNull struct{ columnIndex int }

func NewIsNotNull(columnIndex int) *IsNotNull { return &IsNotNull{columnIndex: columnIndex} }

func (p *IsNotNull) ColumnIndex() int           { return p.columnIndex }
func (p *IsNotNull) Kind() Kind                 { return KindIsNotNull }
func (p *IsNotNull) EstimatedSelectivity() float64 { return baseRateSelectivity(KindIsNotNull) }

// MayContainMatches: an allNull chunk can be dropped entirely, since
// IsNotNull can never match any of its rows (spec.md §4.2: "IsNotNull drops
// it").
func (p *IsNotNull) MayContainMatches(entry zonemap.Entry, hasZoneMap bool) bool {
	if !hasZoneMap {
		return true
	}
	return !entry.AllNull
}

func (p *IsNotNull) Evaluate(chunk column.Chunk, sel *bitmap.Bitmap, start, end int) {
	validity := chunk.Validity()
	if validity == nil {
		return
	}
	for i := start; i < end; i++ {
		if !validity.Get(i) {
			sel.Clear(i)
		}
	}
}
