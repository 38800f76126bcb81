package exec

import (
	"fmt"
	"strings"

	"github.com/arrowkit/arrowkit/src/column"
)

// DistinctPositions removes rows whose full-row value tuple (across every
// column in columns) duplicates one already kept, preserving the
// insertion (ascending position) order of the first occurrence of each
// distinct row (spec.md §4.8: "row order after Distinct is the order rows
// first appeared in the upstream selection").
func DistinctPositions(positions []int, columns []column.Chunk) []int {
	seen := make(map[string]struct{}, len(positions))
	out := make([]int, 0, len(positions))
	var b strings.Builder
	for _, pos := range positions {
		b.Reset()
		for i, c := range columns {
			if i > 0 {
				b.WriteByte('\x1f')
			}
			v, valid := column.ValueAt(c, pos)
			if !valid {
				b.WriteString("\x00NULL")
				continue
			}
			fmt.Fprintf(&b, "%v", v)
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, pos)
	}
	return out
}
