package queryresult

// Renderer is the engine's single outbound strategy interface (spec.md
// §4.9): a collaborator supplies Render and the engine hands it a
// finished QueryResult, never constructing rows on its own behalf.
type Renderer[T any] interface {
	Render(result *QueryResult) (T, error)
}

// Row is one materialized row, column values in output-schema order.
type Row []any

// RowListRenderer materializes every selected row into a slice, in
// ascending row-position order.
type RowListRenderer struct{}

func (RowListRenderer) Render(result *QueryResult) ([]Row, error) {
	return renderRows(result), nil
}

// RowArrayRenderer is identical to RowListRenderer but returns a fixed-size
// array-backed slice pre-sized to the selection's cardinality — useful to
// collaborators that want to avoid append-driven reallocation themselves.
type RowArrayRenderer struct{}

func (RowArrayRenderer) Render(result *QueryResult) ([]Row, error) {
	rows := make([]Row, 0, result.Selection.Len())
	rows = append(rows, renderRows(result)...)
	return rows, nil
}

func renderRows(result *QueryResult) []Row {
	positions := result.Selection.RowIndices()
	cols := result.columnIndices()
	rows := make([]Row, 0, len(positions))
	for _, pos := range positions {
		row := make(Row, len(cols))
		for outIdx := range cols {
			v, ok := result.ValueAt(outIdx, pos)
			if !ok {
				v = nil
			}
			row[outIdx] = v
		}
		rows = append(rows, row)
	}
	return rows
}

// LazyRowSequence renders one row at a time on demand via Next, avoiding
// materializing the whole selection up front — useful for a streaming
// consumer that may stop early (e.g. a terminal First()/Any()).
type LazyRowSequence struct {
	result    *QueryResult
	positions []int
	cursor    int
}

// NewLazyRowSequence builds a sequence over result; it does not implement
// Renderer directly since it returns a stateful iterator rather than a
// single value, but a thin Renderer adapter is one call away if needed.
func NewLazyRowSequence(result *QueryResult) *LazyRowSequence {
	return &LazyRowSequence{result: result, positions: result.Selection.RowIndices()}
}

// Next returns the next row, or ok=false once exhausted.
func (s *LazyRowSequence) Next() (row Row, ok bool) {
	if s.cursor >= len(s.positions) {
		return nil, false
	}
	pos := s.positions[s.cursor]
	s.cursor++
	cols := s.result.columnIndices()
	row = make(Row, len(cols))
	for outIdx := range cols {
		v, valid := s.result.ValueAt(outIdx, pos)
		if !valid {
			v = nil
		}
		row[outIdx] = v
	}
	return row, true
}

// ColumnarBatch is a projection-aware, column-major materialization: one
// []any per output column rather than one Row per selected row.
type ColumnarBatch struct {
	Columns [][]any
}

// ColumnarBatchRenderer materializes column-major output. It always copies
// every selected value through QueryResult.ValueAt, including for a full
// scan with no filter and no projection; it never returns the store's
// columns themselves. Zero-copy columnar access means reading
// QueryResult.Store directly when IsZeroCopyEligible reports true.
type ColumnarBatchRenderer struct{}

func (ColumnarBatchRenderer) Render(result *QueryResult) (*ColumnarBatch, error) {
	positions := result.Selection.RowIndices()
	cols := result.columnIndices()
	batch := &ColumnarBatch{Columns: make([][]any, len(cols))}
	for outIdx := range cols {
		col := make([]any, len(positions))
		for i, pos := range positions {
			v, ok := result.ValueAt(outIdx, pos)
			if !ok {
				v = nil
			}
			col[i] = v
		}
		batch.Columns[outIdx] = col
	}
	return batch, nil
}

// IsZeroCopyEligible reports whether result's selection is a full-range
// scan over the entire backing store with no projection narrowing — the
// one case spec.md §4.7 calls out as returning "the original columnar
// batch" rather than materializing anything.
func IsZeroCopyEligible(result *QueryResult) bool {
	return result.Selection.Kind == SelectionRange &&
		result.Selection.Start == 0 &&
		uint64(result.Selection.End) == result.Store.RowCount() &&
		result.ProjectedColumns == nil
}
