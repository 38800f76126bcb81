package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/snapshot"
)

// loadCSVSnapshot reads path (header row + data rows) and infers one
// column per header: f64 when every value in the column parses as a
// float, utf8 otherwise. This is a demo-only inference pass; a real
// deployment would adapt an existing columnar store to snapshot.Store
// instead of building one from a CSV file.
func loadCSVSnapshot(path string) (*snapshot.InMemory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	numeric := make([]bool, len(header))
	for i := range header {
		numeric[i] = true
	}
	for _, row := range rows {
		for i, v := range row {
			if i >= len(numeric) || !numeric[i] {
				continue
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				numeric[i] = false
			}
		}
	}

	schema := make(column.TableSchema, len(header))
	chunks := make([]column.Chunk, len(header))
	for i, name := range header {
		if numeric[i] {
			schema[i] = column.Schema{Name: name, Dtype: column.DtypeF64}
			chunks[i] = buildNumericColumn(rows, i)
		} else {
			schema[i] = column.Schema{Name: name, Dtype: column.DtypeUtf8}
			chunks[i] = buildStringColumn(rows, i)
		}
	}
	return snapshot.NewInMemory(schema, chunks), nil
}

func buildNumericColumn(rows [][]string, col int) column.Chunk {
	values := make([]float64, len(rows))
	validity := bitmap.New(len(rows), true)
	for i, row := range rows {
		v, err := strconv.ParseFloat(row[col], 64)
		if err != nil {
			validity.Clear(i)
			continue
		}
		values[i] = v
	}
	return column.NewNumericChunk(column.DtypeF64, values, validity)
}

func buildStringColumn(rows [][]string, col int) column.Chunk {
	var data []byte
	offsets := make([]uint32, len(rows)+1)
	validity := bitmap.New(len(rows), true)
	for i, row := range rows {
		if col >= len(row) || row[col] == "" {
			validity.Clear(i)
		} else {
			data = append(data, row[col]...)
		}
		offsets[i+1] = uint32(len(data))
	}
	return column.NewPlainStringChunk(data, offsets, validity)
}
