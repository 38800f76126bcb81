package column

import (
	"errors"
	"math"
	"testing"

	"github.com/arrowkit/arrowkit/src/bitmap"
)

func TestDecimal64Float64(t *testing.T) {
	d := Decimal64{Value: 12345, Scale: 2}
	if got := d.Float64(); math.Abs(got-123.45) > 1e-9 {
		t.Errorf("Float64() = %v, want 123.45", got)
	}
}

func TestSumDecimalBasic(t *testing.T) {
	c := NewDecimalChunk(2, []int64{100, 200, 300}, nil)
	bm := bitmap.New(3, true)
	sum, err := SumDecimal(c, bm)
	if err != nil {
		t.Fatalf("SumDecimal: %v", err)
	}
	if sum.Value != 600 || sum.Scale != 2 {
		t.Errorf("sum = %+v, want {600 2}", sum)
	}
}

func TestSumDecimalSkipsNulls(t *testing.T) {
	validity := bitmap.New(3, true)
	validity.Clear(1)
	c := NewDecimalChunk(2, []int64{100, 999999, 300}, validity)
	bm := bitmap.New(3, true)
	sum, err := SumDecimal(c, bm)
	if err != nil {
		t.Fatalf("SumDecimal: %v", err)
	}
	if sum.Value != 400 {
		t.Errorf("sum.Value = %d, want 400", sum.Value)
	}
}

func TestSumDecimalRespectsSelection(t *testing.T) {
	c := NewDecimalChunk(0, []int64{10, 20, 30}, nil)
	bm := bitmap.New(3, false)
	bm.Set(0)
	bm.Set(2)
	sum, err := SumDecimal(c, bm)
	if err != nil {
		t.Fatalf("SumDecimal: %v", err)
	}
	if sum.Value != 40 {
		t.Errorf("sum.Value = %d, want 40", sum.Value)
	}
}

func TestSumDecimalOverflow(t *testing.T) {
	c := NewDecimalChunk(0, []int64{math.MaxInt64, 1}, nil)
	bm := bitmap.New(2, true)
	_, err := SumDecimal(c, bm)
	if !errors.Is(err, ErrDecimalCapacityExceeded) {
		t.Fatalf("SumDecimal error = %v, want ErrDecimalCapacityExceeded", err)
	}
}

func TestDecimalChunkPrune(t *testing.T) {
	c := NewDecimalChunk(1, []int64{10, 20, 30}, nil)
	bm := bitmap.New(3, false)
	bm.Set(1)
	pruned := c.Prune(bm).(*DecimalChunk)
	if pruned.Len() != 1 || pruned.NthValue(0).Value != 20 {
		t.Fatalf("Prune = %+v", pruned)
	}
}

func TestDecimalChunkAppendScaleMismatch(t *testing.T) {
	a := NewDecimalChunk(2, []int64{100}, nil)
	b := NewDecimalChunk(3, []int64{100}, nil)
	if _, err := a.Append(b); err == nil {
		t.Fatal("Append across differing scales should error")
	}
}
