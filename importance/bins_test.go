package importance

import (
	"testing"

	"github.com/pilosa/bankdata/test"
)

func TestBins(t *testing.T) {
	b, err := NewBins([]float64{10, 0, 4}, 2)
	test.ErrNil(t, err, "NewBins")
	test.MustBe(t, b.Len(), 2)
	test.MustBe(t, b.Edges, []float64{-0.01, 5, 10})
	for _, c := range []struct {
		x   float64
		bin int
		ok  bool
	}{
		{0, 0, true},
		{5, 0, true},
		{5.5, 1, true},
		{10, 1, true},
		{10.5, 0, false},
		{-0.01, 0, false},
	} {
		bin, ok := b.Index(c.x)
		if bin != c.bin || ok != c.ok {
			t.Errorf("Index(%v): got %d, %v; want %d, %v", c.x, bin, ok, c.bin, c.ok)
		}
	}
	test.MustBe(t, b.Label(0), "(-0.010, 5.000]")
}

func TestBinsConstant(t *testing.T) {
	b, err := NewBins([]float64{40, 40}, 1)
	test.ErrNil(t, err, "NewBins")
	bin, ok := b.Index(40)
	if !ok || bin != 0 {
		t.Fatalf("constant value should fall in bin 0, got %d, %v", bin, ok)
	}
	if b.Edges[0] >= 40 || b.Edges[1] <= 40 {
		t.Fatalf("edges don't straddle the value: %v", b.Edges)
	}

	b, err = NewBins([]float64{0}, 3)
	test.ErrNil(t, err, "NewBins zero")
	test.MustBe(t, b.Len(), 3)
	if _, ok := b.Index(0); !ok {
		t.Fatalf("0 outside %v", b.Edges)
	}
}

func TestBinsErrors(t *testing.T) {
	if _, err := NewBins(nil, 3); err == nil {
		t.Error("expected error for no values")
	}
	if _, err := NewBins([]float64{1}, 0); err == nil {
		t.Error("expected error for zero bins")
	}
}
