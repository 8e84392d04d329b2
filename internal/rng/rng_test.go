package rng

import (
	"errors"
	"testing"
)

// fixedSource replays a scripted sequence of draws.
type fixedSource struct {
	draws []int
	pos   int
}

func (f *fixedSource) IntN(n int) int {
	v := f.draws[f.pos%len(f.draws)] % n
	f.pos++
	return v
}

func TestNewIsDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := range 64 {
		x, y := a.IntN(1000), b.IntN(1000)
		if x != y {
			t.Fatalf("draw %d diverged: %d != %d", i, x, y)
		}
	}
}

func TestChooseBoundaries(t *testing.T) {
	items := []string{"a", "b", "c"}
	weights := []int{2, 0, 3}
	cases := []struct {
		draw int
		want string
	}{
		{0, "a"},
		{1, "a"},
		{2, "c"},
		{4, "c"},
	}
	for _, tc := range cases {
		got, err := Choose[string](&fixedSource{draws: []int{tc.draw}}, items, weights)
		if err != nil {
			t.Fatalf("Choose(draw=%d): %v", tc.draw, err)
		}
		if got != tc.want {
			t.Fatalf("Choose(draw=%d) = %q, want %q", tc.draw, got, tc.want)
		}
	}
}

func TestChooseRejectsMismatchedLists(t *testing.T) {
	src := &fixedSource{draws: []int{0}}
	_, err := Choose(src, []int{1, 2, 3}, []int{1, 1})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if src.pos != 0 {
		t.Fatalf("mismatched call consumed %d draws", src.pos)
	}
}

func TestChooseRejectsBadWeights(t *testing.T) {
	src := New(1)
	if _, err := Choose(src, []int{1, 2}, []int{1, -1}); !errors.Is(err, ErrNegativeWeight) {
		t.Fatalf("expected ErrNegativeWeight, got %v", err)
	}
	if _, err := Choose(src, []int{1, 2}, []int{0, 0}); !errors.Is(err, ErrNoWeight) {
		t.Fatalf("expected ErrNoWeight for zero weights, got %v", err)
	}
	if _, err := Choose[int](src, nil, nil); !errors.Is(err, ErrNoWeight) {
		t.Fatalf("expected ErrNoWeight for empty pool, got %v", err)
	}
}

func TestChooseIndexNeverPicksZeroWeight(t *testing.T) {
	src := New(7)
	weights := []int{0, 5, 0, 1, 0}
	for range 5000 {
		idx, err := ChooseIndex(src, weights)
		if err != nil {
			t.Fatalf("ChooseIndex: %v", err)
		}
		if weights[idx] == 0 {
			t.Fatalf("picked zero-weight index %d", idx)
		}
	}
}

func TestPercentClamps(t *testing.T) {
	src := New(3)
	for range 100 {
		if Percent(src, 0) {
			t.Fatalf("Percent(0) returned true")
		}
		if !Percent(src, 100) {
			t.Fatalf("Percent(100) returned false")
		}
	}
}
