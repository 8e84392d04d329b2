package rng

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch reports items and weights of different lengths.
	ErrLengthMismatch = errors.New("rng: items and weights differ in length")
	// ErrNegativeWeight reports a weight below zero.
	ErrNegativeWeight = errors.New("rng: negative weight")
	// ErrNoWeight reports an empty pool or one whose weights sum to zero.
	ErrNoWeight = errors.New("rng: no selectable item")
)

// Choose returns one item with probability weights[i]/sum(weights).
// Items with zero weight are never returned. Items that must not be
// selectable are expected to be absent from both lists.
func Choose[T any](src Source, items []T, weights []int) (T, error) {
	var zero T
	if len(items) != len(weights) {
		return zero, fmt.Errorf("%w: %d items, %d weights", ErrLengthMismatch, len(items), len(weights))
	}
	idx, err := ChooseIndex(src, weights)
	if err != nil {
		return zero, err
	}
	return items[idx], nil
}

// ChooseIndex draws an index into weights with probability proportional to
// its weight. It consumes exactly one value from src on success.
func ChooseIndex(src Source, weights []int) (int, error) {
	total := 0
	for i, w := range weights {
		if w < 0 {
			return 0, fmt.Errorf("%w: weights[%d] = %d", ErrNegativeWeight, i, w)
		}
		total += w
	}
	if total == 0 {
		return 0, ErrNoWeight
	}
	r := src.IntN(total)
	for i, w := range weights {
		if r < w {
			return i, nil
		}
		r -= w
	}
	// unreachable: r < total
	return len(weights) - 1, nil
}
