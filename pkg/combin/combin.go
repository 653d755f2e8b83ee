// Package combin provides the small combinatorial generators used by the tree
// enumerator: ordered integer compositions and cartesian products.
//
// Both generators are deterministic. The enumerator relies on their exact
// output order, so the order documented on each function is part of its
// contract.
package combin

import (
	"iter"
	"slices"
)

// Compositions returns every ordered sequence of positive integers summing to
// total.
//
// Results are ordered by first part ascending from 1 to total; sequences that
// share a first part are ordered recursively by the composition of the
// remainder. Compositions(3) is:
//
//	[1 1 1] [1 2] [2 1] [3]
//
// Compositions(0) returns one empty composition. A negative total yields none.
//
// Each returned slice is a separate allocation, safe to modify.
func Compositions(total int) [][]int {
	if total < 0 {
		return nil
	}
	result := make([][]int, 0, Count(total))
	for c := range EachComposition(total) {
		result = append(result, slices.Clone(c))
	}
	return result
}

// EachComposition yields the compositions of total in the order documented on
// [Compositions] without materializing them.
//
// The yielded slice is reused between iterations; clone it to retain it.
func EachComposition(total int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if total < 0 {
			return
		}
		buf := make([]int, 0, total)
		compose(total, buf, yield)
	}
}

func compose(remaining int, prefix []int, yield func([]int) bool) bool {
	if remaining == 0 {
		return yield(prefix)
	}
	for first := 1; first <= remaining; first++ {
		if !compose(remaining-first, append(prefix, first), yield) {
			return false
		}
	}
	return true
}

// Count returns the number of compositions of total: 2^(total-1) for
// total >= 1, 1 for total == 0 and 0 for negative totals.
//
// Count overflows for total > 63.
func Count(total int) int {
	switch {
	case total < 0:
		return 0
	case total == 0:
		return 1
	default:
		return 1 << (total - 1)
	}
}

// Cartesian returns the cartesian product of lists as tuples choosing one
// element from each list, in list order.
//
// The first list varies slowest:
//
//	Cartesian([][]int{{1, 2}, {3, 4}}) // [[1 3] [1 4] [2 3] [2 4]]
//
// An empty input yields a single empty tuple. If any list is empty the product
// is empty. Tuples are independent allocations.
func Cartesian[T any](lists [][]T) [][]T {
	acc := [][]T{{}}
	for _, list := range lists {
		next := make([][]T, 0, len(acc)*len(list))
		for _, partial := range acc {
			for _, item := range list {
				tuple := make([]T, len(partial), len(partial)+1)
				copy(tuple, partial)
				next = append(next, append(tuple, item))
			}
		}
		acc = next
	}
	return acc
}

// ProductSize returns the number of tuples [Cartesian] would produce for lists
// of the given lengths.
func ProductSize(lengths ...int) int {
	n := 1
	for _, l := range lengths {
		n *= l
	}
	return n
}
