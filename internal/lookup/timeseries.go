// Package lookup locates date windows inside a sorted index.
package lookup

import (
	"sort"
	"time"

	"walkforward-lab/internal/domain"
)

// LowerBound returns the first position whose date is at or after target.
func LowerBound(index domain.Index, target time.Time) int {
	return sort.Search(len(index), func(i int) bool {
		return !index[i].Before(target)
	})
}

// UpperBound returns the first position whose date is after target.
func UpperBound(index domain.Index, target time.Time) int {
	return sort.Search(len(index), func(i int) bool {
		return index[i].After(target)
	})
}

// Closed returns [lo, hi) positions covering dates in [from, to].
// The range is empty when to precedes from.
func Closed(index domain.Index, from, to time.Time) (int, int) {
	lo := LowerBound(index, from)
	hi := UpperBound(index, to)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// HalfOpen returns [lo, hi) positions covering dates in [from, to).
func HalfOpen(index domain.Index, from, to time.Time) (int, int) {
	lo := LowerBound(index, from)
	hi := LowerBound(index, to)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// AtOrBefore returns the position of the last date at or before target,
// or -1 when every date is later.
func AtOrBefore(index domain.Index, target time.Time) int {
	return UpperBound(index, target) - 1
}
