package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Errors returned by series constructors and validators.
var (
	ErrEmptySeries      = errors.New("series is empty")
	ErrLengthMismatch   = errors.New("series length mismatch")
	ErrUnorderedIndex   = errors.New("index is not strictly increasing")
	ErrDuplicateName    = errors.New("duplicate strategy name")
	ErrUnknownStrategy  = errors.New("unknown strategy")
	ErrMisalignedSeries = errors.New("series not aligned to universe index")
)

// DateLayout is the canonical calendar date layout used across the module.
const DateLayout = "2006-01-02"

// Index is an ordered sequence of trading dates (UTC midnight).
type Index []time.Time

// Validate checks the index is strictly increasing.
func (ix Index) Validate() error {
	for i := 1; i < len(ix); i++ {
		if !ix[i].After(ix[i-1]) {
			return fmt.Errorf("%w: %s follows %s", ErrUnorderedIndex,
				ix[i].Format(DateLayout), ix[i-1].Format(DateLayout))
		}
	}
	return nil
}

// First returns the first date, or the zero time for an empty index.
func (ix Index) First() time.Time {
	if len(ix) == 0 {
		return time.Time{}
	}
	return ix[0]
}

// Last returns the last date, or the zero time for an empty index.
func (ix Index) Last() time.Time {
	if len(ix) == 0 {
		return time.Time{}
	}
	return ix[len(ix)-1]
}

// Clone returns a copy of the index.
func (ix Index) Clone() Index {
	out := make(Index, len(ix))
	copy(out, ix)
	return out
}

// Series is a value per index position. NaN marks an undefined value
// (insufficient history, missing data, or no position).
type Series []float64

// Undefined is the marker for a missing value.
var Undefined = math.NaN()

// IsDefined reports whether v carries a value.
func IsDefined(v float64) bool {
	return !math.IsNaN(v)
}

// NewUndefinedSeries returns a series of length n filled with NaN.
func NewUndefinedSeries(n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = Undefined
	}
	return s
}

// Clone returns a copy of the series.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Defined returns the defined values in order.
func (s Series) Defined() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if IsDefined(v) {
			out = append(out, v)
		}
	}
	return out
}

// CountDefined returns the number of defined values.
func (s Series) CountDefined() int {
	n := 0
	for _, v := range s {
		if IsDefined(v) {
			n++
		}
	}
	return n
}

// Date parses a YYYY-MM-DD string into a UTC date.
func Date(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// MustDate is Date for fixtures and constants; it panics on malformed input.
func MustDate(s string) time.Time {
	d, err := Date(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Truncate normalizes t to UTC midnight.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BusinessDays returns n weekday dates starting at (or after) start.
func BusinessDays(start time.Time, n int) Index {
	out := make(Index, 0, n)
	d := Truncate(start)
	for len(out) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return out
}
