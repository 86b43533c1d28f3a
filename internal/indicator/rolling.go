// Package indicator provides trailing-window helpers over domain.Series.
// Every output at t depends only on inputs at or before t. A window that
// contains an undefined input, or is not yet full, yields an undefined output.
package indicator

import (
	"math"

	"walkforward-lab/internal/domain"
)

// SMA returns the simple moving average over window values.
func SMA(s domain.Series, window int) domain.Series {
	return rolling(s, window, func(w []float64) float64 {
		return mean(w)
	})
}

// RollingStd returns the sample standard deviation (n-1) over window values.
// Windows shorter than 2 are always undefined.
func RollingStd(s domain.Series, window int) domain.Series {
	if window < 2 {
		return domain.NewUndefinedSeries(len(s))
	}
	return rolling(s, window, func(w []float64) float64 {
		return SampleStd(w)
	})
}

// RollingMax returns the maximum over window values.
func RollingMax(s domain.Series, window int) domain.Series {
	return rolling(s, window, func(w []float64) float64 {
		m := w[0]
		for _, v := range w[1:] {
			if v > m {
				m = v
			}
		}
		return m
	})
}

// RollingMin returns the minimum over window values.
func RollingMin(s domain.Series, window int) domain.Series {
	return rolling(s, window, func(w []float64) float64 {
		m := w[0]
		for _, v := range w[1:] {
			if v < m {
				m = v
			}
		}
		return m
	})
}

// RollingCompound returns prod(1+x)-1 over window values.
func RollingCompound(s domain.Series, window int) domain.Series {
	return rolling(s, window, func(w []float64) float64 {
		g := 1.0
		for _, v := range w {
			g *= 1 + v
		}
		return g - 1
	})
}

// Shift lags s by n positions; the first n outputs are undefined.
func Shift(s domain.Series, n int) domain.Series {
	out := domain.NewUndefinedSeries(len(s))
	for t := n; t < len(s); t++ {
		out[t] = s[t-n]
	}
	return out
}

// Diff returns s[t]-s[t-1]; the first output is undefined.
func Diff(s domain.Series) domain.Series {
	out := domain.NewUndefinedSeries(len(s))
	for t := 1; t < len(s); t++ {
		out[t] = s[t] - s[t-1]
	}
	return out
}

// FFill carries the last defined value forward over undefined gaps.
// Leading undefined values stay undefined.
func FFill(s domain.Series) domain.Series {
	out := s.Clone()
	last := domain.Undefined
	for t, v := range out {
		if domain.IsDefined(v) {
			last = v
			continue
		}
		out[t] = last
	}
	return out
}

// SampleStd is the sample standard deviation of xs; 0 for fewer than 2 values.
func SampleStd(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	m := mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// Mean is the arithmetic mean of xs; 0 for empty input.
func Mean(xs []float64) float64 {
	return mean(xs)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// rolling applies fn to each full, fully defined trailing window.
func rolling(s domain.Series, window int, fn func([]float64) float64) domain.Series {
	out := domain.NewUndefinedSeries(len(s))
	if window < 1 {
		return out
	}
	undefined := 0 // undefined values inside the current window
	for t := range s {
		if !domain.IsDefined(s[t]) {
			undefined++
		}
		if t >= window && !domain.IsDefined(s[t-window]) {
			undefined--
		}
		if t+1 < window || undefined > 0 {
			continue
		}
		out[t] = fn(s[t+1-window : t+1])
	}
	return out
}
