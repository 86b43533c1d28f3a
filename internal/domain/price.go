package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PriceSeries is the single instrument price history all strategies run on.
type PriceSeries struct {
	Symbol string // instrument label, informational only
	Index  Index  // strictly increasing trading dates
	Prices Series // positive prices; NaN for missing observations
}

// Len returns the number of observations.
func (p *PriceSeries) Len() int {
	return len(p.Index)
}

// Validate checks alignment and ordering.
func (p *PriceSeries) Validate() error {
	if len(p.Index) == 0 {
		return ErrEmptySeries
	}
	if len(p.Index) != len(p.Prices) {
		return fmt.Errorf("%w: %d dates, %d prices", ErrLengthMismatch, len(p.Index), len(p.Prices))
	}
	return p.Index.Validate()
}

// Returns computes simple per-period returns r[t] = p[t]/p[t-1] - 1.
// r[0] is undefined, as is any return touching an undefined or zero price.
func (p *PriceSeries) Returns() Series {
	out := NewUndefinedSeries(len(p.Prices))
	for t := 1; t < len(p.Prices); t++ {
		prev, cur := p.Prices[t-1], p.Prices[t]
		if !IsDefined(prev) || !IsDefined(cur) || prev == 0 {
			continue
		}
		out[t] = cur/prev - 1
	}
	return out
}

// PricePoint is one dated observation, the storage and loader unit.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// Points returns the series as dated observations.
func (p *PriceSeries) Points() []PricePoint {
	out := make([]PricePoint, len(p.Index))
	for i, d := range p.Index {
		out[i] = PricePoint{Date: d, Price: p.Prices[i]}
	}
	return out
}

// NewPriceSeries builds a validated series from points sorted by date.
func NewPriceSeries(symbol string, points []PricePoint) (*PriceSeries, error) {
	ps := &PriceSeries{
		Symbol: symbol,
		Index:  make(Index, len(points)),
		Prices: make(Series, len(points)),
	}
	for i, pt := range points {
		ps.Index[i] = Truncate(pt.Date)
		ps.Prices[i] = pt.Price
	}
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return ps, nil
}

// Fingerprint is a stable textual digest input of the series contents.
func (p *PriceSeries) Fingerprint() string {
	var b strings.Builder
	b.WriteString(p.Symbol)
	for i, d := range p.Index {
		b.WriteByte('|')
		b.WriteString(d.Format(DateLayout))
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(p.Prices[i], 'g', -1, 64))
	}
	return b.String()
}
