package strategy

import "walkforward-lab/internal/domain"

// sign maps a defined value to +1 when positive and -1 otherwise.
func sign(v float64) float64 {
	if !domain.IsDefined(v) {
		return domain.Undefined
	}
	if v > 0 {
		return 1
	}
	return -1
}

// latched turns sparse +1/-1 triggers into a held signal: the last trigger
// is carried forward and bars before the first trigger are flat.
func latched(triggers domain.Series) domain.Series {
	out := make(domain.Series, len(triggers))
	last := 0.0
	for t, v := range triggers {
		if domain.IsDefined(v) {
			last = v
		}
		out[t] = last
	}
	return out
}

// returnsOf computes simple returns of prices; the first value is undefined.
func returnsOf(prices domain.Series) domain.Series {
	p := domain.PriceSeries{Prices: prices}
	return p.Returns()
}
