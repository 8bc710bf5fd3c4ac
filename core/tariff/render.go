package tariff

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrMissingKindRate is returned by AverageRate when a segment kind has no price.
var ErrMissingKindRate = errors.New("no rate for period kind")

// Shares returns the fraction of the day spent in each kind.
func Shares(segs Segments) map[PeriodKind]float64 {
	out := make(map[PeriodKind]float64, 3)
	for _, s := range segs {
		out[s.Kind] += float64(s.Minutes()) / MinutesPerDay
	}
	return out
}

// AverageRate is the time weighted price of one day under segs.
func AverageRate(segs Segments, rates map[PeriodKind]float64) (float64, error) {
	if len(segs) == 0 {
		return 0, nil
	}
	weights := make([]float64, len(segs))
	prices := make([]float64, len(segs))
	for i, s := range segs {
		r, ok := rates[s.Kind]
		if !ok {
			return 0, fmt.Errorf("%w %s", ErrMissingKindRate, s.Kind)
		}
		weights[i] = float64(s.Minutes())
		prices[i] = r
	}
	total := floats.Sum(weights)
	if total == 0 {
		return 0, nil
	}
	return floats.Dot(weights, prices) / total, nil
}
