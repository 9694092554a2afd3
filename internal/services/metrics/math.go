package metrics

import (
	"time"

	"github.com/ternarybob/barsi/internal/models"
)

// Mean calculates the arithmetic mean
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// closesSince returns closes dated on or after cutoff.
func closesSince(prices []models.PricePoint, cutoff time.Time) []float64 {
	closes := make([]float64, 0, len(prices))
	for _, p := range prices {
		if !p.Date.Before(cutoff) {
			closes = append(closes, p.Close)
		}
	}
	return closes
}

// sumSince adds dividend amounts dated on or after cutoff.
func sumSince(events []models.DividendEvent, cutoff time.Time) float64 {
	total := 0.0
	for _, e := range events {
		if !e.Date.Before(cutoff) {
			total += e.Amount
		}
	}
	return total
}

// yearlySums groups dividend amounts on or after cutoff by calendar year.
func yearlySums(events []models.DividendEvent, cutoff time.Time) map[int]float64 {
	sums := make(map[int]float64)
	for _, e := range events {
		if e.Date.Before(cutoff) {
			continue
		}
		sums[e.Date.Year()] += e.Amount
	}
	return sums
}
