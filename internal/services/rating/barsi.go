// Package rating provides the pure Barsi/BESST criteria score.
// All functions are stateless and perform no I/O.
package rating

import (
	"fmt"
	"strings"

	"github.com/ternarybob/barsi/internal/models"
)

// Criterion thresholds. These are literal business rules with no currency or
// inflation adjustment.
const (
	MinPE        = 3.0
	MaxPE        = 15.0
	MinROEPct    = 15.0
	MinMarketCap = 1_000_000_000.0
)

// Tier thresholds over met/total, in percent.
const (
	ThresholdExcellentPct = 75
	ThresholdGoodPct      = 50
)

// Criterion indexes into CriteriaScore.Criteria.
const (
	CriterionDividends = iota
	CriterionValuation
	CriterionProfitability
	CriterionScale
)

var criterionNames = [models.CriteriaCount]string{
	CriterionDividends:     "pays dividends",
	CriterionValuation:     "fair valuation",
	CriterionProfitability: "profitability",
	CriterionScale:         "scale",
}

// Inputs are the four metrics the rule looks at.
type Inputs struct {
	DividendPerShareTTM models.Value
	PERatio             models.Value
	ROEPct              models.Value
	MarketCap           models.Value
}

// InputsFromRow picks the scoring inputs out of a computed row.
func InputsFromRow(row models.StockRow) Inputs {
	return Inputs{
		DividendPerShareTTM: row.DividendPerShareTTM,
		PERatio:             row.PERatio,
		ROEPct:              row.ROEPct,
		MarketCap:           row.MarketCap,
	}
}

// Score evaluates the Barsi/BESST criteria.
//
// Criteria (each worth 1):
// - Pays dividends: dividend per share TTM > 0
// - Fair valuation: 3 <= P/E <= 15
// - Profitability: ROE > 15%
// - Scale: market cap > 1 billion
//
// An unavailable input never meets its criterion.
//
// Tiers:
// - >= 75%: Excellent
// - >= 50%: Good
// - otherwise: Does not meet
func Score(in Inputs) models.CriteriaScore {
	var criteria [models.CriteriaCount]bool

	if v, ok := in.DividendPerShareTTM.Get(); ok && v > 0 {
		criteria[CriterionDividends] = true
	}
	if v, ok := in.PERatio.Get(); ok && v >= MinPE && v <= MaxPE {
		criteria[CriterionValuation] = true
	}
	if v, ok := in.ROEPct.Get(); ok && v > MinROEPct {
		criteria[CriterionProfitability] = true
	}
	if v, ok := in.MarketCap.Get(); ok && v > MinMarketCap {
		criteria[CriterionScale] = true
	}

	met := 0
	var failed []string
	for i, ok := range criteria {
		if ok {
			met++
		} else {
			failed = append(failed, criterionNames[i])
		}
	}

	tier := determineTier(met, models.CriteriaCount)

	reasoning := fmt.Sprintf("%s: %d of %d criteria met", tier, met, models.CriteriaCount)
	if len(failed) > 0 {
		reasoning += " (missing " + strings.Join(failed, ", ") + ")"
	}

	return models.CriteriaScore{
		Met:       met,
		Total:     models.CriteriaCount,
		Tier:      tier,
		Criteria:  criteria,
		Reasoning: reasoning,
	}
}

// ScoreRow scores a computed row.
func ScoreRow(row models.StockRow) models.CriteriaScore {
	return Score(InputsFromRow(row))
}

// determineTier maps met/total to a tier. Both boundaries are inclusive.
func determineTier(met, total int) models.Tier {
	if total <= 0 {
		return models.TierDoesNotMeet
	}
	if met*100 >= ThresholdExcellentPct*total {
		return models.TierExcellent
	}
	if met*100 >= ThresholdGoodPct*total {
		return models.TierGood
	}
	return models.TierDoesNotMeet
}

// Qualifies reports whether a tier passes the Barsi filter (Excellent or Good).
func Qualifies(tier models.Tier) bool {
	return tier == models.TierExcellent || tier == models.TierGood
}
