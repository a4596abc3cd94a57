package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"portfolio-machine/models"
)

// fairValuationCeiling is the P/E under which a valuation counts as fair.
const fairValuationCeiling = 25

// sentimentSourceLabel names where stored sentiment labels come from.
const sentimentSourceLabel = "standard feeds"

// Synthesize converts price, the 200-day moving average and the valuation
// ratio into a discrete action. Rules are evaluated in precedence order,
// first match wins:
//
//  1. BUY  — MA200 available, price above it, and P/E available, positive
//     and under 25.
//  2. SELL — MA200 available and price under MA200 × 0.98.
//  3. HOLD — everything else, including every "unavailable" case.
func Synthesize(price, ma200 *decimal.Decimal, peRatio *float64) models.Action {
	if price == nil || ma200 == nil {
		return models.ActionHold
	}
	if price.GreaterThan(*ma200) && peRatio != nil && *peRatio > 0 && *peRatio < fairValuationCeiling {
		return models.ActionBuy
	}
	if price.LessThan(ma200.Mul(stopLossFactor)) {
		return models.ActionSell
	}
	return models.ActionHold
}

// Insight renders the narrative insight string. An absent or non-positive
// valuation ratio reads as "High" (not fair), never as an error.
func Insight(peRatio *float64, sentiment models.SentimentLabel, earningsDate string) string {
	tier := "High"
	if peRatio != nil && *peRatio > 0 && *peRatio < fairValuationCeiling {
		tier = "Fair"
	}
	return fmt.Sprintf("VALUATION: %s. NEWS: %s (%s). Strategy: Monitor earnings on %s.",
		tier, sentiment, sentimentSourceLabel, earningsDate)
}

// StrengthWeakness summarizes margins and revenue growth. Missing values
// default to 0 and simply fail the thresholds.
func StrengthWeakness(margin, revenueGrowth *float64) string {
	m, g := 0.0, 0.0
	if margin != nil {
		m = *margin
	}
	if revenueGrowth != nil {
		g = *revenueGrowth
	}

	narrative := "Weakness: Low Margins"
	if m > 0.15 {
		narrative = "Strength: High Margins"
	}
	if g > 0.05 {
		narrative += " & Solid Growth"
	}
	return narrative
}

// ResolveEarningsStatus compares trailing EPS against the forward estimate.
// When either side is absent the status is UNKNOWN: no data is not the same
// as meeting expectations.
func ResolveEarningsStatus(trailingEPS, forwardEPS *float64) models.EarningsStatus {
	if trailingEPS == nil || forwardEPS == nil {
		return models.EarningsUnknown
	}
	if *trailingEPS > *forwardEPS {
		return models.EarningsExceeded
	}
	return models.EarningsMeets
}
