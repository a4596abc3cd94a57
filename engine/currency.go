package engine

import (
	"portfolio-machine/models"
)

// currencyMinPeriods is the minimum rate history for a meaningful signal.
// Callers should fetch more (e.g. 30 periods) to be safe.
const currencyMinPeriods = 20

// ComputeCurrencyAdvisory derives the short/medium crossover signal for an
// exchange-rate series. Returns nil when fewer than 20 periods are
// available. WAIT iff sma5 > sma20 (upward trend: better to hold), else
// CONVERT_NOW. Strictly a crossover comparison; no hysteresis.
func ComputeCurrencyAdvisory(pair string, rates []models.Bar) *models.CurrencyAdvisory {
	if len(rates) < currencyMinPeriods {
		return nil
	}

	sma5 := SMA(rates, 5)
	sma20 := SMA(rates, 20)

	advisory := &models.CurrencyAdvisory{
		Pair:  pair,
		Rate:  rates[len(rates)-1].Close,
		SMA5:  *sma5,
		SMA20: *sma20,
	}

	if sma5.GreaterThan(*sma20) {
		advisory.Advice = models.AdviceWait
		advisory.Trend = "Upward Trend"
	} else {
		advisory.Advice = models.AdviceConvertNow
		advisory.Trend = "Downward Trend"
	}
	return advisory
}
