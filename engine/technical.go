package engine

import (
	"github.com/shopspring/decimal"

	"portfolio-machine/models"
)

// stopLossFactor places the stop-loss 2% under the 200-day moving average.
var stopLossFactor = decimal.NewFromFloat(0.98)

// SMA returns the simple moving average over the last window closes, or nil
// when the series holds fewer bars than the window. A short series never
// yields a partial-window average.
func SMA(bars []models.Bar, window int) *decimal.Decimal {
	if window <= 0 || len(bars) < window {
		return nil
	}
	sum := decimal.Zero
	for _, bar := range bars[len(bars)-window:] {
		sum = sum.Add(bar.Close)
	}
	avg := sum.Div(decimal.NewFromInt(int64(window)))
	return &avg
}

// ComputeTechnicalProfile derives moving averages, window extremes and the
// stop-loss level from a chronological price series. An empty series yields
// an all-nil profile; absence is signaled, never fabricated.
//
// The high/low extremes cover only the fetched window: callers wanting a
// meaningful "all-time" range must fetch a sufficiently long history.
func ComputeTechnicalProfile(bars []models.Bar, meta *models.InstrumentMetadata) models.TechnicalProfile {
	var profile models.TechnicalProfile
	if len(bars) == 0 {
		return profile
	}

	profile.MA50 = SMA(bars, 50)
	profile.MA200 = SMA(bars, 200)

	high := bars[0].High
	low := bars[0].Low
	for _, bar := range bars[1:] {
		if bar.High.GreaterThan(high) {
			high = bar.High
		}
		if bar.Low.LessThan(low) {
			low = bar.Low
		}
	}
	profile.AllTimeHigh = &high
	profile.AllTimeLow = &low

	if meta != nil {
		profile.Week52High = meta.Week52High
		profile.Week52Low = meta.Week52Low
	}

	if profile.MA200 != nil {
		stop := profile.MA200.Mul(stopLossFactor)
		profile.StopLoss = &stop
	}

	return profile
}

// ChartTail returns the trailing closes and their date labels for charting,
// at most n bars.
func ChartTail(bars []models.Bar, n int) ([]decimal.Decimal, []string) {
	if n <= 0 {
		return nil, nil
	}
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	closes := make([]decimal.Decimal, 0, len(bars))
	labels := make([]string, 0, len(bars))
	for _, bar := range bars {
		closes = append(closes, bar.Close)
		labels = append(labels, bar.Timestamp.Format("Jan 02,2006"))
	}
	return closes, labels
}
