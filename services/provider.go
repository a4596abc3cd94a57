package services

import (
	"context"
	"fmt"

	"portfolio-machine/models"
	"portfolio-machine/observability"
)

// InstrumentProvider fans one GetInstrument call out to the underlying
// data services and merges the results into a single InstrumentData.
// The price series and overview are required; everything else degrades
// to nil fields when its source fails.
type InstrumentProvider struct {
	prices       PriceServiceInterface
	fundamentals FundamentalsServiceInterface
	earnings     EarningsServiceInterface
	historyDays  int
	headlines    int
}

// NewInstrumentProvider creates a provider over the given data services.
// The earnings service may be nil when no FMP key is configured.
func NewInstrumentProvider(prices PriceServiceInterface, fundamentals FundamentalsServiceInterface, earnings EarningsServiceInterface, historyDays, headlines int) *InstrumentProvider {
	return &InstrumentProvider{
		prices:       prices,
		fundamentals: fundamentals,
		earnings:     earnings,
		historyDays:  historyDays,
		headlines:    headlines,
	}
}

// GetInstrument fetches the daily series and metadata for a symbol
func (p *InstrumentProvider) GetInstrument(ctx context.Context, symbol string) (*models.InstrumentData, error) {
	bars, err := p.prices.GetDailyBars(ctx, symbol, p.historyDays)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price series for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}

	meta, err := p.fundamentals.GetOverview(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch overview for %s: %w", symbol, err)
	}

	if price, err := p.fundamentals.GetQuotePrice(ctx, symbol); err != nil {
		observability.Warn("quote unavailable, falling back to last close", "symbol", symbol, "error", err)
	} else {
		meta.CurrentPrice = price
	}

	if headlines, err := p.fundamentals.GetHeadlines(ctx, symbol, p.headlines); err != nil {
		observability.Warn("headlines unavailable", "symbol", symbol, "error", err)
	} else {
		meta.Headlines = headlines
	}

	p.mergeEarnings(ctx, symbol, meta)

	return &models.InstrumentData{Series: bars, Metadata: meta}, nil
}

// mergeEarnings layers the FMP earnings outlook and statement highlights
// onto the metadata. All of it is best-effort.
func (p *InstrumentProvider) mergeEarnings(ctx context.Context, symbol string, meta *models.InstrumentMetadata) {
	if p.earnings == nil {
		return
	}

	if outlook, err := p.earnings.GetUpcomingEarnings(ctx, symbol); err != nil {
		observability.Warn("earnings calendar unavailable", "symbol", symbol, "error", err)
	} else if outlook != nil {
		meta.NextEarnings = outlook.NextEarnings
		meta.ForwardEPS = outlook.EstimatedEPS
	}

	if highlights, err := p.earnings.GetBalanceSheetHighlights(ctx, symbol); err != nil {
		observability.Warn("balance sheet unavailable", "symbol", symbol, "error", err)
	} else if highlights != nil {
		meta.TotalDebt = highlights.TotalDebt
	}

	if highlights, err := p.earnings.GetCashFlowHighlights(ctx, symbol); err != nil {
		observability.Warn("cash flow statement unavailable", "symbol", symbol, "error", err)
	} else if highlights != nil {
		meta.FreeCashFlow = highlights.FreeCashFlow
	}
}

// GetRateSeries returns the daily rate series for a currency pair
func (p *InstrumentProvider) GetRateSeries(ctx context.Context, base, quote string, periods int) ([]models.Bar, error) {
	return p.fundamentals.GetFXDaily(ctx, base, quote, periods)
}
