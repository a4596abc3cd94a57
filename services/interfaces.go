package services

import (
	"context"
	"time"

	"portfolio-machine/models"

	"github.com/shopspring/decimal"
)

// InstrumentProviderInterface is the provider adapter contract consumed by
// the engine: one call per instrument returning the fetched series plus
// metadata, and one call per snapshot for the currency rate series.
type InstrumentProviderInterface interface {
	GetInstrument(ctx context.Context, symbol string) (*models.InstrumentData, error)
	GetRateSeries(ctx context.Context, base, quote string, periods int) ([]models.Bar, error)
}

// PriceServiceInterface defines historical price operations (Alpaca).
type PriceServiceInterface interface {
	GetDailyBars(ctx context.Context, symbol string, days int) ([]models.Bar, error)
}

// FundamentalsServiceInterface defines company metadata, news and FX
// operations (Alpha Vantage).
type FundamentalsServiceInterface interface {
	GetOverview(ctx context.Context, symbol string) (*models.InstrumentMetadata, error)
	GetQuotePrice(ctx context.Context, symbol string) (*decimal.Decimal, error)
	GetHeadlines(ctx context.Context, symbol string, limit int) ([]string, error)
	GetFXDaily(ctx context.Context, base, quote string, periods int) ([]models.Bar, error)
}

// EarningsOutlook is the upcoming earnings information for a symbol.
type EarningsOutlook struct {
	NextEarnings *time.Time
	EstimatedEPS *float64
}

// EarningsServiceInterface defines earnings-calendar and statement
// highlight operations (Financial Modeling Prep).
type EarningsServiceInterface interface {
	GetUpcomingEarnings(ctx context.Context, symbol string) (*EarningsOutlook, error)
	GetBalanceSheetHighlights(ctx context.Context, symbol string) (*models.InstrumentMetadata, error)
	GetCashFlowHighlights(ctx context.Context, symbol string) (*models.InstrumentMetadata, error)
}

// SentimentClassifierInterface classifies a block of headline text into a
// sentiment label. The engine never calls this; only the refresher does.
type SentimentClassifierInterface interface {
	ClassifySentiment(ctx context.Context, text string) (models.SentimentLabel, error)
}

// Compile-time interface verification
var _ PriceServiceInterface = (*AlpacaService)(nil)
var _ FundamentalsServiceInterface = (*AlphaVantageService)(nil)
var _ EarningsServiceInterface = (*FMPService)(nil)
var _ SentimentClassifierInterface = (*BedrockService)(nil)
var _ InstrumentProviderInterface = (*InstrumentProvider)(nil)
