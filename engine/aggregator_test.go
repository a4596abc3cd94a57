package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-machine/config"
	"portfolio-machine/models"
)

// stubProvider serves canned instrument data keyed by symbol, with optional
// per-symbol delays to shake out ordering under concurrency.
type stubProvider struct {
	instruments map[string]*models.InstrumentData
	errors      map[string]error
	delays      map[string]time.Duration
	rates       []models.Bar
	ratesErr    error
}

func (p *stubProvider) GetInstrument(ctx context.Context, symbol string) (*models.InstrumentData, error) {
	if d, ok := p.delays[symbol]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := p.errors[symbol]; ok {
		return nil, err
	}
	data, ok := p.instruments[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return data, nil
}

func (p *stubProvider) GetRateSeries(ctx context.Context, base, quote string, periods int) ([]models.Bar, error) {
	if p.ratesErr != nil {
		return nil, p.ratesErr
	}
	return p.rates, nil
}

type stubSubscriptionSource struct {
	subs []models.Subscription
	err  error
}

func (s *stubSubscriptionSource) GetSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.subs, nil
}

func subsFor(tickers ...string) []models.Subscription {
	subs := make([]models.Subscription, 0, len(tickers))
	for _, t := range tickers {
		subs = append(subs, models.Subscription{
			UserID:    "U001",
			Ticker:    t,
			AssetType: "STOCK",
			Sentiment: models.SentimentNeutral,
		})
	}
	return subs
}

func instrumentFor(symbol string, closes ...float64) *models.InstrumentData {
	return &models.InstrumentData{
		Series:   barsFromCloses(closes...),
		Metadata: &models.InstrumentMetadata{Symbol: symbol},
	}
}

func TestBuildSnapshot_PreservesSubscriptionOrder(t *testing.T) {
	tickers := []string{"AAPL", "MSFT", "GOOG", "AMZN", "NVDA"}
	provider := &stubProvider{
		instruments: map[string]*models.InstrumentData{},
		// Earlier subscriptions finish later.
		delays: map[string]time.Duration{
			"AAPL": 80 * time.Millisecond,
			"MSFT": 60 * time.Millisecond,
			"GOOG": 40 * time.Millisecond,
			"AMZN": 20 * time.Millisecond,
		},
	}
	for _, ticker := range tickers {
		provider.instruments[ticker] = instrumentFor(ticker, 100, 101, 102)
	}

	cfg := config.NewTestConfig()
	cfg.Engine.Workers = 3
	eng := NewEngine(provider, &stubSubscriptionSource{subs: subsFor(tickers...)}, cfg)

	snapshot, err := eng.BuildSnapshot(context.Background(), "U001")
	require.NoError(t, err)
	require.Len(t, snapshot.Portfolio, len(tickers))

	for i, ticker := range tickers {
		assert.Equal(t, ticker, snapshot.Portfolio[i].Ticker)
	}
}

func TestBuildSnapshot_PartialFailure(t *testing.T) {
	provider := &stubProvider{
		instruments: map[string]*models.InstrumentData{
			"AAPL": instrumentFor("AAPL", 100, 101),
			"NVDA": instrumentFor("NVDA", 500, 510),
		},
		errors: map[string]error{
			"MSFT": errors.New("upstream timeout"),
		},
	}
	eng := NewEngine(provider, &stubSubscriptionSource{subs: subsFor("AAPL", "MSFT", "NVDA")}, config.NewTestConfig())

	snapshot, err := eng.BuildSnapshot(context.Background(), "U001")
	require.NoError(t, err, "one instrument's failure must not abort the snapshot")

	require.Len(t, snapshot.Portfolio, 2)
	assert.Equal(t, "AAPL", snapshot.Portfolio[0].Ticker)
	assert.Equal(t, "NVDA", snapshot.Portfolio[1].Ticker)

	require.Len(t, snapshot.Failed, 1)
	assert.Equal(t, "MSFT", snapshot.Failed[0].Ticker)
	assert.Contains(t, snapshot.Failed[0].Reason, "upstream timeout")
}

func TestBuildSnapshot_SubscriptionStoreFailure(t *testing.T) {
	eng := NewEngine(&stubProvider{}, &stubSubscriptionSource{err: errors.New("connection refused")}, config.NewTestConfig())

	snapshot, err := eng.BuildSnapshot(context.Background(), "U001")
	require.Error(t, err)
	assert.Nil(t, snapshot)
}

func TestBuildSnapshot_EmptyPortfolio(t *testing.T) {
	eng := NewEngine(&stubProvider{}, &stubSubscriptionSource{}, config.NewTestConfig())

	snapshot, err := eng.BuildSnapshot(context.Background(), "U001")
	require.NoError(t, err)
	assert.Empty(t, snapshot.Portfolio)
	assert.Empty(t, snapshot.Failed)
	assert.NotNil(t, snapshot.EarningsCalendar)
	assert.Equal(t, "U001", snapshot.UserID)
}

func TestBuildSnapshot_CurrencyFailureIsBestEffort(t *testing.T) {
	provider := &stubProvider{
		instruments: map[string]*models.InstrumentData{
			"AAPL": instrumentFor("AAPL", 100, 101),
		},
		ratesErr: errors.New("fx endpoint down"),
	}
	eng := NewEngine(provider, &stubSubscriptionSource{subs: subsFor("AAPL")}, config.NewTestConfig())

	snapshot, err := eng.BuildSnapshot(context.Background(), "U001")
	require.NoError(t, err)
	assert.Nil(t, snapshot.Currency)
	assert.Len(t, snapshot.Portfolio, 1)
}

func TestBuildSnapshot_CurrencyAdvisory(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 82.0 + float64(i)*0.1
	}
	provider := &stubProvider{
		instruments: map[string]*models.InstrumentData{
			"AAPL": instrumentFor("AAPL", 100, 101),
		},
		rates: barsFromCloses(closes...),
	}
	eng := NewEngine(provider, &stubSubscriptionSource{subs: subsFor("AAPL")}, config.NewTestConfig())

	snapshot, err := eng.BuildSnapshot(context.Background(), "U001")
	require.NoError(t, err)
	require.NotNil(t, snapshot.Currency)
	assert.Equal(t, "USD/INR", snapshot.Currency.Pair)
	assert.Equal(t, models.AdviceWait, snapshot.Currency.Advice)
}

func TestBuildSnapshot_EarningsCalendarSorted(t *testing.T) {
	now := time.Now()
	in20 := now.AddDate(0, 0, 20)
	in5 := now.AddDate(0, 0, 5)
	in45 := now.AddDate(0, 0, 45)

	provider := &stubProvider{
		instruments: map[string]*models.InstrumentData{
			"AAPL": {
				Series:   barsFromCloses(100, 101),
				Metadata: &models.InstrumentMetadata{Symbol: "AAPL", NextEarnings: &in20},
			},
			"MSFT": {
				Series:   barsFromCloses(200, 201),
				Metadata: &models.InstrumentMetadata{Symbol: "MSFT", NextEarnings: &in5},
			},
			"GOOG": {
				Series:   barsFromCloses(150, 151),
				Metadata: &models.InstrumentMetadata{Symbol: "GOOG", NextEarnings: &in45},
			},
			"AMZN": instrumentFor("AMZN", 120, 121),
		},
	}
	eng := NewEngine(provider, &stubSubscriptionSource{subs: subsFor("AAPL", "MSFT", "GOOG", "AMZN")}, config.NewTestConfig())

	snapshot, err := eng.BuildSnapshot(context.Background(), "U001")
	require.NoError(t, err)

	// Only dates within 30 days qualify, sorted soonest first.
	require.Len(t, snapshot.EarningsCalendar, 2)
	assert.Equal(t, "MSFT", snapshot.EarningsCalendar[0].Ticker)
	assert.Equal(t, "AAPL", snapshot.EarningsCalendar[1].Ticker)
	assert.LessOrEqual(t, snapshot.EarningsCalendar[0].DaysLeft, snapshot.EarningsCalendar[1].DaysLeft)

	// The excluded instrument still carries its concrete date.
	for _, inst := range snapshot.Portfolio {
		if inst.Ticker == "GOOG" {
			assert.Equal(t, in45.Format("2006-01-02"), inst.EarningsDate)
		}
		if inst.Ticker == "AMZN" {
			assert.Equal(t, "TBD", inst.EarningsDate)
		}
	}
}

func TestBuildSnapshot_LastSyncFormat(t *testing.T) {
	eng := NewEngine(&stubProvider{}, &stubSubscriptionSource{}, config.NewTestConfig())

	snapshot, err := eng.BuildSnapshot(context.Background(), "U001")
	require.NoError(t, err)

	_, parseErr := time.Parse("15:04:05", snapshot.LastSync)
	assert.NoError(t, parseErr, "last_sync must be a wall-clock time string")
	assert.Equal(t, snapshot.ServerTime.Format("15:04:05"), snapshot.LastSync)
}

func TestAnalyzeInstrument_PriceFallsBackToLastClose(t *testing.T) {
	provider := &stubProvider{
		instruments: map[string]*models.InstrumentData{
			"AAPL": instrumentFor("AAPL", 100, 101, 102),
		},
	}
	eng := NewEngine(provider, &stubSubscriptionSource{subs: subsFor("AAPL")}, config.NewTestConfig())

	snapshot, err := eng.BuildSnapshot(context.Background(), "U001")
	require.NoError(t, err)
	require.Len(t, snapshot.Portfolio, 1)

	price := snapshot.Portfolio[0].CurrentPrice
	require.NotNil(t, price)
	assert.True(t, price.Equal(decimal.NewFromInt(102)), "expected last close 102, got %s", price)
}

func TestAnalyzeInstrument_QuoteBeatsLastClose(t *testing.T) {
	quote := decimal.NewFromFloat(110.5)
	provider := &stubProvider{
		instruments: map[string]*models.InstrumentData{
			"AAPL": {
				Series:   barsFromCloses(100, 101, 102),
				Metadata: &models.InstrumentMetadata{Symbol: "AAPL", CurrentPrice: &quote},
			},
		},
	}
	eng := NewEngine(provider, &stubSubscriptionSource{subs: subsFor("AAPL")}, config.NewTestConfig())

	snapshot, err := eng.BuildSnapshot(context.Background(), "U001")
	require.NoError(t, err)
	require.Len(t, snapshot.Portfolio, 1)
	require.NotNil(t, snapshot.Portfolio[0].CurrentPrice)
	assert.True(t, snapshot.Portfolio[0].CurrentPrice.Equal(quote))
}

func TestAnalyzeInstrument_DefaultsEmptySentimentToNeutral(t *testing.T) {
	provider := &stubProvider{
		instruments: map[string]*models.InstrumentData{
			"AAPL": instrumentFor("AAPL", 100, 101),
		},
	}
	subs := []models.Subscription{{UserID: "U001", Ticker: "AAPL", AssetType: "STOCK"}}
	eng := NewEngine(provider, &stubSubscriptionSource{subs: subs}, config.NewTestConfig())

	snapshot, err := eng.BuildSnapshot(context.Background(), "U001")
	require.NoError(t, err)
	require.Len(t, snapshot.Portfolio, 1)
	assert.Equal(t, models.SentimentNeutral, snapshot.Portfolio[0].Sentiment)
}

func TestAnalyzeInstrument_HeadlineCap(t *testing.T) {
	headlines := []string{
		"war one", "war two", "war three", "war four", "war five",
		"war six", "war seven",
	}
	provider := &stubProvider{
		instruments: map[string]*models.InstrumentData{
			"AAPL": {
				Series:   barsFromCloses(100, 101),
				Metadata: &models.InstrumentMetadata{Symbol: "AAPL", Headlines: headlines},
			},
		},
	}
	eng := NewEngine(provider, &stubSubscriptionSource{subs: subsFor("AAPL")}, config.NewTestConfig())

	snapshot, err := eng.BuildSnapshot(context.Background(), "U001")
	require.NoError(t, err)
	require.Len(t, snapshot.Portfolio, 1)

	// Only the first 5 headlines count: 5 * 30 = 150, not 210.
	assert.Equal(t, 150, snapshot.Portfolio[0].Risk.Score)
	assert.Equal(t, models.GeoStatusCritical, snapshot.Portfolio[0].Risk.Status)
}
