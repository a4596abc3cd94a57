package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio-machine/config"
	"portfolio-machine/models"
	"portfolio-machine/observability"
)

// Engine orchestrates per-instrument analysis into a portfolio snapshot.
// It is stateless across requests: every snapshot is derived fresh from
// freshly fetched series and metadata.
type Engine struct {
	provider InstrumentProviderInterface
	subs     SubscriptionSource
	cfg      *config.Config
}

// NewEngine creates an Engine. Dependencies are injected; their lifecycle
// belongs to the caller.
func NewEngine(provider InstrumentProviderInterface, subs SubscriptionSource, cfg *config.Config) *Engine {
	return &Engine{
		provider: provider,
		subs:     subs,
		cfg:      cfg,
	}
}

// instrumentResult is the typed outcome of one instrument's analysis:
// either a snapshot (with an optional calendar event) or a failure.
type instrumentResult struct {
	snapshot *models.InstrumentSnapshot
	event    *models.EarningsEvent
	failure  *models.InstrumentFailure
}

// BuildSnapshot assembles the portfolio snapshot for a user. Instrument
// analyses run concurrently on a bounded worker pool; results are collected
// by index so portfolio order always equals subscription order. A single
// "now" is captured per request so every derived date field is consistent.
//
// One instrument's failure never aborts the snapshot; only an unreachable
// subscription store does.
func (e *Engine) BuildSnapshot(ctx context.Context, userID string) (*models.PortfolioSnapshot, error) {
	metrics := observability.GetMetrics()
	metrics.RecordSnapshotRequest(userID)
	timer := metrics.NewTimer()

	subscriptions, err := e.subs.GetSubscriptions(ctx, userID)
	if err != nil {
		timer.ObserveSnapshot("error")
		return nil, fmt.Errorf("failed to load subscriptions for %s: %w", userID, err)
	}

	now := time.Now()
	results := make([]instrumentResult, len(subscriptions))

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.cfg.Engine.Workers)
	for i, sub := range subscriptions {
		wg.Add(1)
		go func(idx int, sub models.Subscription) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			instCtx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.Engine.TimeoutSeconds)*time.Second)
			defer cancel()

			instTimer := metrics.NewTimer()
			results[idx] = e.analyzeInstrument(instCtx, sub, now)
			instTimer.ObserveInstrument(sub.Ticker)
		}(i, sub)
	}
	wg.Wait()

	snapshot := &models.PortfolioSnapshot{
		ID:               uuid.New(),
		UserID:           userID,
		Portfolio:        make([]models.InstrumentSnapshot, 0, len(subscriptions)),
		EarningsCalendar: make([]models.EarningsEvent, 0),
		ServerTime:       now,
		LastSync:         now.Format("15:04:05"),
	}

	for _, res := range results {
		switch {
		case res.snapshot != nil:
			snapshot.Portfolio = append(snapshot.Portfolio, *res.snapshot)
			if res.event != nil {
				snapshot.EarningsCalendar = append(snapshot.EarningsCalendar, *res.event)
			}
			metrics.RecordRecommendation(string(res.snapshot.Recommendation), res.snapshot.Risk.Score)
		case res.failure != nil:
			snapshot.Failed = append(snapshot.Failed, *res.failure)
			metrics.RecordInstrumentError(res.failure.Ticker, "fetch")
		}
	}

	// Stable sort: ties keep append order, which is subscription order.
	sort.SliceStable(snapshot.EarningsCalendar, func(i, j int) bool {
		return snapshot.EarningsCalendar[i].DaysLeft < snapshot.EarningsCalendar[j].DaysLeft
	})

	pair := e.cfg.Engine.FXBase + "/" + e.cfg.Engine.FXQuote
	rates, err := e.provider.GetRateSeries(ctx, e.cfg.Engine.FXBase, e.cfg.Engine.FXQuote, e.cfg.Engine.FXPeriods)
	if err != nil {
		observability.Warn("currency advisory unavailable",
			"pair", pair,
			"error", err)
	} else {
		snapshot.Currency = ComputeCurrencyAdvisory(pair, rates)
		if snapshot.Currency == nil {
			observability.Warn("currency advisory skipped, insufficient rate history",
				"pair", pair,
				"periods", len(rates))
		}
	}

	timer.ObserveSnapshot("success")
	return snapshot, nil
}

// analyzeInstrument fetches one instrument and derives its full snapshot.
// Fetch errors become typed failures; missing metadata fields flow through
// as nil and take each rule's documented default.
func (e *Engine) analyzeInstrument(ctx context.Context, sub models.Subscription, now time.Time) instrumentResult {
	data, err := e.provider.GetInstrument(ctx, sub.Ticker)
	if err != nil {
		observability.Warn("instrument fetch failed",
			"ticker", sub.Ticker,
			"error", err)
		return instrumentResult{failure: &models.InstrumentFailure{
			Ticker: sub.Ticker,
			Reason: err.Error(),
		}}
	}

	meta := data.Metadata
	if meta == nil {
		meta = &models.InstrumentMetadata{Symbol: sub.Ticker}
	}

	profile := ComputeTechnicalProfile(data.Series, meta)

	headlines := meta.Headlines
	if limit := e.cfg.Engine.HeadlineLimit; limit > 0 && len(headlines) > limit {
		headlines = headlines[:limit]
	}
	risk := AssessRisk(headlines)

	sentiment := sub.Sentiment
	if sentiment == "" {
		sentiment = models.SentimentNeutral
	}

	// Fall back to the last close when the quote is missing; nil only when
	// the series is empty too.
	price := meta.CurrentPrice
	if price == nil && len(data.Series) > 0 {
		last := data.Series[len(data.Series)-1].Close
		price = &last
	}

	earningsDate, daysLeft, inCalendar := EarningsWindow(meta.NextEarnings, now)
	chartData, chartLabels := ChartTail(data.Series, e.cfg.Engine.ChartBars)

	snap := &models.InstrumentSnapshot{
		Ticker:           sub.Ticker,
		AssetType:        sub.AssetType,
		Sentiment:        sentiment,
		CurrentPrice:     price,
		Recommendation:   Synthesize(price, profile.MA200, meta.PERatio),
		Insight:          Insight(meta.PERatio, sentiment, earningsDate),
		StrengthWeakness: StrengthWeakness(meta.OperatingMargin, meta.RevenueGrowth),
		Technical:        profile,
		Fundamentals: models.FundamentalsSummary{
			PERatio:        meta.PERatio,
			TrailingEPS:    meta.TrailingEPS,
			TotalDebt:      meta.TotalDebt,
			FreeCashFlow:   meta.FreeCashFlow,
			EarningsStatus: ResolveEarningsStatus(meta.TrailingEPS, meta.ForwardEPS),
		},
		Risk:         risk,
		EarningsDate: earningsDate,
		ChartData:    chartData,
		ChartLabels:  chartLabels,
	}

	res := instrumentResult{snapshot: snap}
	if inCalendar {
		res.event = &models.EarningsEvent{
			Ticker:   sub.Ticker,
			Date:     earningsDate,
			DaysLeft: daysLeft,
		}
	}
	return res
}
