package sentiment

import (
	"context"
	"fmt"
	"strings"

	"portfolio-machine/models"
	"portfolio-machine/observability"
	"portfolio-machine/services"
)

// maxClassifyChars bounds the headline text sent to the classifier
const maxClassifyChars = 4500

// SubscriptionStore is the slice of the repository the refresher needs
type SubscriptionStore interface {
	ListAllSubscriptions(ctx context.Context) ([]models.Subscription, error)
	UpdateSentiment(ctx context.Context, userID, ticker string, sentiment models.SentimentLabel) error
}

// HeadlineSource fetches recent headlines for a symbol
type HeadlineSource interface {
	GetHeadlines(ctx context.Context, symbol string, limit int) ([]string, error)
}

// Refresher re-classifies news sentiment for every subscribed ticker
// and writes the labels back to the store. Each ticker is classified
// once, then fanned out to every user subscribed to it.
type Refresher struct {
	store      SubscriptionStore
	headlines  HeadlineSource
	classifier services.SentimentClassifierInterface
	limit      int
}

// NewRefresher creates a Refresher over the given collaborators
func NewRefresher(store SubscriptionStore, headlines HeadlineSource, classifier services.SentimentClassifierInterface, headlineLimit int) *Refresher {
	return &Refresher{
		store:      store,
		headlines:  headlines,
		classifier: classifier,
		limit:      headlineLimit,
	}
}

// Result summarizes one refresh pass
type Result struct {
	TickersClassified    int      `json:"tickers_classified"`
	SubscriptionsUpdated int      `json:"subscriptions_updated"`
	Skipped              []string `json:"skipped,omitempty"`
}

// RefreshAll classifies sentiment for every subscribed ticker. Failures
// on individual tickers are logged and skipped; only a store failure
// aborts the pass.
func (r *Refresher) RefreshAll(ctx context.Context) (*Result, error) {
	subs, err := r.store.ListAllSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	byTicker := make(map[string][]models.Subscription)
	order := make([]string, 0)
	for _, sub := range subs {
		if _, seen := byTicker[sub.Ticker]; !seen {
			order = append(order, sub.Ticker)
		}
		byTicker[sub.Ticker] = append(byTicker[sub.Ticker], sub)
	}

	result := &Result{}
	for _, ticker := range order {
		label, err := r.classifyTicker(ctx, ticker)
		if err != nil {
			observability.Warn("sentiment refresh skipped", "ticker", ticker, "error", err)
			result.Skipped = append(result.Skipped, ticker)
			continue
		}

		result.TickersClassified++
		for _, sub := range byTicker[ticker] {
			if err := r.store.UpdateSentiment(ctx, sub.UserID, ticker, label); err != nil {
				observability.Error("failed to store sentiment", "user_id", sub.UserID, "ticker", ticker, "error", err)
				continue
			}
			result.SubscriptionsUpdated++
		}
	}

	observability.Info("sentiment refresh complete",
		"tickers", result.TickersClassified,
		"updated", result.SubscriptionsUpdated,
		"skipped", len(result.Skipped))

	return result, nil
}

func (r *Refresher) classifyTicker(ctx context.Context, ticker string) (models.SentimentLabel, error) {
	headlines, err := r.headlines.GetHeadlines(ctx, ticker, r.limit)
	if err != nil {
		return models.SentimentNeutral, fmt.Errorf("failed to fetch headlines: %w", err)
	}
	if len(headlines) == 0 {
		return models.SentimentNeutral, nil
	}

	text := strings.Join(headlines, ". ")
	if len(text) > maxClassifyChars {
		text = text[:maxClassifyChars]
	}

	return r.classifier.ClassifySentiment(ctx, text)
}
