package models

import "time"

// SentimentLabel is the news sentiment classification for a subscription.
// The engine never computes sentiment; it reads labels stored by the
// sentiment refresher (or an external classifier).
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// ParseSentimentLabel normalizes a stored label, defaulting to NEUTRAL
// for empty or unrecognized values.
func ParseSentimentLabel(s string) SentimentLabel {
	switch SentimentLabel(s) {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return SentimentLabel(s)
	default:
		return SentimentNeutral
	}
}

// Subscription is one user+ticker row from the subscription store.
type Subscription struct {
	UserID    string         `json:"user_id"`
	Ticker    string         `json:"ticker"`
	AssetType string         `json:"asset_type"`
	Sentiment SentimentLabel `json:"sentiment,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
