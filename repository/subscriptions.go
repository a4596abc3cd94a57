package repository

import (
	"context"
	"fmt"
	"strings"

	"portfolio-machine/models"

	"github.com/jackc/pgx/v5"
)

// defaultAssetType is assumed when a subscription arrives without one
const defaultAssetType = "STOCK"

// GetSubscriptions returns the subscriptions for one user in insertion
// order. This ordering drives the snapshot output order, so it must be
// stable.
func (r *Repository) GetSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, ticker, asset_type, sentiment, created_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at, ticker
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// ListAllSubscriptions returns every subscription across all users,
// used by the sentiment refresher.
func (r *Repository) ListAllSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, ticker, asset_type, sentiment, created_at
		FROM subscriptions
		ORDER BY user_id, created_at, ticker
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// AddSubscription inserts a subscription, normalizing the ticker to
// upper case and defaulting the asset type. Re-adding an existing
// ticker is a no-op that preserves the stored sentiment.
func (r *Repository) AddSubscription(ctx context.Context, userID, ticker, assetType string) (*models.Subscription, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if assetType == "" {
		assetType = defaultAssetType
	}

	var sub models.Subscription
	err := r.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (user_id, ticker, asset_type, sentiment, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, ticker)
		DO UPDATE SET asset_type = EXCLUDED.asset_type
		RETURNING user_id, ticker, asset_type, sentiment, created_at
	`, userID, ticker, assetType, models.SentimentNeutral).Scan(
		&sub.UserID, &sub.Ticker, &sub.AssetType, &sub.Sentiment, &sub.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to add subscription: %w", err)
	}

	return &sub, nil
}

// RemoveSubscription deletes a subscription. Returns false when the
// user was not subscribed to the ticker.
func (r *Repository) RemoveSubscription(ctx context.Context, userID, ticker string) (bool, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	result, err := r.pool.Exec(ctx, `
		DELETE FROM subscriptions WHERE user_id = $1 AND ticker = $2
	`, userID, ticker)
	if err != nil {
		return false, fmt.Errorf("failed to remove subscription: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// UpdateSentiment stores a refreshed sentiment label for a subscription
func (r *Repository) UpdateSentiment(ctx context.Context, userID, ticker string, sentiment models.SentimentLabel) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE subscriptions SET sentiment = $3 WHERE user_id = $1 AND ticker = $2
	`, userID, ticker, sentiment)
	if err != nil {
		return fmt.Errorf("failed to update sentiment: %w", err)
	}
	return nil
}

func scanSubscriptions(rows pgx.Rows) ([]models.Subscription, error) {
	var subs []models.Subscription
	for rows.Next() {
		var s models.Subscription
		if err := rows.Scan(&s.UserID, &s.Ticker, &s.AssetType, &s.Sentiment, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subscriptions: %w", err)
	}
	return subs, nil
}
