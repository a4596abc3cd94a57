package repository

import (
	"context"
	"time"

	"portfolio-machine/models"
)

// RepositoryInterface defines all repository operations
type RepositoryInterface interface {
	// Health and lifecycle
	Close()
	Health(ctx context.Context) error

	// Subscriptions
	GetSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error)
	ListAllSubscriptions(ctx context.Context) ([]models.Subscription, error)
	AddSubscription(ctx context.Context, userID, ticker, assetType string) (*models.Subscription, error)
	RemoveSubscription(ctx context.Context, userID, ticker string) (bool, error)
	UpdateSentiment(ctx context.Context, userID, ticker string, sentiment models.SentimentLabel) error

	// Snapshot cache
	GetCachedSnapshot(ctx context.Context, userID string) (*models.PortfolioSnapshot, error)
	SetCachedSnapshot(ctx context.Context, userID string, snapshot *models.PortfolioSnapshot, ttl time.Duration) error
	InvalidateSnapshot(ctx context.Context, userID string) error
	CleanExpiredSnapshots(ctx context.Context) (int64, error)
}

// Compile-time interface verification
var _ RepositoryInterface = (*Repository)(nil)
