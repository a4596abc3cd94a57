package app

import (
	"context"
	"fmt"
	"time"

	"portfolio-machine/config"
	"portfolio-machine/models"
	"portfolio-machine/observability"
	"portfolio-machine/sentiment"
)

// RepositoryInterface defines the repository operations needed by App
type RepositoryInterface interface {
	Close()
	Health(ctx context.Context) error
	GetSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error)
	AddSubscription(ctx context.Context, userID, ticker, assetType string) (*models.Subscription, error)
	RemoveSubscription(ctx context.Context, userID, ticker string) (bool, error)
	GetCachedSnapshot(ctx context.Context, userID string) (*models.PortfolioSnapshot, error)
	SetCachedSnapshot(ctx context.Context, userID string, snapshot *models.PortfolioSnapshot, ttl time.Duration) error
	InvalidateSnapshot(ctx context.Context, userID string) error
}

// SnapshotBuilderInterface defines the snapshot assembly operation
type SnapshotBuilderInterface interface {
	BuildSnapshot(ctx context.Context, userID string) (*models.PortfolioSnapshot, error)
}

// RefresherInterface defines the sentiment refresh operation
type RefresherInterface interface {
	RefreshAll(ctx context.Context) (*sentiment.Result, error)
}

// App struct holds application dependencies using interfaces for testability
type App struct {
	cfg         *config.Config
	repo        RepositoryInterface
	builder     SnapshotBuilderInterface
	refresher   RefresherInterface
	snapshotSem chan struct{}
}

// New creates a new App application struct
func New(cfg *config.Config, repo RepositoryInterface, builder SnapshotBuilderInterface, refresher RefresherInterface) *App {
	return &App{
		cfg:         cfg,
		repo:        repo,
		builder:     builder,
		refresher:   refresher,
		snapshotSem: make(chan struct{}, cfg.Engine.SnapshotConcurrency),
	}
}

// Shutdown releases application resources
func (a *App) Shutdown() {
	if a.repo != nil {
		a.repo.Close()
	}
}

// resolveUser substitutes the configured default when no user is named
func (a *App) resolveUser(userID string) string {
	if userID == "" {
		return a.cfg.Engine.DefaultUserID
	}
	return userID
}

// Snapshot builds (or serves from cache) the portfolio snapshot for a user
func (a *App) Snapshot(ctx context.Context, userID string) (*models.PortfolioSnapshot, error) {
	if a.builder == nil {
		return nil, fmt.Errorf("snapshot engine not initialized")
	}
	userID = a.resolveUser(userID)

	select {
	case a.snapshotSem <- struct{}{}:
		defer func() { <-a.snapshotSem }()
	default:
		return nil, fmt.Errorf("snapshot queue full, too many concurrent requests - try again later")
	}

	ttl := time.Duration(a.cfg.Engine.CacheTTLSeconds) * time.Second
	if ttl > 0 && a.repo != nil {
		cached, err := a.repo.GetCachedSnapshot(ctx, userID)
		if err != nil {
			observability.Warn("snapshot cache read failed", "user_id", userID, "error", err)
		} else if cached != nil {
			observability.Debug("snapshot served from cache", "user_id", userID)
			return cached, nil
		}
	}

	snapshot, err := a.builder.BuildSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	if ttl > 0 && a.repo != nil {
		if err := a.repo.SetCachedSnapshot(ctx, userID, snapshot, ttl); err != nil {
			observability.Warn("snapshot cache write failed", "user_id", userID, "error", err)
		}
	}

	return snapshot, nil
}

// Subscriptions returns the user's subscriptions
func (a *App) Subscriptions(ctx context.Context, userID string) ([]models.Subscription, error) {
	if a.repo == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return a.repo.GetSubscriptions(ctx, a.resolveUser(userID))
}

// AddTicker subscribes a user to a ticker and invalidates their cached snapshot
func (a *App) AddTicker(ctx context.Context, userID, ticker, assetType string) (*models.Subscription, error) {
	if a.repo == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	userID = a.resolveUser(userID)

	sub, err := a.repo.AddSubscription(ctx, userID, ticker, assetType)
	if err != nil {
		return nil, err
	}

	if err := a.repo.InvalidateSnapshot(ctx, userID); err != nil {
		observability.Warn("snapshot cache invalidation failed", "user_id", userID, "error", err)
	}

	return sub, nil
}

// RemoveTicker unsubscribes a user from a ticker. Returns false when the
// user was not subscribed.
func (a *App) RemoveTicker(ctx context.Context, userID, ticker string) (bool, error) {
	if a.repo == nil {
		return false, fmt.Errorf("database not initialized")
	}
	userID = a.resolveUser(userID)

	removed, err := a.repo.RemoveSubscription(ctx, userID, ticker)
	if err != nil {
		return false, err
	}

	if removed {
		if err := a.repo.InvalidateSnapshot(ctx, userID); err != nil {
			observability.Warn("snapshot cache invalidation failed", "user_id", userID, "error", err)
		}
	}

	return removed, nil
}

// RefreshSentiment re-classifies sentiment for every subscribed ticker
func (a *App) RefreshSentiment(ctx context.Context) (*sentiment.Result, error) {
	if a.refresher == nil {
		return nil, fmt.Errorf("sentiment refresher not initialized")
	}
	return a.refresher.RefreshAll(ctx)
}

// HealthDB reports database health; an app without a database reports an error
func (a *App) HealthDB(ctx context.Context) error {
	if a.repo == nil {
		return fmt.Errorf("database not initialized")
	}
	return a.repo.Health(ctx)
}

// SnapshotSemCapacity returns the capacity of the snapshot semaphore (for testing)
func (a *App) SnapshotSemCapacity() int {
	return cap(a.snapshotSem)
}
