package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"portfolio-machine/models"

	"github.com/jackc/pgx/v5"
)

// GetCachedSnapshot returns the cached portfolio snapshot for a user,
// or nil when no unexpired entry exists.
func (r *Repository) GetCachedSnapshot(ctx context.Context, userID string) (*models.PortfolioSnapshot, error) {
	var data []byte

	// Let the database handle expiry check to avoid timezone issues
	err := r.pool.QueryRow(ctx, `
		SELECT data FROM snapshot_cache
		WHERE user_id = $1 AND expires_at > NOW()
	`, userID).Scan(&data)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot cache: %w", err)
	}

	var snapshot models.PortfolioSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
	}

	return &snapshot, nil
}

// SetCachedSnapshot stores a portfolio snapshot with a TTL
func (r *Repository) SetCachedSnapshot(ctx context.Context, userID string, snapshot *models.PortfolioSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO snapshot_cache (user_id, data, expires_at)
		VALUES ($1, $2, NOW() + $3::interval)
		ON CONFLICT (user_id)
		DO UPDATE SET data = EXCLUDED.data, expires_at = NOW() + $3::interval, created_at = NOW()
	`, userID, data, ttl.String())

	if err != nil {
		return fmt.Errorf("failed to set snapshot cache: %w", err)
	}

	return nil
}

// InvalidateSnapshot removes the cached snapshot for a user. Called
// whenever the user's subscriptions change.
func (r *Repository) InvalidateSnapshot(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM snapshot_cache WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to invalidate snapshot cache: %w", err)
	}
	return nil
}

// CleanExpiredSnapshots removes all expired cache entries
func (r *Repository) CleanExpiredSnapshots(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM snapshot_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to clean expired snapshots: %w", err)
	}
	return result.RowsAffected(), nil
}
