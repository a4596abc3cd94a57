package engine

import (
	"context"

	"portfolio-machine/models"
	"portfolio-machine/services"
)

// InstrumentProviderInterface is the provider adapter contract, defined in
// the services package. The alias lets the engine depend on the contract
// without importing concrete implementations.
type InstrumentProviderInterface = services.InstrumentProviderInterface

// SubscriptionSource supplies a user's subscribed instruments in
// subscription order. Satisfied by repository.Repository.
type SubscriptionSource interface {
	GetSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error)
}
