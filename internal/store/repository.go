/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract
 * for all data access operations required by the tracker-service. Keeping the
 * business logic behind an interface decouples it from PostgreSQL and lets
 * tests substitute an in-memory implementation.
 */

package store

import (
	"context"
	"time"

	"github.com/subtally/tracker-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Subscription CRUD
	InsertSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)
	GetSubscriptionByID(ctx context.Context, id int64) (*domain.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)
	DeleteSubscription(ctx context.Context, id int64) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context, filter domain.SubscriptionFilter) ([]domain.Subscription, error)

	// ListAllSubscriptions feeds the aggregation engine, which needs the
	// full collection rather than a page.
	ListAllSubscriptions(ctx context.Context) ([]domain.Subscription, error)

	// Scheduler-facing reads
	GetActiveSubscriptionsDueBetween(ctx context.Context, from, to time.Time) ([]domain.Subscription, error)
	GetActiveSubscriptionsLapsedBefore(ctx context.Context, cutoff time.Time) ([]domain.Subscription, error)
}
