/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains all the SQL queries for the subscriptions table.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/subtally/tracker-service/internal/domain"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

const subscriptionColumns = `id, name, cost, billing_cycle, next_payment_date, category, description, status, created_at, updated_at`

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// InsertSubscription persists a new subscription and returns the stored row
// with its assigned id.
func (r *PostgresRepository) InsertSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	query := `
        INSERT INTO subscriptions (name, cost, billing_cycle, next_payment_date, category, description, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + subscriptionColumns

	var created domain.Subscription
	err := r.db.QueryRow(ctx, query,
		sub.Name,
		sub.Cost,
		sub.BillingCycle,
		sub.NextPaymentDate,
		sub.Category,
		sub.Description,
		sub.Status,
		sub.CreatedAt,
		sub.UpdatedAt,
	).Scan(
		&created.ID,
		&created.Name,
		&created.Cost,
		&created.BillingCycle,
		&created.NextPaymentDate,
		&created.Category,
		&created.Description,
		&created.Status,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetSubscriptionByID retrieves a single subscription by its id.
func (r *PostgresRepository) GetSubscriptionByID(ctx context.Context, id int64) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	var sub domain.Subscription
	err := r.db.QueryRow(ctx, query, id).Scan(
		&sub.ID,
		&sub.Name,
		&sub.Cost,
		&sub.BillingCycle,
		&sub.NextPaymentDate,
		&sub.Category,
		&sub.Description,
		&sub.Status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// UpdateSubscription writes the mutable columns of an already-merged record
// and returns the stored row. The caller is responsible for merging partial
// input into the existing record first.
func (r *PostgresRepository) UpdateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	query := `
        UPDATE subscriptions
        SET name = $1,
            cost = $2,
            billing_cycle = $3,
            next_payment_date = $4,
            category = $5,
            description = $6,
            status = $7,
            updated_at = $8
        WHERE id = $9
        RETURNING ` + subscriptionColumns

	var updated domain.Subscription
	err := r.db.QueryRow(ctx, query,
		sub.Name,
		sub.Cost,
		sub.BillingCycle,
		sub.NextPaymentDate,
		sub.Category,
		sub.Description,
		sub.Status,
		sub.UpdatedAt,
		sub.ID,
	).Scan(
		&updated.ID,
		&updated.Name,
		&updated.Cost,
		&updated.BillingCycle,
		&updated.NextPaymentDate,
		&updated.Category,
		&updated.Description,
		&updated.Status,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// DeleteSubscription removes a subscription and returns the deleted snapshot.
func (r *PostgresRepository) DeleteSubscription(ctx context.Context, id int64) (*domain.Subscription, error) {
	query := `DELETE FROM subscriptions WHERE id = $1 RETURNING ` + subscriptionColumns

	var deleted domain.Subscription
	err := r.db.QueryRow(ctx, query, id).Scan(
		&deleted.ID,
		&deleted.Name,
		&deleted.Cost,
		&deleted.BillingCycle,
		&deleted.NextPaymentDate,
		&deleted.Category,
		&deleted.Description,
		&deleted.Status,
		&deleted.CreatedAt,
		&deleted.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &deleted, nil
}

// normalizePagination applies the list defaults: limit 50, capped at 100,
// offset floored at 0.
func normalizePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// buildListQuery assembles the filtered subscription SELECT with positional
// args. Search matches name and description case-insensitively.
func buildListQuery(filter domain.SubscriptionFilter) (string, []interface{}) {
	limit, offset := normalizePagination(filter.Limit, filter.Offset)

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions`

	var conditions []string
	args := []interface{}{}
	argPos := 1
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			`(name ILIKE '%%' || $%d || '%%' OR COALESCE(description, '') ILIKE '%%' || $%d || '%%')`,
			argPos, argPos,
		))
		args = append(args, filter.Search)
		argPos++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filter.Status)
		argPos++
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, *filter.Category)
		argPos++
	}
	if filter.BillingCycle != nil {
		conditions = append(conditions, fmt.Sprintf("billing_cycle = $%d", argPos))
		args = append(args, *filter.BillingCycle)
		argPos++
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)
	return query, args
}

// ListSubscriptions returns subscriptions matching the filter, newest first.
// Limit is defaulted to 50 and capped at 100; a negative offset becomes 0.
func (r *PostgresRepository) ListSubscriptions(ctx context.Context, filter domain.SubscriptionFilter) ([]domain.Subscription, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(
			&sub.ID,
			&sub.Name,
			&sub.Cost,
			&sub.BillingCycle,
			&sub.NextPaymentDate,
			&sub.Category,
			&sub.Description,
			&sub.Status,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ListAllSubscriptions returns every subscription, newest first. Analytics
// run over the whole collection, so this read is not paginated.
func (r *PostgresRepository) ListAllSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(
			&sub.ID,
			&sub.Name,
			&sub.Cost,
			&sub.BillingCycle,
			&sub.NextPaymentDate,
			&sub.Category,
			&sub.Description,
			&sub.Status,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// GetActiveSubscriptionsDueBetween fetches active subscriptions whose next
// payment falls in the half-open window [from, to), ordered soonest first.
// Callers pass midnight bounds to get day granularity.
func (r *PostgresRepository) GetActiveSubscriptionsDueBetween(ctx context.Context, from, to time.Time) ([]domain.Subscription, error) {
	query := `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions
        WHERE status = 'active'
          AND next_payment_date >= $1
          AND next_payment_date < $2
        ORDER BY next_payment_date ASC
    `

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(
			&sub.ID,
			&sub.Name,
			&sub.Cost,
			&sub.BillingCycle,
			&sub.NextPaymentDate,
			&sub.Category,
			&sub.Description,
			&sub.Status,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// GetActiveSubscriptionsLapsedBefore fetches active subscriptions whose next
// payment date is older than the cutoff, ordered oldest first. Used by the
// expiry job to find records that were never renewed.
func (r *PostgresRepository) GetActiveSubscriptionsLapsedBefore(ctx context.Context, cutoff time.Time) ([]domain.Subscription, error) {
	query := `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions
        WHERE status = 'active'
          AND next_payment_date < $1
        ORDER BY next_payment_date ASC
    `

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(
			&sub.ID,
			&sub.Name,
			&sub.Cost,
			&sub.BillingCycle,
			&sub.NextPaymentDate,
			&sub.Category,
			&sub.Description,
			&sub.Status,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
