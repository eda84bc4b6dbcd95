/**
 * @description
 * This file contains the core business logic for the tracker-service. The
 * Service layer is the only path through which subscriptions are created,
 * mutated, or removed: it runs the validator, enforces the status transition
 * table, stamps timestamps, and translates storage failures into coded
 * errors that never leak driver details to clients.
 */

package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/subtally/tracker-service/internal/domain"
	"github.com/subtally/tracker-service/internal/store"
)

// Service provides the business logic for subscription management.
type Service struct {
	repo store.Repository
}

// NewService creates a new subscription service.
func NewService(repo store.Repository) *Service {
	return &Service{repo: repo}
}

// CreateSubscription validates the input and persists a new subscription.
// Status defaults to active when the client does not supply one.
func (s *Service) CreateSubscription(ctx context.Context, input domain.CreateSubscriptionInput) (*domain.Subscription, error) {
	sub, err := validateCreateInput(input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	created, err := s.repo.InsertSubscription(ctx, sub)
	if err != nil {
		log.Printf("level=error component=service msg=\"subscription insert failed\" err=%v", err)
		return nil, domain.NewError(domain.CodeInternalError, "could not create subscription")
	}
	return created, nil
}

// GetSubscription returns a single subscription by id.
func (s *Service) GetSubscription(ctx context.Context, id int64) (*domain.Subscription, error) {
	if id <= 0 {
		return nil, domain.NewError(domain.CodeInvalidID, "id must be a positive integer")
	}
	sub, err := s.repo.GetSubscriptionByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			return nil, domain.NewErrorf(domain.CodeNotFound, "subscription %d not found", id)
		}
		log.Printf("level=error component=service msg=\"subscription lookup failed\" id=%d err=%v", id, err)
		return nil, domain.NewError(domain.CodeInternalError, "could not load subscription")
	}
	return sub, nil
}

// UpdateSubscription applies a partial update to an existing subscription.
// Only the fields present in the input change; a status change must follow
// the transition table from the currently stored status.
func (s *Service) UpdateSubscription(ctx context.Context, id int64, input domain.UpdateSubscriptionInput) (*domain.Subscription, error) {
	if id <= 0 {
		return nil, domain.NewError(domain.CodeInvalidID, "id must be a positive integer")
	}

	existing, err := s.repo.GetSubscriptionByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			return nil, domain.NewErrorf(domain.CodeNotFound, "subscription %d not found", id)
		}
		log.Printf("level=error component=service msg=\"subscription lookup failed\" id=%d err=%v", id, err)
		return nil, domain.NewError(domain.CodeInternalError, "could not load subscription")
	}

	updated, err := applyUpdateInput(existing, input)
	if err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()

	stored, err := s.repo.UpdateSubscription(ctx, updated)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			return nil, domain.NewErrorf(domain.CodeNotFound, "subscription %d not found", id)
		}
		log.Printf("level=error component=service msg=\"subscription update failed\" id=%d err=%v", id, err)
		return nil, domain.NewError(domain.CodeInternalError, "could not update subscription")
	}
	return stored, nil
}

// DeleteSubscription removes a subscription and returns the deleted
// snapshot.
func (s *Service) DeleteSubscription(ctx context.Context, id int64) (*domain.Subscription, error) {
	if id <= 0 {
		return nil, domain.NewError(domain.CodeInvalidID, "id must be a positive integer")
	}
	deleted, err := s.repo.DeleteSubscription(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			return nil, domain.NewErrorf(domain.CodeNotFound, "subscription %d not found", id)
		}
		log.Printf("level=error component=service msg=\"subscription delete failed\" id=%d err=%v", id, err)
		return nil, domain.NewError(domain.CodeInternalError, "could not delete subscription")
	}
	return deleted, nil
}

// ListSubscriptions returns subscriptions matching the filter. Pagination
// defaults and caps are applied by the store.
func (s *Service) ListSubscriptions(ctx context.Context, filter domain.SubscriptionFilter) ([]domain.Subscription, error) {
	subs, err := s.repo.ListSubscriptions(ctx, filter)
	if err != nil {
		log.Printf("level=error component=service msg=\"subscription list failed\" err=%v", err)
		return nil, domain.NewError(domain.CodeInternalError, "could not list subscriptions")
	}
	if subs == nil {
		subs = []domain.Subscription{}
	}
	return subs, nil
}

// SpendSummary is the analytics document returned by the summary endpoint.
// The display fields are filled by the API layer when the client asks for a
// formatted currency.
type SpendSummary struct {
	MonthlyTotal        float64               `json:"monthly_total"`
	YearlyTotal         float64               `json:"yearly_total"`
	MonthlyTotalDisplay string                `json:"monthly_total_display,omitempty"`
	YearlyTotalDisplay  string                `json:"yearly_total_display,omitempty"`
	CategoryBreakdown   map[string]float64    `json:"category_breakdown"`
	TopSubscriptions    []domain.Subscription `json:"top_subscriptions"`
	StatusCounts        map[domain.Status]int `json:"status_counts"`
}

// GetSpendSummary computes totals, the category breakdown, and the top
// subscriptions over the whole collection, optionally restricted to records
// whose next payment falls inside [from, to].
func (s *Service) GetSpendSummary(ctx context.Context, from, to *time.Time, topN int) (*SpendSummary, error) {
	records, err := s.repo.ListAllSubscriptions(ctx)
	if err != nil {
		log.Printf("level=error component=service msg=\"summary load failed\" err=%v", err)
		return nil, domain.NewError(domain.CodeInternalError, "could not compute summary")
	}
	records = FilterByDateRange(records, from, to)

	statusCounts := make(map[domain.Status]int)
	for _, sub := range records {
		statusCounts[sub.Status]++
	}

	top := TopByMonthlyCost(records, topN)
	if top == nil {
		top = []domain.Subscription{}
	}

	return &SpendSummary{
		MonthlyTotal:      MonthlyTotal(records),
		YearlyTotal:       YearlyTotal(records),
		CategoryBreakdown: CategoryBreakdown(records),
		TopSubscriptions:  top,
		StatusCounts:      statusCounts,
	}, nil
}

// RemindersView partitions upcoming payments into overdue and due-soon.
type RemindersView struct {
	Overdue []domain.Subscription `json:"overdue"`
	DueSoon []ReminderEntry       `json:"due_soon"`
}

// GetReminders computes the overdue and due-soon partitions as of now.
func (s *Service) GetReminders(ctx context.Context, now time.Time, horizonDays int) (*RemindersView, error) {
	records, err := s.repo.ListAllSubscriptions(ctx)
	if err != nil {
		log.Printf("level=error component=service msg=\"reminders load failed\" err=%v", err)
		return nil, domain.NewError(domain.CodeInternalError, "could not compute reminders")
	}

	overdue := Overdue(records, now)
	if overdue == nil {
		overdue = []domain.Subscription{}
	}
	dueSoon := DueSoon(records, now, horizonDays)
	if dueSoon == nil {
		dueSoon = []ReminderEntry{}
	}

	return &RemindersView{Overdue: overdue, DueSoon: dueSoon}, nil
}
