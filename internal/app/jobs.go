/**
 * @description
 * Scheduled job implementations for the tracker-service: payment reminder
 * publishing and lapsed-subscription expiry.
 */

package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/subtally/tracker-service/internal/config"
	"github.com/subtally/tracker-service/internal/domain"
	"github.com/subtally/tracker-service/pkg/rabbitmq"
)

// JobSource defines the database reads needed by the jobs.
type JobSource interface {
	GetActiveSubscriptionsDueBetween(ctx context.Context, from, to time.Time) ([]domain.Subscription, error)
	GetActiveSubscriptionsLapsedBefore(ctx context.Context, cutoff time.Time) ([]domain.Subscription, error)
}

// StatusUpdater applies status changes through the transition rules. The
// expiry job goes through this instead of writing the store directly so
// every status change stays gated by the same policy.
type StatusUpdater interface {
	UpdateSubscription(ctx context.Context, id int64, input domain.UpdateSubscriptionInput) (*domain.Subscription, error)
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	source   JobSource
	updater  StatusUpdater
	producer rabbitmq.Publisher
	logger   *slog.Logger
	config   config.Config
}

// NewJobs creates a new Jobs runner.
func NewJobs(source JobSource, updater StatusUpdater, producer rabbitmq.Publisher, logger *slog.Logger, cfg config.Config) *Jobs {
	return &Jobs{
		source:   source,
		updater:  updater,
		producer: producer,
		logger:   logger,
		config:   cfg,
	}
}

// ProcessPaymentReminders publishes a reminder event for every active
// subscription whose next payment falls inside the reminder horizon.
func (j *Jobs) ProcessPaymentReminders() {
	j.logger.Info("starting payment reminder job")
	ctx := context.Background()

	horizon := j.config.ReminderHorizonDays
	if horizon <= 0 {
		horizon = DefaultReminderHorizonDays
	}

	today := dayOf(time.Now())
	windowEnd := today.AddDate(0, 0, horizon+1)

	subs, err := j.source.GetActiveSubscriptionsDueBetween(ctx, today, windowEnd)
	if err != nil {
		j.logger.Error("failed to load subscriptions due for reminders", "error", err)
		return
	}

	if len(subs) == 0 {
		j.logger.Info("no upcoming payments inside the reminder horizon")
		return
	}

	j.logger.Info("found subscriptions due for reminders", "count", len(subs))

	for _, sub := range subs {
		daysUntil := daysBetween(today, dayOf(sub.NextPaymentDate))
		event := rabbitmq.PaymentReminderEvent{
			EventID:         uuid.New(),
			SubscriptionID:  sub.ID,
			Name:            sub.Name,
			Cost:            sub.Cost,
			BillingCycle:    string(sub.BillingCycle),
			NextPaymentDate: sub.NextPaymentDate,
			DaysUntil:       daysUntil,
			Timestamp:       time.Now().UTC(),
		}
		if err := j.producer.PublishPaymentReminderEvent(ctx, event); err != nil {
			j.logger.Error("failed to publish payment reminder", "subscription_id", sub.ID, "error", err)
			continue
		}
		j.logger.Info("published payment reminder", "subscription_id", sub.ID, "days_until", daysUntil)
	}

	j.logger.Info("payment reminder job finished")
}

// ProcessLapsedSubscriptions expires active subscriptions whose payment date
// passed more than the grace period ago. Each change goes through the
// regular update path so the transition table stays in charge.
func (j *Jobs) ProcessLapsedSubscriptions() {
	j.logger.Info("starting lapsed subscription expiry job")
	ctx := context.Background()

	grace := j.config.ExpiryGraceDays
	if grace < 0 {
		grace = 0
	}
	cutoff := dayOf(time.Now()).AddDate(0, 0, -grace)

	subs, err := j.source.GetActiveSubscriptionsLapsedBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("failed to load lapsed subscriptions", "error", err)
		return
	}

	if len(subs) == 0 {
		j.logger.Info("no lapsed subscriptions to expire")
		return
	}

	j.logger.Info("found lapsed subscriptions", "count", len(subs))

	for _, sub := range subs {
		expired := string(domain.StatusExpired)
		updated, err := j.updater.UpdateSubscription(ctx, sub.ID, domain.UpdateSubscriptionInput{Status: &expired})
		if err != nil {
			j.logger.Error("failed to expire subscription", "subscription_id", sub.ID, "error", err)
			continue
		}

		event := rabbitmq.SubscriptionExpiredEvent{
			EventID:        uuid.New(),
			SubscriptionID: updated.ID,
			Name:           updated.Name,
			PreviousStatus: string(domain.StatusActive),
			Status:         string(updated.Status),
			Timestamp:      time.Now().UTC(),
		}
		if err := j.producer.PublishSubscriptionExpiredEvent(ctx, event); err != nil {
			j.logger.Error("failed to publish expiry event", "subscription_id", updated.ID, "error", err)
		}

		j.logger.Info("expired lapsed subscription", "subscription_id", updated.ID, "next_payment_date", updated.NextPaymentDate)
	}

	j.logger.Info("lapsed subscription expiry job finished")
}
