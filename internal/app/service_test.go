package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/subtally/tracker-service/internal/domain"
	"github.com/subtally/tracker-service/internal/store"
)

// serviceRepoStub is an in-memory Repository for service tests. Methods not
// implemented here panic through the embedded interface.
type serviceRepoStub struct {
	store.Repository

	subs      map[int64]domain.Subscription
	nextID    int64
	insertErr error
	listAll   []domain.Subscription
	listErr   error

	insertCalled bool
}

func newServiceRepoStub() *serviceRepoStub {
	return &serviceRepoStub{subs: map[int64]domain.Subscription{}}
}

func (s *serviceRepoStub) InsertSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	s.insertCalled = true
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	s.nextID++
	stored := *sub
	stored.ID = s.nextID
	s.subs[stored.ID] = stored
	result := stored
	return &result, nil
}

func (s *serviceRepoStub) GetSubscriptionByID(ctx context.Context, id int64) (*domain.Subscription, error) {
	stored, ok := s.subs[id]
	if !ok {
		return nil, store.ErrSubscriptionNotFound
	}
	result := stored
	return &result, nil
}

func (s *serviceRepoStub) UpdateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	if _, ok := s.subs[sub.ID]; !ok {
		return nil, store.ErrSubscriptionNotFound
	}
	s.subs[sub.ID] = *sub
	result := *sub
	return &result, nil
}

func (s *serviceRepoStub) DeleteSubscription(ctx context.Context, id int64) (*domain.Subscription, error) {
	stored, ok := s.subs[id]
	if !ok {
		return nil, store.ErrSubscriptionNotFound
	}
	delete(s.subs, id)
	result := stored
	return &result, nil
}

func (s *serviceRepoStub) ListSubscriptions(ctx context.Context, filter domain.SubscriptionFilter) ([]domain.Subscription, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listAll, nil
}

func (s *serviceRepoStub) ListAllSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listAll, nil
}

func TestCreateSubscriptionDefaultsAndStamps(t *testing.T) {
	repo := newServiceRepoStub()
	service := NewService(repo)

	created, err := service.CreateSubscription(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("expected create to pass, got %v", err)
	}

	if created.ID == 0 {
		t.Error("expected an assigned id")
	}
	if created.Status != domain.StatusActive {
		t.Errorf("expected default status active, got %s", created.Status)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be stamped")
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("expected created_at and updated_at to match on insert, got %v vs %v",
			created.CreatedAt, created.UpdatedAt)
	}
}

func TestCreateSubscriptionRejectsInvalidInputBeforeStorage(t *testing.T) {
	repo := newServiceRepoStub()
	service := NewService(repo)

	input := validCreateInput()
	input.Cost = nil

	_, err := service.CreateSubscription(context.Background(), input)
	if err == nil {
		t.Fatal("expected invalid input to be rejected")
	}
	if got := domain.ErrorCode(err); got != domain.CodeMissingCost {
		t.Fatalf("expected code %s, got %s", domain.CodeMissingCost, got)
	}
	if repo.insertCalled {
		t.Error("expected storage to be untouched on validation failure")
	}
}

func TestCreateSubscriptionStorageFailure(t *testing.T) {
	repo := newServiceRepoStub()
	repo.insertErr = errors.New("connection reset")
	service := NewService(repo)

	_, err := service.CreateSubscription(context.Background(), validCreateInput())
	if err == nil {
		t.Fatal("expected storage failure to surface")
	}
	if got := domain.ErrorCode(err); got != domain.CodeInternalError {
		t.Fatalf("expected code %s, got %s", domain.CodeInternalError, got)
	}
}

func TestGetSubscriptionErrors(t *testing.T) {
	repo := newServiceRepoStub()
	service := NewService(repo)

	_, err := service.GetSubscription(context.Background(), 0)
	if got := domain.ErrorCode(err); got != domain.CodeInvalidID {
		t.Fatalf("expected code %s for id 0, got %s", domain.CodeInvalidID, got)
	}

	_, err = service.GetSubscription(context.Background(), 99)
	if got := domain.ErrorCode(err); got != domain.CodeNotFound {
		t.Fatalf("expected code %s for unknown id, got %s", domain.CodeNotFound, got)
	}
}

func TestUpdateSubscriptionPartialMerge(t *testing.T) {
	repo := newServiceRepoStub()
	service := NewService(repo)

	created, err := service.CreateSubscription(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	updated, err := service.UpdateSubscription(context.Background(), created.ID, domain.UpdateSubscriptionInput{
		Cost: amountPtr(19.99),
	})
	if err != nil {
		t.Fatalf("expected update to pass, got %v", err)
	}

	if updated.Cost != 19.99 {
		t.Errorf("expected cost updated, got %v", updated.Cost)
	}
	if updated.Name != created.Name {
		t.Errorf("expected name unchanged, got %q", updated.Name)
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf("expected updated_at to advance, got %v before %v", updated.UpdatedAt, created.UpdatedAt)
	}
}

func TestUpdateSubscriptionTransitionGate(t *testing.T) {
	repo := newServiceRepoStub()
	service := NewService(repo)

	created, err := service.CreateSubscription(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	// active -> paused is a legal move.
	paused, err := service.UpdateSubscription(context.Background(), created.ID, domain.UpdateSubscriptionInput{
		Status: strPtr("paused"),
	})
	if err != nil {
		t.Fatalf("expected active -> paused to pass, got %v", err)
	}
	if paused.Status != domain.StatusPaused {
		t.Fatalf("expected status paused, got %s", paused.Status)
	}

	// paused -> cancelled, then cancelled -> active must be rejected.
	if _, err := service.UpdateSubscription(context.Background(), created.ID, domain.UpdateSubscriptionInput{
		Status: strPtr("cancelled"),
	}); err != nil {
		t.Fatalf("expected paused -> cancelled to pass, got %v", err)
	}

	_, err = service.UpdateSubscription(context.Background(), created.ID, domain.UpdateSubscriptionInput{
		Status: strPtr("active"),
	})
	if err == nil {
		t.Fatal("expected cancelled -> active to be rejected")
	}
	if got := domain.ErrorCode(err); got != domain.CodeInvalidStatusTransition {
		t.Fatalf("expected code %s, got %s", domain.CodeInvalidStatusTransition, got)
	}

	// The rejected update must not have altered the stored record.
	stored, err := service.GetSubscription(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("lookup after rejected update failed: %v", err)
	}
	if stored.Status != domain.StatusCancelled {
		t.Fatalf("expected stored status cancelled, got %s", stored.Status)
	}
}

func TestUpdateSubscriptionNotFound(t *testing.T) {
	repo := newServiceRepoStub()
	service := NewService(repo)

	_, err := service.UpdateSubscription(context.Background(), 404, domain.UpdateSubscriptionInput{
		Name: strPtr("renamed"),
	})
	if got := domain.ErrorCode(err); got != domain.CodeNotFound {
		t.Fatalf("expected code %s, got %s", domain.CodeNotFound, got)
	}
}

func TestDeleteSubscriptionReturnsSnapshot(t *testing.T) {
	repo := newServiceRepoStub()
	service := NewService(repo)

	created, err := service.CreateSubscription(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	deleted, err := service.DeleteSubscription(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("expected delete to pass, got %v", err)
	}
	if deleted.ID != created.ID || deleted.Name != created.Name {
		t.Errorf("expected the deleted snapshot, got %+v", deleted)
	}

	_, err = service.DeleteSubscription(context.Background(), created.ID)
	if got := domain.ErrorCode(err); got != domain.CodeNotFound {
		t.Fatalf("expected second delete to report %s, got %s", domain.CodeNotFound, got)
	}
}

func TestListSubscriptionsNeverReturnsNil(t *testing.T) {
	repo := newServiceRepoStub()
	service := NewService(repo)

	subs, err := service.ListSubscriptions(context.Background(), domain.SubscriptionFilter{})
	if err != nil {
		t.Fatalf("expected list to pass, got %v", err)
	}
	if subs == nil {
		t.Fatal("expected an empty slice, got nil")
	}
	if len(subs) != 0 {
		t.Fatalf("expected no records, got %d", len(subs))
	}
}

func TestGetSpendSummary(t *testing.T) {
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	repo := newServiceRepoStub()
	repo.listAll = []domain.Subscription{
		makeSub("netflix", 15.99, domain.BillingCycleMonthly, domain.StatusActive, due),
		makeSub("backup", 120, domain.BillingCycleYearly, domain.StatusActive, due.AddDate(0, 2, 0)),
		makeSub("gym", 40, domain.BillingCycleMonthly, domain.StatusPaused, due),
	}
	service := NewService(repo)

	summary, err := service.GetSpendSummary(context.Background(), nil, nil, 0)
	if err != nil {
		t.Fatalf("expected summary to pass, got %v", err)
	}

	if !almostEqual(summary.MonthlyTotal, 15.99+10) {
		t.Errorf("expected monthly total %v, got %v", 15.99+10, summary.MonthlyTotal)
	}
	if !almostEqual(summary.YearlyTotal, 191.88+120) {
		t.Errorf("expected yearly total %v, got %v", 191.88+120, summary.YearlyTotal)
	}
	if summary.StatusCounts[domain.StatusActive] != 2 || summary.StatusCounts[domain.StatusPaused] != 1 {
		t.Errorf("expected status counts, got %v", summary.StatusCounts)
	}
	if len(summary.TopSubscriptions) != 2 {
		t.Errorf("expected 2 chargeable records in top list, got %d", len(summary.TopSubscriptions))
	}

	// Restricting the window to September drops the yearly backup plan.
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	summary, err = service.GetSpendSummary(context.Background(), &from, &to, 0)
	if err != nil {
		t.Fatalf("expected windowed summary to pass, got %v", err)
	}
	if !almostEqual(summary.MonthlyTotal, 15.99) {
		t.Errorf("expected windowed monthly total %v, got %v", 15.99, summary.MonthlyTotal)
	}
}

func TestGetReminders(t *testing.T) {
	now := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	repo := newServiceRepoStub()
	repo.listAll = []domain.Subscription{
		makeSub("late", 10, domain.BillingCycleMonthly, domain.StatusActive, now.AddDate(0, 0, -2)),
		makeSub("tomorrow", 10, domain.BillingCycleMonthly, domain.StatusActive, now.AddDate(0, 0, 1)),
		makeSub("next month", 10, domain.BillingCycleMonthly, domain.StatusActive, now.AddDate(0, 0, 40)),
	}
	service := NewService(repo)

	reminders, err := service.GetReminders(context.Background(), now, 30)
	if err != nil {
		t.Fatalf("expected reminders to pass, got %v", err)
	}

	if len(reminders.Overdue) != 1 || reminders.Overdue[0].Name != "late" {
		t.Errorf("expected one overdue record, got %+v", reminders.Overdue)
	}
	if len(reminders.DueSoon) != 1 || reminders.DueSoon[0].Subscription.Name != "tomorrow" {
		t.Errorf("expected one due-soon record, got %+v", reminders.DueSoon)
	}
	if !reminders.DueSoon[0].Urgent || reminders.DueSoon[0].DaysUntil != 1 {
		t.Errorf("expected tomorrow to be urgent with one day until, got %+v", reminders.DueSoon[0])
	}
}
