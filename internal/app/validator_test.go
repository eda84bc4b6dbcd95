package app

import (
	"math"
	"testing"
	"time"

	"github.com/subtally/tracker-service/internal/domain"
)

func strPtr(s string) *string {
	return &s
}

func amountPtr(f float64) *domain.Amount {
	a := domain.Amount(f)
	return &a
}

func validCreateInput() domain.CreateSubscriptionInput {
	return domain.CreateSubscriptionInput{
		Name:            strPtr("Netflix"),
		Cost:            amountPtr(15.99),
		BillingCycle:    strPtr("monthly"),
		NextPaymentDate: strPtr("2026-09-01"),
	}
}

func TestValidateCreateInputFieldCodes(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*domain.CreateSubscriptionInput)
		wantCode string
	}{
		{
			name:     "missing name",
			mutate:   func(in *domain.CreateSubscriptionInput) { in.Name = nil },
			wantCode: domain.CodeMissingName,
		},
		{
			name:     "blank name",
			mutate:   func(in *domain.CreateSubscriptionInput) { in.Name = strPtr("   ") },
			wantCode: domain.CodeInvalidName,
		},
		{
			name:     "missing cost",
			mutate:   func(in *domain.CreateSubscriptionInput) { in.Cost = nil },
			wantCode: domain.CodeMissingCost,
		},
		{
			name:     "zero cost",
			mutate:   func(in *domain.CreateSubscriptionInput) { in.Cost = amountPtr(0) },
			wantCode: domain.CodeInvalidCost,
		},
		{
			name:     "negative cost",
			mutate:   func(in *domain.CreateSubscriptionInput) { in.Cost = amountPtr(-5) },
			wantCode: domain.CodeInvalidCost,
		},
		{
			name:     "unparseable cost",
			mutate:   func(in *domain.CreateSubscriptionInput) { in.Cost = amountPtr(math.NaN()) },
			wantCode: domain.CodeInvalidCost,
		},
		{
			name:     "missing billing cycle",
			mutate:   func(in *domain.CreateSubscriptionInput) { in.BillingCycle = nil },
			wantCode: domain.CodeMissingBillingCycle,
		},
		{
			name:     "unknown billing cycle",
			mutate:   func(in *domain.CreateSubscriptionInput) { in.BillingCycle = strPtr("weekly") },
			wantCode: domain.CodeInvalidBillingCycle,
		},
		{
			name:     "missing next payment date",
			mutate:   func(in *domain.CreateSubscriptionInput) { in.NextPaymentDate = nil },
			wantCode: domain.CodeMissingNextPaymentDate,
		},
		{
			name:     "unparseable next payment date",
			mutate:   func(in *domain.CreateSubscriptionInput) { in.NextPaymentDate = strPtr("soon") },
			wantCode: domain.CodeInvalidNextPaymentDate,
		},
		{
			name:     "blank next payment date",
			mutate:   func(in *domain.CreateSubscriptionInput) { in.NextPaymentDate = strPtr("  ") },
			wantCode: domain.CodeInvalidNextPaymentDate,
		},
		{
			name:     "unknown status",
			mutate:   func(in *domain.CreateSubscriptionInput) { in.Status = strPtr("zombie") },
			wantCode: domain.CodeInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validCreateInput()
			tt.mutate(&input)

			_, err := validateCreateInput(input)
			if err == nil {
				t.Fatalf("expected error with code %s, got nil", tt.wantCode)
			}
			if got := domain.ErrorCode(err); got != tt.wantCode {
				t.Fatalf("expected code %s, got %s (%v)", tt.wantCode, got, err)
			}
		})
	}
}

func TestValidateCreateInputDefaultsAndNormalization(t *testing.T) {
	input := validCreateInput()
	input.Name = strPtr("  Netflix  ")
	input.Category = strPtr("   ")
	input.Description = strPtr("  family plan ")

	sub, err := validateCreateInput(input)
	if err != nil {
		t.Fatalf("expected valid input to pass, got %v", err)
	}

	if sub.Name != "Netflix" {
		t.Errorf("expected trimmed name %q, got %q", "Netflix", sub.Name)
	}
	if sub.Status != domain.StatusActive {
		t.Errorf("expected default status %s, got %s", domain.StatusActive, sub.Status)
	}
	if sub.Category != nil {
		t.Errorf("expected blank category to collapse to nil, got %q", *sub.Category)
	}
	if sub.Description == nil || *sub.Description != "family plan" {
		t.Errorf("expected trimmed description, got %v", sub.Description)
	}

	wantDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if !sub.NextPaymentDate.Equal(wantDate) {
		t.Errorf("expected next payment date %v, got %v", wantDate, sub.NextPaymentDate)
	}
}

func TestValidateCreateInputAcceptsRFC3339(t *testing.T) {
	input := validCreateInput()
	input.NextPaymentDate = strPtr("2026-09-01T08:30:00Z")
	input.Status = strPtr("TRIAL")

	sub, err := validateCreateInput(input)
	if err != nil {
		t.Fatalf("expected valid input to pass, got %v", err)
	}
	if sub.Status != domain.StatusTrial {
		t.Errorf("expected case-insensitive status parse, got %s", sub.Status)
	}
	if sub.NextPaymentDate.Hour() != 8 || sub.NextPaymentDate.Minute() != 30 {
		t.Errorf("expected timestamp precision preserved, got %v", sub.NextPaymentDate)
	}
}

func existingSubscription(status domain.Status) *domain.Subscription {
	category := "entertainment"
	return &domain.Subscription{
		ID:              42,
		Name:            "Netflix",
		Cost:            15.99,
		BillingCycle:    domain.BillingCycleMonthly,
		NextPaymentDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Category:        &category,
		Status:          status,
	}
}

func TestApplyUpdateInputMergesPresentFields(t *testing.T) {
	existing := existingSubscription(domain.StatusActive)

	updated, err := applyUpdateInput(existing, domain.UpdateSubscriptionInput{
		Name: strPtr("  Netflix Premium "),
		Cost: amountPtr(19.99),
	})
	if err != nil {
		t.Fatalf("expected update to pass, got %v", err)
	}

	if updated.Name != "Netflix Premium" {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
	if updated.Cost != 19.99 {
		t.Errorf("expected updated cost, got %v", updated.Cost)
	}
	if updated.BillingCycle != domain.BillingCycleMonthly {
		t.Errorf("expected billing cycle unchanged, got %s", updated.BillingCycle)
	}
	if updated.Status != domain.StatusActive {
		t.Errorf("expected status unchanged, got %s", updated.Status)
	}
	if updated.Category == nil || *updated.Category != "entertainment" {
		t.Errorf("expected category unchanged, got %v", updated.Category)
	}

	// The stored record must stay untouched until the merge persists.
	if existing.Name != "Netflix" || existing.Cost != 15.99 {
		t.Errorf("expected existing record to be unmodified, got %+v", existing)
	}
}

func TestApplyUpdateInputStatusTransitions(t *testing.T) {
	tests := []struct {
		name     string
		current  domain.Status
		next     string
		wantCode string
	}{
		{name: "trial to active", current: domain.StatusTrial, next: "active"},
		{name: "active to paused", current: domain.StatusActive, next: "paused"},
		{name: "active to expired", current: domain.StatusActive, next: "expired"},
		{name: "paused to cancelled", current: domain.StatusPaused, next: "cancelled"},
		{name: "cancelled to expired", current: domain.StatusCancelled, next: "expired"},
		{name: "expired to cancelled", current: domain.StatusExpired, next: "cancelled"},
		{name: "self transition", current: domain.StatusPaused, next: "paused"},
		{
			name:     "cancelled cannot reactivate",
			current:  domain.StatusCancelled,
			next:     "active",
			wantCode: domain.CodeInvalidStatusTransition,
		},
		{
			name:     "trial cannot pause",
			current:  domain.StatusTrial,
			next:     "paused",
			wantCode: domain.CodeInvalidStatusTransition,
		},
		{
			name:     "expired cannot reactivate",
			current:  domain.StatusExpired,
			next:     "active",
			wantCode: domain.CodeInvalidStatusTransition,
		},
		{
			name:     "unknown target status",
			current:  domain.StatusActive,
			next:     "zombie",
			wantCode: domain.CodeInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := existingSubscription(tt.current)

			updated, err := applyUpdateInput(existing, domain.UpdateSubscriptionInput{
				Status: strPtr(tt.next),
			})

			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("expected transition %s -> %s to pass, got %v", tt.current, tt.next, err)
				}
				if string(updated.Status) != tt.next {
					t.Fatalf("expected status %s, got %s", tt.next, updated.Status)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected transition %s -> %s to be rejected", tt.current, tt.next)
			}
			if got := domain.ErrorCode(err); got != tt.wantCode {
				t.Fatalf("expected code %s, got %s (%v)", tt.wantCode, got, err)
			}
			if existing.Status != tt.current {
				t.Fatalf("expected stored status to survive a rejected update, got %s", existing.Status)
			}
		})
	}
}

func TestApplyUpdateInputClearableOptionals(t *testing.T) {
	existing := existingSubscription(domain.StatusActive)
	description := "shared account"
	existing.Description = &description

	// Explicit null clears category; an omitted description stays.
	updated, err := applyUpdateInput(existing, domain.UpdateSubscriptionInput{
		Category: domain.OptionalString{Set: true, Value: nil},
	})
	if err != nil {
		t.Fatalf("expected update to pass, got %v", err)
	}
	if updated.Category != nil {
		t.Errorf("expected category cleared, got %q", *updated.Category)
	}
	if updated.Description == nil || *updated.Description != "shared account" {
		t.Errorf("expected description untouched, got %v", updated.Description)
	}

	// A present value replaces, trimming whitespace.
	updated, err = applyUpdateInput(existing, domain.UpdateSubscriptionInput{
		Category: domain.OptionalString{Set: true, Value: strPtr("  streaming ")},
	})
	if err != nil {
		t.Fatalf("expected update to pass, got %v", err)
	}
	if updated.Category == nil || *updated.Category != "streaming" {
		t.Errorf("expected category replaced, got %v", updated.Category)
	}
}

func TestApplyUpdateInputRejectsBlankName(t *testing.T) {
	existing := existingSubscription(domain.StatusActive)

	_, err := applyUpdateInput(existing, domain.UpdateSubscriptionInput{Name: strPtr(" ")})
	if err == nil {
		t.Fatal("expected blank name to be rejected")
	}
	if got := domain.ErrorCode(err); got != domain.CodeInvalidName {
		t.Fatalf("expected code %s, got %s", domain.CodeInvalidName, got)
	}
}
