/**
 * @description
 * This file validates and normalizes untrusted subscription input. Create
 * mode requires every mandatory field; update mode validates only the fields
 * present and merges them onto a copy of the stored record. Each rejection
 * carries a stable machine code so clients can react per field.
 *
 * @notes
 * - Status changes on the update path are gated by the transition table. The
 *   rejection message lists the statuses the record may legally move to.
 * - All string fields are trimmed before storage. Clearable optionals
 *   (category, description) collapse to NULL when trimmed empty.
 */

package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/subtally/tracker-service/internal/domain"
)

// paymentDateFormats lists the accepted layouts for next_payment_date, tried
// in order.
var paymentDateFormats = []string{time.RFC3339, "2006-01-02"}

// validateCreateInput turns a create payload into a well-formed subscription
// or rejects it with a coded error. The returned record has no id or
// timestamps; the service stamps those before persisting.
func validateCreateInput(input domain.CreateSubscriptionInput) (*domain.Subscription, error) {
	if input.Name == nil {
		return nil, domain.NewError(domain.CodeMissingName, "name is required")
	}
	name := strings.TrimSpace(*input.Name)
	if name == "" {
		return nil, domain.NewError(domain.CodeInvalidName, "name cannot be empty")
	}

	if input.Cost == nil {
		return nil, domain.NewError(domain.CodeMissingCost, "cost is required")
	}
	if !input.Cost.IsUsable() || input.Cost.Float64() <= 0 {
		return nil, domain.NewError(domain.CodeInvalidCost, "cost must be a number greater than zero")
	}

	if input.BillingCycle == nil {
		return nil, domain.NewError(domain.CodeMissingBillingCycle, "billing_cycle is required")
	}
	cycle, ok := domain.ParseBillingCycle(*input.BillingCycle)
	if !ok {
		return nil, domain.NewErrorf(domain.CodeInvalidBillingCycle, "billing_cycle must be one of %s", billingCycleList())
	}

	if input.NextPaymentDate == nil {
		return nil, domain.NewError(domain.CodeMissingNextPaymentDate, "next_payment_date is required")
	}
	nextPayment, err := parsePaymentDate(*input.NextPaymentDate)
	if err != nil {
		return nil, domain.NewError(domain.CodeInvalidNextPaymentDate, "next_payment_date must be a valid date")
	}

	status := domain.StatusActive
	if input.Status != nil {
		parsed, ok := domain.ParseStatus(*input.Status)
		if !ok {
			return nil, domain.NewErrorf(domain.CodeInvalidStatus, "status must be one of %s", statusLabelList(domain.AllStatuses()))
		}
		status = parsed
	}

	return &domain.Subscription{
		Name:            name,
		Cost:            input.Cost.Float64(),
		BillingCycle:    cycle,
		NextPaymentDate: nextPayment,
		Category:        trimToNil(input.Category),
		Description:     trimToNil(input.Description),
		Status:          status,
	}, nil
}

// applyUpdateInput validates the fields present in a partial update and
// merges them onto a copy of the existing record. The existing record's
// status is the baseline for the transition check.
func applyUpdateInput(existing *domain.Subscription, input domain.UpdateSubscriptionInput) (*domain.Subscription, error) {
	updated := *existing

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.NewError(domain.CodeInvalidName, "name cannot be empty")
		}
		updated.Name = name
	}

	if input.Cost != nil {
		if !input.Cost.IsUsable() || input.Cost.Float64() <= 0 {
			return nil, domain.NewError(domain.CodeInvalidCost, "cost must be a number greater than zero")
		}
		updated.Cost = input.Cost.Float64()
	}

	if input.BillingCycle != nil {
		cycle, ok := domain.ParseBillingCycle(*input.BillingCycle)
		if !ok {
			return nil, domain.NewErrorf(domain.CodeInvalidBillingCycle, "billing_cycle must be one of %s", billingCycleList())
		}
		updated.BillingCycle = cycle
	}

	if input.NextPaymentDate != nil {
		nextPayment, err := parsePaymentDate(*input.NextPaymentDate)
		if err != nil {
			return nil, domain.NewError(domain.CodeInvalidNextPaymentDate, "next_payment_date must be a valid date")
		}
		updated.NextPaymentDate = nextPayment
	}

	if input.Status != nil {
		next, ok := domain.ParseStatus(*input.Status)
		if !ok {
			return nil, domain.NewErrorf(domain.CodeInvalidStatus, "status must be one of %s", statusLabelList(domain.AllStatuses()))
		}
		if !existing.Status.CanTransitionTo(next) {
			current := existing.Status
			return nil, domain.NewErrorf(domain.CodeInvalidStatusTransition,
				"cannot change status from %s to %s; allowed next statuses: %s",
				current.Label(), next.Label(), statusLabelList(domain.PermittedNextStatuses(&current)))
		}
		updated.Status = next
	}

	if input.Category.Set {
		updated.Category = trimToNil(input.Category.Value)
	}
	if input.Description.Set {
		updated.Description = trimToNil(input.Description.Value)
	}

	return &updated, nil
}

// parsePaymentDate parses a payment date in RFC 3339 or plain date form.
func parsePaymentDate(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range paymentDateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", raw)
}

// trimToNil trims an optional string and collapses blank values to nil.
func trimToNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func statusLabelList(statuses []domain.Status) string {
	labels := make([]string, 0, len(statuses))
	for _, s := range statuses {
		labels = append(labels, s.Label())
	}
	return strings.Join(labels, ", ")
}

func billingCycleList() string {
	cycles := domain.AllBillingCycles()
	parts := make([]string, 0, len(cycles))
	for _, c := range cycles {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, ", ")
}
