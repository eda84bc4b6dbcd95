/**
 * @description
 * This file defines the core domain model for the tracker-service: the
 * Subscription entity that maps to the subscriptions table, and the closed
 * billing cycle enum its cost recurs on.
 */

package domain

import (
	"strings"
	"time"
)

// BillingCycle is the recurrence period of a subscription charge.
type BillingCycle string

const (
	BillingCycleMonthly   BillingCycle = "monthly"
	BillingCycleQuarterly BillingCycle = "quarterly"
	BillingCycleYearly    BillingCycle = "yearly"
)

// AllBillingCycles returns every billing cycle in declaration order.
func AllBillingCycles() []BillingCycle {
	return []BillingCycle{BillingCycleMonthly, BillingCycleQuarterly, BillingCycleYearly}
}

// ParseBillingCycle normalizes a raw value (case-insensitive, surrounding
// whitespace ignored) and reports whether it names a known billing cycle.
func ParseBillingCycle(value string) (BillingCycle, bool) {
	b := BillingCycle(strings.ToLower(strings.TrimSpace(value)))
	if !b.IsValid() {
		return "", false
	}
	return b, true
}

// IsValid reports whether b is a member of the closed billing cycle set.
func (b BillingCycle) IsValid() bool {
	switch b {
	case BillingCycleMonthly, BillingCycleQuarterly, BillingCycleYearly:
		return true
	}
	return false
}

// Subscription represents a tracked recurring subscription. This struct maps
// directly to the `subscriptions` table in the database.
type Subscription struct {
	ID              int64        `json:"id"`
	Name            string       `json:"name"`
	Cost            float64      `json:"cost"`
	BillingCycle    BillingCycle `json:"billing_cycle"`
	NextPaymentDate time.Time    `json:"next_payment_date"`
	Category        *string      `json:"category,omitempty"`
	Description     *string      `json:"description,omitempty"`
	Status          Status       `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// CategoryOrDefault returns the category used for aggregation buckets.
// A missing or blank category falls into "other".
func (s Subscription) CategoryOrDefault() string {
	if s.Category == nil {
		return DefaultCategory
	}
	if c := strings.TrimSpace(*s.Category); c != "" {
		return c
	}
	return DefaultCategory
}

// DefaultCategory is the aggregation bucket for subscriptions without a
// category.
const DefaultCategory = "other"
