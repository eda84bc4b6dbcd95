/**
 * @description
 * This file implements the financial aggregation engine. Every function is a
 * pure computation over a snapshot of subscriptions with an explicit "now",
 * so results are deterministic and trivially testable.
 *
 * @notes
 * - Only chargeable subscriptions (status active or trial) contribute to
 *   totals and breakdowns.
 * - Date comparisons are day-granular: timestamps are truncated to UTC
 *   midnight before comparing.
 * - Sums use plain float64 accumulation. Rounding and currency display are
 *   the formatter's concern, not the engine's.
 */

package app

import (
	"sort"
	"time"

	"github.com/subtally/tracker-service/internal/domain"
)

const (
	// DefaultTopN bounds topByMonthlyCost when the caller does not say.
	DefaultTopN = 10
	// DefaultReminderHorizonDays is the dueSoon lookahead window.
	DefaultReminderHorizonDays = 30
	// UrgentReminderDays marks a due payment as urgent.
	UrgentReminderDays = 7
)

// MonthlyEquivalent normalizes a cost to a per-month figure.
func MonthlyEquivalent(cost float64, cycle domain.BillingCycle) float64 {
	switch cycle {
	case domain.BillingCycleQuarterly:
		return cost / 3
	case domain.BillingCycleYearly:
		return cost / 12
	default:
		return cost
	}
}

// YearlyEquivalent normalizes a cost to a per-year figure.
func YearlyEquivalent(cost float64, cycle domain.BillingCycle) float64 {
	switch cycle {
	case domain.BillingCycleMonthly:
		return cost * 12
	case domain.BillingCycleQuarterly:
		return cost * 4
	default:
		return cost
	}
}

// MonthlyTotal sums the monthly-equivalent cost of all chargeable records.
func MonthlyTotal(records []domain.Subscription) float64 {
	total := 0.0
	for _, sub := range records {
		if !sub.Status.IsChargeable() {
			continue
		}
		total += MonthlyEquivalent(sub.Cost, sub.BillingCycle)
	}
	return total
}

// YearlyTotal sums the yearly-equivalent cost of all chargeable records.
func YearlyTotal(records []domain.Subscription) float64 {
	total := 0.0
	for _, sub := range records {
		if !sub.Status.IsChargeable() {
			continue
		}
		total += YearlyEquivalent(sub.Cost, sub.BillingCycle)
	}
	return total
}

// CategoryBreakdown maps each category to its summed monthly-equivalent
// cost across chargeable records. Records without a category land in the
// "other" bucket.
func CategoryBreakdown(records []domain.Subscription) map[string]float64 {
	breakdown := make(map[string]float64)
	for _, sub := range records {
		if !sub.Status.IsChargeable() {
			continue
		}
		breakdown[sub.CategoryOrDefault()] += MonthlyEquivalent(sub.Cost, sub.BillingCycle)
	}
	return breakdown
}

// TopByMonthlyCost returns the n most expensive chargeable records by
// monthly-equivalent cost, descending. Ties keep their original relative
// order. A non-positive n falls back to DefaultTopN.
func TopByMonthlyCost(records []domain.Subscription, n int) []domain.Subscription {
	if n <= 0 {
		n = DefaultTopN
	}
	top := make([]domain.Subscription, 0, len(records))
	for _, sub := range records {
		if sub.Status.IsChargeable() {
			top = append(top, sub)
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		return MonthlyEquivalent(top[i].Cost, top[i].BillingCycle) > MonthlyEquivalent(top[j].Cost, top[j].BillingCycle)
	})
	if len(top) > n {
		top = top[:n]
	}
	return top
}

// DueWithin returns chargeable records whose next payment falls inside the
// inclusive [from, to] window at day granularity.
func DueWithin(records []domain.Subscription, from, to time.Time) []domain.Subscription {
	fromDay := dayOf(from)
	toDay := dayOf(to)
	var due []domain.Subscription
	for _, sub := range records {
		if !sub.Status.IsChargeable() {
			continue
		}
		day := dayOf(sub.NextPaymentDate)
		if day.Before(fromDay) || day.After(toDay) {
			continue
		}
		due = append(due, sub)
	}
	return due
}

// Overdue returns active records whose payment date has already passed,
// oldest first.
func Overdue(records []domain.Subscription, now time.Time) []domain.Subscription {
	today := dayOf(now)
	var overdue []domain.Subscription
	for _, sub := range records {
		if sub.Status != domain.StatusActive {
			continue
		}
		if dayOf(sub.NextPaymentDate).Before(today) {
			overdue = append(overdue, sub)
		}
	}
	sort.SliceStable(overdue, func(i, j int) bool {
		return overdue[i].NextPaymentDate.Before(overdue[j].NextPaymentDate)
	})
	return overdue
}

// ReminderEntry is an upcoming payment with its urgency annotation.
type ReminderEntry struct {
	Subscription domain.Subscription `json:"subscription"`
	DaysUntil    int                 `json:"days_until"`
	Urgent       bool                `json:"urgent"`
}

// DueSoon returns active records due between now and now+horizonDays,
// soonest first. Entries within UrgentReminderDays are flagged urgent.
// A non-positive horizon falls back to DefaultReminderHorizonDays.
func DueSoon(records []domain.Subscription, now time.Time, horizonDays int) []ReminderEntry {
	if horizonDays <= 0 {
		horizonDays = DefaultReminderHorizonDays
	}
	today := dayOf(now)
	var entries []ReminderEntry
	for _, sub := range records {
		if sub.Status != domain.StatusActive {
			continue
		}
		days := daysBetween(today, dayOf(sub.NextPaymentDate))
		if days < 0 || days > horizonDays {
			continue
		}
		entries = append(entries, ReminderEntry{
			Subscription: sub,
			DaysUntil:    days,
			Urgent:       days <= UrgentReminderDays,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Subscription.NextPaymentDate.Before(entries[j].Subscription.NextPaymentDate)
	})
	return entries
}

// FilterByDateRange restricts records to those whose next payment lies in
// the optional [from, to] window. A nil bound is unbounded on that side.
func FilterByDateRange(records []domain.Subscription, from, to *time.Time) []domain.Subscription {
	if from == nil && to == nil {
		return records
	}
	var filtered []domain.Subscription
	for _, sub := range records {
		day := dayOf(sub.NextPaymentDate)
		if from != nil && day.Before(dayOf(*from)) {
			continue
		}
		if to != nil && day.After(dayOf(*to)) {
			continue
		}
		filtered = append(filtered, sub)
	}
	return filtered
}

// dayOf truncates a timestamp to UTC midnight.
func dayOf(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days from one midnight to another.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
