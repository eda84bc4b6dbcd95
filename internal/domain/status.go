/**
 * @description
 * This file defines the subscription status lifecycle: the closed set of
 * statuses, the allowed-transition graph, and the query helpers the service
 * and API layers use to validate status changes.
 *
 * @notes
 * - Statuses are a closed string type, not free-form strings, so an unknown
 *   value can never reach the store.
 * - Self-transitions are always allowed and are therefore not listed in the
 *   adjacency table.
 */

package domain

import "strings"

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusTrial     Status = "trial"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// statusTransitions maps each status to the statuses it may move to next.
// cancelled and expired point at each other but neither leads back to an
// active-like state.
var statusTransitions = map[Status][]Status{
	StatusTrial:     {StatusActive, StatusCancelled},
	StatusActive:    {StatusPaused, StatusCancelled, StatusExpired},
	StatusPaused:    {StatusCancelled, StatusExpired},
	StatusCancelled: {StatusExpired},
	StatusExpired:   {StatusCancelled},
}

var statusLabels = map[Status]string{
	StatusTrial:     "Trial",
	StatusActive:    "Active",
	StatusPaused:    "Paused",
	StatusCancelled: "Cancelled",
	StatusExpired:   "Expired",
}

// AllStatuses returns every status in declaration order.
func AllStatuses() []Status {
	return []Status{StatusTrial, StatusActive, StatusPaused, StatusCancelled, StatusExpired}
}

// ParseStatus normalizes a raw value (case-insensitive, surrounding
// whitespace ignored) and reports whether it names a known status.
func ParseStatus(value string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", false
	}
	return s, true
}

// IsValid reports whether s is a member of the closed status set.
func (s Status) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// Label returns the human-readable form of the status for API consumers.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsChargeable reports whether subscriptions in this status count toward
// spend totals.
func (s Status) IsChargeable() bool {
	return s == StatusActive || s == StatusTrial
}

// CanTransitionTo reports whether the move from s to next is allowed.
// A status may always transition to itself. Unknown statuses on either
// side are rejected.
func (s Status) CanTransitionTo(next Status) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if next == s {
		return true
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PermittedNextStatuses returns the statuses reachable from current,
// including current itself. When current is nil or unknown (a record whose
// status is not yet decided) the full set is returned.
func PermittedNextStatuses(current *Status) []Status {
	if current == nil || !current.IsValid() {
		return AllStatuses()
	}
	options := make([]Status, 0, len(statusTransitions[*current])+1)
	options = append(options, *current)
	options = append(options, statusTransitions[*current]...)
	return options
}
