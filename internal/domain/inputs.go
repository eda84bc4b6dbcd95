/**
 * @description
 * This file defines the DTOs (Data Transfer Objects) for incoming API
 * requests: subscription create and partial-update payloads and the list
 * filter. Field types are deliberately loose (pointers and raw strings) so
 * the validator, not the JSON decoder, decides which rejection code applies.
 *
 * @notes
 * - Amount accepts a JSON number or a numeric string; anything else decodes
 *   to NaN and is rejected by the validator as an invalid cost.
 * - OptionalString distinguishes "field omitted" from "field set to null",
 *   which a plain pointer cannot express. Omitted means unchanged on update;
 *   null means cleared.
 */

package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Amount is a monetary input value. It decodes leniently so that malformed
// costs surface as a validation error rather than a JSON decoding failure.
type Amount float64

// UnmarshalJSON accepts a JSON number or a numeric string. Unparseable
// values become NaN for the validator to reject.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*a = Amount(math.NaN())
		return nil
	}
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = Amount(math.NaN())
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*a = Amount(math.NaN())
		return nil
	}
	*a = Amount(value)
	return nil
}

// Float64 returns the underlying numeric value.
func (a Amount) Float64() float64 {
	return float64(a)
}

// IsUsable reports whether the amount is a finite number. NaN and infinities
// mark values the decoder could not interpret.
func (a Amount) IsUsable() bool {
	f := float64(a)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// OptionalString models tri-state JSON fields on partial updates:
// Set=false means the field was omitted, Set=true with a nil Value means it
// was explicitly null, and Set=true with a non-nil Value carries the value.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON marks the field as present and records its value. The
// encoding/json package only invokes this for fields that appear in the
// payload, so omitted fields keep Set=false.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if strings.TrimSpace(string(data)) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// CreateSubscriptionInput is the DTO for creating a subscription. All
// pointer fields are required; nil means the client omitted them.
type CreateSubscriptionInput struct {
	Name            *string `json:"name"`
	Cost            *Amount `json:"cost"`
	BillingCycle    *string `json:"billing_cycle"`
	NextPaymentDate *string `json:"next_payment_date"`
	Category        *string `json:"category"`
	Description     *string `json:"description"`
	Status          *string `json:"status"`
}

// UpdateSubscriptionInput is the DTO for partial updates. Omitted fields
// leave the stored value untouched; category and description may also be
// cleared with an explicit null.
type UpdateSubscriptionInput struct {
	Name            *string        `json:"name"`
	Cost            *Amount        `json:"cost"`
	BillingCycle    *string        `json:"billing_cycle"`
	NextPaymentDate *string        `json:"next_payment_date"`
	Category        OptionalString `json:"category"`
	Description     OptionalString `json:"description"`
	Status          *string        `json:"status"`
}

// SubscriptionFilter narrows list queries. Enum fields are validated before
// the filter reaches the store; Search matches name and description.
type SubscriptionFilter struct {
	Search       string
	Status       *Status
	Category     *string
	BillingCycle *BillingCycle
	Limit        int
	Offset       int
}
