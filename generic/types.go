/*
Package generic provides the domain-agnostic building blocks of the capacity engine.

PURPOSE:
  This package contains the primitives the scenario and capacity packages
  share: calendar dates, clock times, periods, hour arithmetic, layered
  lookups and the error vocabulary. Nothing in here knows about children,
  staff or BayKiBig; those rules live in the capacity package.

KEY CONCEPTS IN THIS FILE (types.go):
  - Hours: a decimal quantity of hours (booking hours, staff hours)
  - Canonical comparison of values via their JSON encoding

DESIGN PRINCIPLES:
  1. Precision: hours use decimal.Decimal so tiled periods sum exactly
  2. Totality: helpers degrade to zero values instead of failing
  3. One date boundary: every date string is parsed in time.go

USAGE:
  h := generic.HoursBetween(generic.MustParseClock("08:00"), generic.MustParseClock("12:30"))
  total := generic.SumHours(h, generic.NewHours(0.5))

SEE ALSO:
  - time.go: TimePoint, Clock and date normalization
  - period.go: Period and period generation
  - layers.go: Ordered layer lookup used for scenario overlays
*/
package generic

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// =============================================================================
// HOURS - Decimal quantity of hours
// =============================================================================

// Hours is a quantity of hours. Always decimal, never float, so that sums
// over contiguous periods match the sum over their union exactly.
type Hours = decimal.Decimal

var (
	// ZeroHours is the additive identity.
	ZeroHours = decimal.Zero

	minutesPerHour = decimal.NewFromInt(60)
)

// NewHours converts a float to Hours.
func NewHours(h float64) Hours { return decimal.NewFromFloat(h) }

// HoursFromMinutes converts whole minutes to Hours.
func HoursFromMinutes(minutes int) Hours {
	return decimal.NewFromInt(int64(minutes)).Div(minutesPerHour)
}

// SumHours adds all values.
func SumHours(values ...Hours) Hours {
	total := ZeroHours
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// SafeDiv divides a by b and returns zero when b is zero.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// =============================================================================
// CANONICAL COMPARISON
// =============================================================================

// CanonicalJSON encodes v in a stable form: struct fields in declaration
// order and map keys sorted, which encoding/json already guarantees.
func CanonicalJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// CanonicalEqual reports whether a and b serialize identically.
// Values that cannot be serialized are never equal.
func CanonicalEqual(a, b any) bool {
	ja, jb := CanonicalJSON(a), CanonicalJSON(b)
	if ja == nil || jb == nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
