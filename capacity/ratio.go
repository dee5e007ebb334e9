/*
ratio.go - Anstellungsschlüssel and Fachkraftquote

PURPOSE:
  Turns the booking hours of present children and the working hours of
  present staff into the two regulated figures.

ANSTELLUNGSSCHLÜSSEL (staffing ratio):
  One staff hour is required per 11 weighted child booking hours.

    weight(child) = 2.0  under three years at the reference date
                    1.2  member of a group whose name contains "Schulkind"
                    1.0  otherwise

    requiredStaffHours = Σ(bookingHours × weight) / 11
    staffRatio         = availableStaffHours / requiredStaffHours

FACHKRAFTQUOTE (qualified-staff quota):
  Half of the required staff hours must come from qualified staff
  (qualification "E" or "K").

    requiredFachkraftHours = requiredStaffHoursForQuote × 0.5
    fachkraftQuotePercent  = fachkraftHours / totalStaffHours × 100

  requiredStaffHoursForQuote uses QuoteWeighting, which is the staffing
  weighting for now. A disability-based de-weighting is expected to
  replace it.

EXAMPLE:
  Two children, 10 booked hours each, one of them two years old:
    weighted = 10 × 2.0 + 10 × 1.0 = 30
    required = 30 / 11 = 2.73 staff hours
  With 3 staff hours available, 2 of them from an Erzieherin ("E"):
    staffRatio = 3 / 2.73 = 1.1, met
    quote = 2 / 3 × 100 = 66.7 %, required 1.36, met
*/
package capacity

import (
	"strings"

	"github.com/kitaplan/capacity-engine/generic"
	"github.com/kitaplan/capacity-engine/scenario"
	"github.com/shopspring/decimal"
)

var (
	// BookingHoursPerStaffHour is the regulated divisor (1:11).
	BookingHoursPerStaffHour = decimal.NewFromInt(11)

	// FachkraftShare is the minimum share of qualified staff hours.
	FachkraftShare = decimal.NewFromFloat(0.5)

	WeightUnderThree  = decimal.NewFromFloat(2.0)
	WeightSchoolChild = decimal.NewFromFloat(1.2)
	WeightDefault     = decimal.NewFromInt(1)

	hundred = decimal.NewFromInt(100)
)

// SchoolChildMarker identifies school-age groups by name.
const SchoolChildMarker = "Schulkind"

// QualifiedKeys are the qualifications counting as Fachkraft.
var QualifiedKeys = []string{"E", "K"}

// IsQualified reports whether the qualification counts as Fachkraft.
func IsQualified(q string) bool {
	for _, k := range QualifiedKeys {
		if q == k {
			return true
		}
	}
	return false
}

// =============================================================================
// WEIGHTING
// =============================================================================

// Weighting returns the factor a child's booking hours are multiplied with.
type Weighting func(child Item, at generic.TimePoint, groups []scenario.GroupDef) decimal.Decimal

// StaffingWeighting is the Anstellungsschlüssel child weighting.
func StaffingWeighting(child Item, at generic.TimePoint, groups []scenario.GroupDef) decimal.Decimal {
	if child.IsUnderThree(at) {
		return WeightUnderThree
	}
	for _, id := range child.GroupsAt(at) {
		if name, ok := scenario.GroupName(groups, id); ok && strings.Contains(name, SchoolChildMarker) {
			return WeightSchoolChild
		}
	}
	return WeightDefault
}

// =============================================================================
// RATIO ENGINE
// =============================================================================

// Contribution is the hours one present item brings into a window.
type Contribution struct {
	Item  Item
	Hours generic.Hours
	At    generic.TimePoint
}

// Ratios is the computed result for one window. Hour fields are decimal;
// the HTTP layer converts them for presentation.
type Ratios struct {
	ChildCount int
	StaffCount int

	ChildHours          generic.Hours
	WeightedChildHours  generic.Hours
	RequiredStaffHours  generic.Hours
	AvailableStaffHours generic.Hours
	StaffRatio          decimal.Decimal
	StaffRequirementMet bool

	FachkraftHours          generic.Hours
	RequiredFachkraftHours  generic.Hours
	FachkraftQuotePercent   decimal.Decimal
	FachkraftRequirementMet bool
}

// RatioEngine computes Ratios. The zero value is not usable; use
// NewRatioEngine.
type RatioEngine struct {
	// StaffWeighting weights child hours for the staffing ratio.
	StaffWeighting Weighting

	// QuoteWeighting weights child hours for the Fachkraftquote.
	QuoteWeighting Weighting
}

// NewRatioEngine returns an engine with the regulated weightings.
func NewRatioEngine() *RatioEngine {
	return &RatioEngine{
		StaffWeighting: StaffingWeighting,
		QuoteWeighting: StaffingWeighting,
	}
}

// Compute aggregates child and staff contributions of one window.
func (e *RatioEngine) Compute(children, staff []Contribution, groups []scenario.GroupDef) Ratios {
	r := Ratios{
		ChildCount: len(children),
		StaffCount: len(staff),
	}

	weighted, weightedForQuote := generic.ZeroHours, generic.ZeroHours
	for _, c := range children {
		r.ChildHours = r.ChildHours.Add(c.Hours)
		weighted = weighted.Add(c.Hours.Mul(e.StaffWeighting(c.Item, c.At, groups)))
		weightedForQuote = weightedForQuote.Add(c.Hours.Mul(e.QuoteWeighting(c.Item, c.At, groups)))
	}
	r.WeightedChildHours = weighted

	for _, s := range staff {
		r.AvailableStaffHours = r.AvailableStaffHours.Add(s.Hours)
		if IsQualified(s.Item.Qualification) {
			r.FachkraftHours = r.FachkraftHours.Add(s.Hours)
		}
	}

	r.RequiredStaffHours = weighted.Div(BookingHoursPerStaffHour)
	r.StaffRatio = generic.SafeDiv(r.AvailableStaffHours, r.RequiredStaffHours)
	r.StaffRequirementMet = r.AvailableStaffHours.GreaterThanOrEqual(r.RequiredStaffHours)

	r.RequiredFachkraftHours = weightedForQuote.Div(BookingHoursPerStaffHour).Mul(FachkraftShare)
	r.FachkraftQuotePercent = generic.SafeDiv(r.FachkraftHours, r.AvailableStaffHours).Mul(hundred)
	r.FachkraftRequirementMet = r.FachkraftHours.GreaterThanOrEqual(r.RequiredFachkraftHours)
	return r
}
