/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Engine results carry
  decimal hours; the DTOs convert them to plain numbers (rounded to two
  places) so the frontend does not need a decimal library.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Items:
    ItemDTO, QualificationRequest

  Charts:
    RatiosDTO, WeeklySegmentDTO, WeeklyChartDTO,
    MidtermPeriodDTO, MidtermChartDTO

  Filters:
    FilterOptionsDTO, FilterSyncRequest

  Demos:
    DemoDTO, LoadDemoRequest

Scenarios, data items, bookings and group assignments are sent as their
scenario package types; their JSON shape is the snapshot shape.

SEE ALSO:
  - handlers.go: Uses these types
  - scenario/model.go: Entity JSON shape
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/kitaplan/capacity-engine/capacity"
	"github.com/kitaplan/capacity-engine/scenario"
)

// =============================================================================
// ITEMS
// =============================================================================

// ItemDTO is one data item as seen in a scenario, with everything resolved.
type ItemDTO struct {
	Item           scenario.DataItem                  `json:"item"`
	Owner          scenario.ScenarioID                `json:"owner"`
	Overlaid       bool                               `json:"overlaid"`
	Qualification  string                             `json:"qualification"`
	Bookings       []scenario.Booking                 `json:"bookings"`
	Groups         []scenario.GroupAssignment         `json:"groups"`
	Qualifications []scenario.QualificationAssignment `json:"qualifications"`
}

// QualificationRequest assigns a qualification to an item.
type QualificationRequest struct {
	Qualification string `json:"qualification"`
}

// =============================================================================
// CHARTS
// =============================================================================

// RatiosDTO is capacity.Ratios with numbers instead of decimals.
type RatiosDTO struct {
	ChildCount              int     `json:"childCount"`
	StaffCount              int     `json:"staffCount"`
	ChildHours              float64 `json:"childHours"`
	WeightedChildHours      float64 `json:"weightedChildHours"`
	RequiredStaffHours      float64 `json:"requiredStaffHours"`
	AvailableStaffHours     float64 `json:"availableStaffHours"`
	StaffRatio              float64 `json:"staffRatio"`
	StaffRequirementMet     bool    `json:"staffRequirementMet"`
	FachkraftHours          float64 `json:"fachkraftHours"`
	RequiredFachkraftHours  float64 `json:"requiredFachkraftHours"`
	FachkraftQuotePercent   float64 `json:"fachkraftQuotePercent"`
	FachkraftRequirementMet bool    `json:"fachkraftRequirementMet"`
}

type WeeklySegmentDTO struct {
	Date       string    `json:"date"`
	Weekday    int       `json:"weekday"`
	DayName    string    `json:"dayName"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
	Label      string    `json:"label"`
	Bedarf     int       `json:"bedarf"`
	Kapazitaet int       `json:"kapazitaet"`
	Ratios     RatiosDTO `json:"ratios"`
}

type WeeklyChartDTO struct {
	ScenarioID string             `json:"scenarioId"`
	WeekStart  string             `json:"weekStart"`
	Label      string             `json:"label"`
	Segments   []WeeklySegmentDTO `json:"segments"`
}

type MidtermPeriodDTO struct {
	Label      string    `json:"label"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
	Bedarf     int       `json:"bedarf"`
	Kapazitaet int       `json:"kapazitaet"`
	Ratios     RatiosDTO `json:"ratios"`
}

type MidtermChartDTO struct {
	ScenarioID string             `json:"scenarioId"`
	Dimension  string             `json:"dimension"`
	Periods    []MidtermPeriodDTO `json:"periods"`
}

// =============================================================================
// FILTERS
// =============================================================================

// GroupOptionDTO is one selectable group. ID "0" stands for "no group".
type GroupOptionDTO struct {
	ID   scenario.GroupID `json:"id"`
	Name string           `json:"name"`
}

type FilterOptionsDTO struct {
	Groups         []GroupOptionDTO `json:"groups"`
	Qualifications []string         `json:"qualifications"`
}

// FilterSyncRequest carries the client's previous filter state.
type FilterSyncRequest struct {
	Groups         capacity.FilterState[scenario.GroupID] `json:"groups"`
	Qualifications capacity.FilterState[string]           `json:"qualifications"`
}

type FilterSyncResponse = FilterSyncRequest

// =============================================================================
// DEMOS
// =============================================================================

// DemoDTO describes a loadable demo facility.
type DemoDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadDemoRequest struct {
	DemoID string `json:"demo_id"`
}

// =============================================================================
// GENERIC RESPONSES
// =============================================================================

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type SaveResponse struct {
	Saved bool `json:"saved"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func toRatiosDTO(r capacity.Ratios) RatiosDTO {
	return RatiosDTO{
		ChildCount:              r.ChildCount,
		StaffCount:              r.StaffCount,
		ChildHours:              toFloat(r.ChildHours),
		WeightedChildHours:      toFloat(r.WeightedChildHours),
		RequiredStaffHours:      toFloat(r.RequiredStaffHours),
		AvailableStaffHours:     toFloat(r.AvailableStaffHours),
		StaffRatio:              toFloat(r.StaffRatio),
		StaffRequirementMet:     r.StaffRequirementMet,
		FachkraftHours:          toFloat(r.FachkraftHours),
		RequiredFachkraftHours:  toFloat(r.RequiredFachkraftHours),
		FachkraftQuotePercent:   toFloat(r.FachkraftQuotePercent),
		FachkraftRequirementMet: r.FachkraftRequirementMet,
	}
}

func toWeeklyChartDTO(c capacity.WeeklyChart) WeeklyChartDTO {
	dto := WeeklyChartDTO{
		ScenarioID: string(c.ScenarioID),
		WeekStart:  c.WeekStart,
		Label:      c.Label,
		Segments:   make([]WeeklySegmentDTO, len(c.Segments)),
	}
	for i, s := range c.Segments {
		dto.Segments[i] = WeeklySegmentDTO{
			Date:       s.Date,
			Weekday:    s.Weekday,
			DayName:    s.DayName,
			Start:      s.Start,
			End:        s.End,
			Label:      s.Label,
			Bedarf:     s.Bedarf,
			Kapazitaet: s.Kapazitaet,
			Ratios:     toRatiosDTO(s.Ratios),
		}
	}
	return dto
}

func toMidtermChartDTO(c capacity.MidtermChart) MidtermChartDTO {
	dto := MidtermChartDTO{
		ScenarioID: string(c.ScenarioID),
		Dimension:  string(c.Dimension),
		Periods:    make([]MidtermPeriodDTO, len(c.Periods)),
	}
	for i, p := range c.Periods {
		dto.Periods[i] = MidtermPeriodDTO{
			Label:      p.Label,
			Start:      p.Start,
			End:        p.End,
			Bedarf:     p.Bedarf,
			Kapazitaet: p.Kapazitaet,
			Ratios:     toRatiosDTO(p.Ratios),
		}
	}
	return dto
}
