/*
Package scenario holds the entity store, the overlay store and the overlay
resolution engine.

PURPOSE:
  A facility's data (children, staff, bookings, group memberships,
  qualifications) lives in scenarios. A root scenario owns its data
  directly. A derived scenario is a sparse diff against its parent: it only
  stores what it changes (overlays), and inherits everything else through
  the chain of base scenarios.

KEY CONCEPTS IN THIS FILE (model.go):
  - Scenario: a named what-if variant, optionally based on a parent
  - DataItem: a child (demand) or a staff member (capacity)
  - Booking / DayTimes / TimeSegment: weekly care or working times
  - GroupAssignment, GroupDef, QualificationDef, QualificationAssignment
  - Overlay: per-scenario replacement values
  - Snapshot: the whole state, passed explicitly into every call

SNAPSHOT SHAPE:
  The JSON encoding of Snapshot is the save-file/persistence shape:
  {scenarios, dataByScenario, bookingsByScenario, groupsByScenario,
   groupDefsByScenario, qualificationDefsByScenario,
   qualificationAssignmentsByScenario, overlaysByScenario}

SEE ALSO:
  - chain.go: Scenario chain resolution
  - resolve.go: Effective values through the chain
  - write.go: Updates with overlay collapse
*/
package scenario

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kitaplan/capacity-engine/generic"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ScenarioID string
type ItemID string
type BookingID string
type AssignmentID string
type GroupID string

// NoGroup is the group filter value selecting items without any membership.
const NoGroup GroupID = "0"

// =============================================================================
// SCENARIO
// =============================================================================

// Scenario is a what-if variant. Scenarios form a forest via BaseScenarioID.
type Scenario struct {
	ID             ScenarioID `json:"id"`
	BaseScenarioID ScenarioID `json:"baseScenarioId,omitempty"`
	Name           string     `json:"name"`
	Confidence     int        `json:"confidence"`
	Likelihood     int        `json:"likelihood"`
	Desirability   int        `json:"desirability"`
	Remark         string     `json:"remark,omitempty"`
}

// IsRoot reports whether the scenario has no base.
func (s Scenario) IsRoot() bool { return s.BaseScenarioID == "" }

// =============================================================================
// DATA ITEM - Child (demand) or staff member (capacity)
// =============================================================================

type ItemType string

const (
	ItemDemand   ItemType = "demand"
	ItemCapacity ItemType = "capacity"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool { return t == ItemDemand || t == ItemCapacity }

// PausedState marks an absence window (parental leave, long illness).
type PausedState struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

// Range returns the pause window with open ends unbounded.
func (p PausedState) Range() generic.DateRange { return generic.ParseRange(p.Start, p.End) }

type DataItem struct {
	ID            ItemID       `json:"id"`
	Type          ItemType     `json:"type"`
	Name          string       `json:"name"`
	StartDate     string       `json:"startdate,omitempty"`
	EndDate       string       `json:"enddate,omitempty"`
	Birthdate     string       `json:"birthdate,omitempty"`
	Qualification string       `json:"qualification,omitempty"`
	GroupID       GroupID      `json:"groupId,omitempty"`
	PausedState   *PausedState `json:"pausedState,omitempty"`
	Remark        string       `json:"remark,omitempty"`
}

// IsPausedOn reports whether an enabled pause contains the date.
func (d DataItem) IsPausedOn(date generic.TimePoint) bool {
	return d.PausedState != nil && d.PausedState.Enabled && d.PausedState.Range().Contains(date)
}

// DataItemPatch carries a partial update; nil fields are left untouched.
type DataItemPatch struct {
	Type          *ItemType    `json:"type,omitempty"`
	Name          *string      `json:"name,omitempty"`
	StartDate     *string      `json:"startdate,omitempty"`
	EndDate       *string      `json:"enddate,omitempty"`
	Birthdate     *string      `json:"birthdate,omitempty"`
	Qualification *string      `json:"qualification,omitempty"`
	GroupID       *GroupID     `json:"groupId,omitempty"`
	PausedState   *PausedState `json:"pausedState,omitempty"`
	Remark        *string      `json:"remark,omitempty"`
}

// Apply returns a copy of item with the patch merged on top.
func (p DataItemPatch) Apply(item DataItem) DataItem {
	out := item
	if item.PausedState != nil {
		ps := *item.PausedState
		out.PausedState = &ps
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.StartDate != nil {
		out.StartDate = generic.NormalizeDate(*p.StartDate)
	}
	if p.EndDate != nil {
		out.EndDate = generic.NormalizeDate(*p.EndDate)
	}
	if p.Birthdate != nil {
		out.Birthdate = generic.NormalizeDate(*p.Birthdate)
	}
	if p.Qualification != nil {
		out.Qualification = *p.Qualification
	}
	if p.GroupID != nil {
		out.GroupID = *p.GroupID
	}
	if p.PausedState != nil {
		ps := PausedState{
			Enabled: p.PausedState.Enabled,
			Start:   generic.NormalizeDate(p.PausedState.Start),
			End:     generic.NormalizeDate(p.PausedState.End),
		}
		out.PausedState = &ps
	}
	if p.Remark != nil {
		out.Remark = *p.Remark
	}
	return out
}

// =============================================================================
// BOOKING - Weekly times within a date range
// =============================================================================

type TimeSegment struct {
	ID           string  `json:"id"`
	BookingStart string  `json:"booking_start"`
	BookingEnd   string  `json:"booking_end"`
	GroupID      GroupID `json:"groupId,omitempty"`
}

// Range parses the segment; ok is false for malformed clock times.
func (s TimeSegment) Range() (generic.ClockRange, bool) {
	start, ok1 := generic.ParseClock(s.BookingStart)
	end, ok2 := generic.ParseClock(s.BookingEnd)
	if !ok1 || !ok2 {
		return generic.ClockRange{}, false
	}
	return generic.ClockRange{Start: start, End: end}, true
}

// Hours is the segment length; malformed or inverted segments count zero.
func (s TimeSegment) Hours() generic.Hours {
	r, ok := s.Range()
	if !ok {
		return generic.ZeroHours
	}
	return generic.HoursBetween(r.Start, r.End)
}

// DayTimes lists the segments of one weekday (1 = Monday ... 5 = Friday).
type DayTimes struct {
	Day      int           `json:"day"`
	DayName  string        `json:"day_name"`
	Segments []TimeSegment `json:"segments"`
}

type Booking struct {
	ID        BookingID  `json:"id"`
	StartDate string     `json:"startdate,omitempty"`
	EndDate   string     `json:"enddate,omitempty"`
	Times     []DayTimes `json:"times"`
}

// Range returns the booking's validity with open ends unbounded.
func (b Booking) Range() generic.DateRange { return generic.ParseRange(b.StartDate, b.EndDate) }

// SegmentsOn returns all segments booked on the ISO weekday.
func (b Booking) SegmentsOn(weekday int) []TimeSegment {
	var out []TimeSegment
	for _, dt := range b.Times {
		if dt.Day == weekday {
			out = append(out, dt.Segments...)
		}
	}
	return out
}

// HoursOn sums the segment hours booked on the ISO weekday.
func (b Booking) HoursOn(weekday int) generic.Hours {
	total := generic.ZeroHours
	for _, seg := range b.SegmentsOn(weekday) {
		total = total.Add(seg.Hours())
	}
	return total
}

// BookingSet is the bookings of one item keyed by booking id.
type BookingSet map[BookingID]Booking

// Sorted returns the bookings ordered by start date, then id.
func (bs BookingSet) Sorted() []Booking {
	out := make([]Booking, 0, len(bs))
	for _, b := range bs {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate != out[j].StartDate {
			return out[i].StartDate < out[j].StartDate
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// =============================================================================
// GROUPS AND QUALIFICATIONS
// =============================================================================

// GroupAssignment is a date-bounded membership of a data item in a group.
type GroupAssignment struct {
	ID      AssignmentID `json:"id"`
	GroupID GroupID      `json:"groupId"`
	Start   string       `json:"start,omitempty"`
	End     string       `json:"end,omitempty"`
}

func (a GroupAssignment) Range() generic.DateRange { return generic.ParseRange(a.Start, a.End) }

// GroupAssignmentSet is the memberships of one item keyed by assignment id.
type GroupAssignmentSet map[AssignmentID]GroupAssignment

// Sorted returns the memberships ordered by start date, then id.
func (gs GroupAssignmentSet) Sorted() []GroupAssignment {
	out := make([]GroupAssignment, 0, len(gs))
	for _, a := range gs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type GroupDef struct {
	ID   GroupID `json:"id"`
	Name string  `json:"name"`
	Icon string  `json:"icon,omitempty"`
}

type QualificationDef struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type QualificationAssignment struct {
	Qualification string `json:"qualification"`
	DataItemID    ItemID `json:"dataItemId"`
}

// =============================================================================
// OVERLAY - Sparse per-scenario replacement values
// =============================================================================

// Overlay holds what a derived scenario changes relative to its parent.
// A present key replaces the inherited value; an absent key defers.
type Overlay struct {
	DataItems         map[ItemID]DataItem           `json:"dataItems,omitempty"`
	Bookings          map[ItemID]BookingSet         `json:"bookings,omitempty"`
	GroupAssignments  map[ItemID]GroupAssignmentSet `json:"groupAssignments,omitempty"`
	GroupDefs         []GroupDef                    `json:"groupDefs,omitempty"`
	QualificationDefs []QualificationDef            `json:"qualificationDefs,omitempty"`
}

// IsEmpty reports whether the overlay changes nothing.
func (o *Overlay) IsEmpty() bool {
	return o == nil || (len(o.DataItems) == 0 && len(o.Bookings) == 0 &&
		len(o.GroupAssignments) == 0 && len(o.GroupDefs) == 0 && len(o.QualificationDefs) == 0)
}

// =============================================================================
// SNAPSHOT - Entity store + overlay store
// =============================================================================

// Snapshot is the complete engine state. Resolution functions read it;
// write functions mutate it in place. Holders that share a snapshot across
// goroutines mutate a Clone and swap (see store/memory).
type Snapshot struct {
	Scenarios                          []Scenario                                           `json:"scenarios"`
	DataByScenario                     map[ScenarioID]map[ItemID]DataItem                  `json:"dataByScenario"`
	BookingsByScenario                 map[ScenarioID]map[ItemID]BookingSet                `json:"bookingsByScenario"`
	GroupsByScenario                   map[ScenarioID]map[ItemID]GroupAssignmentSet        `json:"groupsByScenario"`
	GroupDefsByScenario                map[ScenarioID][]GroupDef                           `json:"groupDefsByScenario"`
	QualificationDefsByScenario        map[ScenarioID][]QualificationDef                   `json:"qualificationDefsByScenario"`
	QualificationAssignmentsByScenario map[ScenarioID]map[ItemID][]QualificationAssignment `json:"qualificationAssignmentsByScenario"`
	OverlaysByScenario                 map[ScenarioID]*Overlay                             `json:"overlaysByScenario"`
}

// NewSnapshot returns an empty snapshot with all maps allocated.
func NewSnapshot() *Snapshot {
	s := &Snapshot{}
	s.ensure()
	return s
}

func (s *Snapshot) ensure() {
	if s.DataByScenario == nil {
		s.DataByScenario = make(map[ScenarioID]map[ItemID]DataItem)
	}
	if s.BookingsByScenario == nil {
		s.BookingsByScenario = make(map[ScenarioID]map[ItemID]BookingSet)
	}
	if s.GroupsByScenario == nil {
		s.GroupsByScenario = make(map[ScenarioID]map[ItemID]GroupAssignmentSet)
	}
	if s.GroupDefsByScenario == nil {
		s.GroupDefsByScenario = make(map[ScenarioID][]GroupDef)
	}
	if s.QualificationDefsByScenario == nil {
		s.QualificationDefsByScenario = make(map[ScenarioID][]QualificationDef)
	}
	if s.QualificationAssignmentsByScenario == nil {
		s.QualificationAssignmentsByScenario = make(map[ScenarioID]map[ItemID][]QualificationAssignment)
	}
	if s.OverlaysByScenario == nil {
		s.OverlaysByScenario = make(map[ScenarioID]*Overlay)
	}
}

// Scenario looks up a scenario by id.
func (s *Snapshot) Scenario(id ScenarioID) (Scenario, bool) {
	if s == nil {
		return Scenario{}, false
	}
	for _, sc := range s.Scenarios {
		if sc.ID == id {
			return sc, true
		}
	}
	return Scenario{}, false
}

// Clone returns a deep copy. The JSON encoding is the snapshot's canonical
// form, so a round trip through it copies every nested slice and map.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return NewSnapshot()
	}
	data, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("snapshot not serializable: %v", err))
	}
	out, err := Decode(data)
	if err != nil {
		panic(fmt.Sprintf("snapshot not deserializable: %v", err))
	}
	return out
}

// Decode parses a snapshot from its JSON form and allocates missing maps.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	s.ensure()
	return &s, nil
}

// Encode returns the snapshot's JSON form.
func (s *Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}
