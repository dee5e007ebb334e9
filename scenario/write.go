/*
write.go - Scenario and entity mutations with overlay collapse

PURPOSE:
  All writes into a Snapshot. Writes are scoped to one scenario and always
  target its topmost layer:

    - If the scenario owns the item (it sits in the scenario's own entity
      store, which is always the case for root scenarios), the entity store
      row is written directly. It is the source of truth.
    - Otherwise the new value is compared with the parent's effective
      value. Equal (canonical JSON) → the overlay entry is deleted and the
      scenario inherits again. Different → the overlay entry is upserted.

  This keeps overlay chains minimal: no overlay entry ever repeats what
  the parent already says.

STRUCTURAL CHANGES:
  Deleting an item is only allowed in its owning scenario and cascades to
  its bookings, memberships, qualification assignments and to every
  overlay entry of the item in every scenario.

SEE ALSO:
  - resolve.go: Effective values used for comparison
  - chain.go: ValidateBase for scenario base changes
*/
package scenario

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kitaplan/capacity-engine/generic"
)

// NewID returns a fresh random identifier.
func NewID() string { return uuid.New().String() }

// =============================================================================
// SCENARIOS
// =============================================================================

// AddScenario appends a scenario. An empty id is generated.
func AddScenario(s *Snapshot, sc Scenario) (Scenario, error) {
	s.ensure()
	if sc.ID == "" {
		sc.ID = ScenarioID(NewID())
	}
	if _, exists := s.Scenario(sc.ID); exists {
		return Scenario{}, fmt.Errorf("%w: %s", generic.ErrScenarioExists, sc.ID)
	}
	if err := ValidateBase(s.Scenarios, sc.ID, sc.BaseScenarioID); err != nil {
		return Scenario{}, err
	}
	s.Scenarios = append(s.Scenarios, sc)
	return sc, nil
}

// UpdateScenario replaces the scenario's attributes. Changing the base is
// validated against cycles.
func UpdateScenario(s *Snapshot, sc Scenario) error {
	for i, existing := range s.Scenarios {
		if existing.ID != sc.ID {
			continue
		}
		if sc.BaseScenarioID != existing.BaseScenarioID {
			if err := ValidateBase(s.Scenarios, sc.ID, sc.BaseScenarioID); err != nil {
				return err
			}
		}
		s.Scenarios[i] = sc
		return nil
	}
	return generic.ScenarioNotFound(string(sc.ID))
}

// DeleteScenario removes a scenario with all its entity rows and overlays.
// Scenarios that others are based on cannot be deleted.
func DeleteScenario(s *Snapshot, id ScenarioID) error {
	if _, ok := s.Scenario(id); !ok {
		return generic.ScenarioNotFound(string(id))
	}
	if len(Children(s.Scenarios, id)) > 0 {
		return fmt.Errorf("%w: %s", generic.ErrScenarioHasChildren, id)
	}
	kept := s.Scenarios[:0:0]
	for _, sc := range s.Scenarios {
		if sc.ID != id {
			kept = append(kept, sc)
		}
	}
	s.Scenarios = kept
	delete(s.DataByScenario, id)
	delete(s.BookingsByScenario, id)
	delete(s.GroupsByScenario, id)
	delete(s.GroupDefsByScenario, id)
	delete(s.QualificationDefsByScenario, id)
	delete(s.QualificationAssignmentsByScenario, id)
	delete(s.OverlaysByScenario, id)
	return nil
}

// =============================================================================
// WRITE TARGET
// =============================================================================

// target describes where a write for an item in a scenario must go.
type target struct {
	scenario Scenario
	owned    bool // write the entity store row of scenario
}

func resolveTarget(s *Snapshot, scenarioID ScenarioID, itemID ItemID) (target, error) {
	sc, ok := s.Scenario(scenarioID)
	if !ok {
		return target{}, generic.ScenarioNotFound(string(scenarioID))
	}
	owner, ok := OwnerOf(s, scenarioID, itemID)
	if !ok {
		return target{}, generic.ItemNotFound(string(itemID))
	}
	return target{scenario: sc, owned: owner == scenarioID || sc.IsRoot()}, nil
}

func (s *Snapshot) overlayForWrite(id ScenarioID) *Overlay {
	s.ensure()
	o := s.OverlaysByScenario[id]
	if o == nil {
		o = &Overlay{}
		s.OverlaysByScenario[id] = o
	}
	return o
}

// pruneOverlay drops empty overlay maps so the overlay store stays minimal.
func (s *Snapshot) pruneOverlay(id ScenarioID) {
	o := s.OverlaysByScenario[id]
	if o == nil {
		return
	}
	if len(o.DataItems) == 0 {
		o.DataItems = nil
	}
	if len(o.Bookings) == 0 {
		o.Bookings = nil
	}
	if len(o.GroupAssignments) == 0 {
		o.GroupAssignments = nil
	}
	if o.IsEmpty() {
		delete(s.OverlaysByScenario, id)
	}
}

// =============================================================================
// DATA ITEMS
// =============================================================================

// AddDataItem creates an item owned by scenarioID. An empty id is generated.
func AddDataItem(s *Snapshot, scenarioID ScenarioID, item DataItem) (DataItem, error) {
	s.ensure()
	if _, ok := s.Scenario(scenarioID); !ok {
		return DataItem{}, generic.ScenarioNotFound(string(scenarioID))
	}
	if !item.Type.Valid() {
		return DataItem{}, fmt.Errorf("%w: item type %q", generic.ErrInvalidInput, item.Type)
	}
	if item.ID == "" {
		item.ID = ItemID(NewID())
	}
	if _, exists := EffectiveDataItem(s, scenarioID, item.ID); exists {
		return DataItem{}, fmt.Errorf("%w: item %s already exists", generic.ErrInvalidInput, item.ID)
	}
	item.StartDate = generic.NormalizeDate(item.StartDate)
	item.EndDate = generic.NormalizeDate(item.EndDate)
	item.Birthdate = generic.NormalizeDate(item.Birthdate)
	if item.PausedState != nil {
		ps := *item.PausedState
		ps.Start = generic.NormalizeDate(ps.Start)
		ps.End = generic.NormalizeDate(ps.End)
		item.PausedState = &ps
	}

	if s.DataByScenario[scenarioID] == nil {
		s.DataByScenario[scenarioID] = make(map[ItemID]DataItem)
	}
	s.DataByScenario[scenarioID][item.ID] = item
	return item, nil
}

// UpdateDataItem merges patch onto the item as seen in scenarioID and stores
// the result in the scenario's topmost layer, collapsing the overlay when
// the result equals the parent's effective value.
func UpdateDataItem(s *Snapshot, scenarioID ScenarioID, itemID ItemID, patch DataItemPatch) (DataItem, error) {
	t, err := resolveTarget(s, scenarioID, itemID)
	if err != nil {
		return DataItem{}, err
	}
	current, _ := EffectiveDataItem(s, scenarioID, itemID)
	merged := patch.Apply(current)
	merged.ID = itemID
	if !merged.Type.Valid() {
		return DataItem{}, fmt.Errorf("%w: item type %q", generic.ErrInvalidInput, merged.Type)
	}

	if t.owned {
		s.DataByScenario[scenarioID][itemID] = merged
		return merged, nil
	}

	parent, _ := EffectiveDataItem(s, t.scenario.BaseScenarioID, itemID)
	o := s.overlayForWrite(scenarioID)
	if generic.CanonicalEqual(merged, parent) {
		delete(o.DataItems, itemID)
	} else {
		if o.DataItems == nil {
			o.DataItems = make(map[ItemID]DataItem)
		}
		o.DataItems[itemID] = merged
	}
	s.pruneOverlay(scenarioID)
	return merged, nil
}

// DeleteDataItem removes an item from its owning scenario and every trace
// of it elsewhere.
func DeleteDataItem(s *Snapshot, scenarioID ScenarioID, itemID ItemID) error {
	if _, ok := s.Scenario(scenarioID); !ok {
		return generic.ScenarioNotFound(string(scenarioID))
	}
	if _, owned := s.DataByScenario[scenarioID][itemID]; !owned {
		if _, visible := EffectiveDataItem(s, scenarioID, itemID); visible {
			return fmt.Errorf("%w: %s", generic.ErrNotOwner, itemID)
		}
		return generic.ItemNotFound(string(itemID))
	}

	affected := []ScenarioID{scenarioID}
	for _, d := range Descendants(s.Scenarios, scenarioID) {
		if !shadowsItem(s, d.ID, scenarioID, itemID) {
			affected = append(affected, d.ID)
		}
	}

	delete(s.DataByScenario[scenarioID], itemID)
	for _, id := range affected {
		delete(s.BookingsByScenario[id], itemID)
		delete(s.GroupsByScenario[id], itemID)
		delete(s.QualificationAssignmentsByScenario[id], itemID)
		removeItemOverlay(s, id, itemID)
	}
	return nil
}

// shadowsItem reports whether a scenario between id (inclusive) and its
// ancestor owner (exclusive) holds its own entity row for itemID. Such a
// row is a different item that only shares the id.
func shadowsItem(s *Snapshot, id, owner ScenarioID, itemID ItemID) bool {
	for _, sc := range GetScenarioChain(s.Scenarios, id) {
		if sc.ID == owner {
			return false
		}
		if _, own := s.DataByScenario[sc.ID][itemID]; own {
			return true
		}
	}
	return false
}

// RevertToBase drops every overlay entry of the item in scenarioID.
func RevertToBase(s *Snapshot, scenarioID ScenarioID, itemID ItemID) error {
	if _, ok := s.Scenario(scenarioID); !ok {
		return generic.ScenarioNotFound(string(scenarioID))
	}
	if _, ok := EffectiveDataItem(s, scenarioID, itemID); !ok {
		return generic.ItemNotFound(string(itemID))
	}
	removeItemOverlay(s, scenarioID, itemID)
	return nil
}

func removeItemOverlay(s *Snapshot, scenarioID ScenarioID, itemID ItemID) {
	o := s.OverlaysByScenario[scenarioID]
	if o == nil {
		return
	}
	delete(o.DataItems, itemID)
	delete(o.Bookings, itemID)
	delete(o.GroupAssignments, itemID)
	s.pruneOverlay(scenarioID)
}

// =============================================================================
// BOOKINGS
// =============================================================================

// PutBooking creates or replaces one booking of an item. Empty booking and
// segment ids are generated; dates are normalized to ISO.
func PutBooking(s *Snapshot, scenarioID ScenarioID, itemID ItemID, b Booking) (Booking, error) {
	if err := validateBooking(b); err != nil {
		return Booking{}, err
	}
	b = normalizeBooking(b)
	err := writeBookings(s, scenarioID, itemID, func(set BookingSet) { set[b.ID] = b })
	return b, err
}

// DeleteBooking removes one booking of an item.
func DeleteBooking(s *Snapshot, scenarioID ScenarioID, itemID ItemID, bookingID BookingID) error {
	return writeBookings(s, scenarioID, itemID, func(set BookingSet) { delete(set, bookingID) })
}

func writeBookings(s *Snapshot, scenarioID ScenarioID, itemID ItemID, change func(BookingSet)) error {
	t, err := resolveTarget(s, scenarioID, itemID)
	if err != nil {
		return err
	}
	set := EffectiveBookings(s, scenarioID, itemID)
	change(set)

	if t.owned {
		if s.BookingsByScenario[scenarioID] == nil {
			s.BookingsByScenario[scenarioID] = make(map[ItemID]BookingSet)
		}
		s.BookingsByScenario[scenarioID][itemID] = set
		return nil
	}

	parent := EffectiveBookings(s, t.scenario.BaseScenarioID, itemID)
	o := s.overlayForWrite(scenarioID)
	if generic.CanonicalEqual(set, parent) {
		delete(o.Bookings, itemID)
	} else {
		if o.Bookings == nil {
			o.Bookings = make(map[ItemID]BookingSet)
		}
		o.Bookings[itemID] = set
	}
	s.pruneOverlay(scenarioID)
	return nil
}

func validateBooking(b Booking) error {
	for _, dt := range b.Times {
		if dt.Day < 1 || dt.Day > 7 {
			return fmt.Errorf("%w: weekday %d", generic.ErrInvalidInput, dt.Day)
		}
		for _, seg := range dt.Segments {
			if _, ok := seg.Range(); !ok {
				return fmt.Errorf("%w: segment %s-%s", generic.ErrInvalidInput, seg.BookingStart, seg.BookingEnd)
			}
		}
	}
	return nil
}

var dayNames = map[int]string{
	1: "Montag", 2: "Dienstag", 3: "Mittwoch", 4: "Donnerstag", 5: "Freitag", 6: "Samstag", 7: "Sonntag",
}

// DayName returns the German weekday name for an ISO weekday.
func DayName(day int) string { return dayNames[day] }

func normalizeBooking(b Booking) Booking {
	if b.ID == "" {
		b.ID = BookingID(NewID())
	}
	b.StartDate = generic.NormalizeDate(b.StartDate)
	b.EndDate = generic.NormalizeDate(b.EndDate)
	times := make([]DayTimes, len(b.Times))
	for i, dt := range b.Times {
		if dt.DayName == "" {
			dt.DayName = DayName(dt.Day)
		}
		segs := make([]TimeSegment, len(dt.Segments))
		for j, seg := range dt.Segments {
			if seg.ID == "" {
				seg.ID = NewID()
			}
			segs[j] = seg
		}
		dt.Segments = segs
		times[i] = dt
	}
	b.Times = times
	return b
}

// =============================================================================
// GROUP ASSIGNMENTS
// =============================================================================

// PutGroupAssignment creates or replaces one membership of an item.
func PutGroupAssignment(s *Snapshot, scenarioID ScenarioID, itemID ItemID, a GroupAssignment) (GroupAssignment, error) {
	if a.GroupID == "" {
		return GroupAssignment{}, fmt.Errorf("%w: group id required", generic.ErrInvalidInput)
	}
	if a.ID == "" {
		a.ID = AssignmentID(NewID())
	}
	a.Start = generic.NormalizeDate(a.Start)
	a.End = generic.NormalizeDate(a.End)
	err := writeGroups(s, scenarioID, itemID, func(set GroupAssignmentSet) { set[a.ID] = a })
	return a, err
}

// DeleteGroupAssignment removes one membership of an item.
func DeleteGroupAssignment(s *Snapshot, scenarioID ScenarioID, itemID ItemID, assignmentID AssignmentID) error {
	return writeGroups(s, scenarioID, itemID, func(set GroupAssignmentSet) { delete(set, assignmentID) })
}

func writeGroups(s *Snapshot, scenarioID ScenarioID, itemID ItemID, change func(GroupAssignmentSet)) error {
	t, err := resolveTarget(s, scenarioID, itemID)
	if err != nil {
		return err
	}
	set := EffectiveGroupAssignments(s, scenarioID, itemID)
	change(set)

	if t.owned {
		if s.GroupsByScenario[scenarioID] == nil {
			s.GroupsByScenario[scenarioID] = make(map[ItemID]GroupAssignmentSet)
		}
		s.GroupsByScenario[scenarioID][itemID] = set
		return nil
	}

	parent := EffectiveGroupAssignments(s, t.scenario.BaseScenarioID, itemID)
	o := s.overlayForWrite(scenarioID)
	if generic.CanonicalEqual(set, parent) {
		delete(o.GroupAssignments, itemID)
	} else {
		if o.GroupAssignments == nil {
			o.GroupAssignments = make(map[ItemID]GroupAssignmentSet)
		}
		o.GroupAssignments[itemID] = set
	}
	s.pruneOverlay(scenarioID)
	return nil
}

// =============================================================================
// CATALOGS
// =============================================================================

// SetGroupDefs replaces the group catalog seen by scenarioID.
func SetGroupDefs(s *Snapshot, scenarioID ScenarioID, defs []GroupDef) error {
	sc, ok := s.Scenario(scenarioID)
	if !ok {
		return generic.ScenarioNotFound(string(scenarioID))
	}
	s.ensure()
	defs = append([]GroupDef{}, defs...)
	if sc.IsRoot() {
		s.GroupDefsByScenario[scenarioID] = defs
		return nil
	}

	o := s.overlayForWrite(scenarioID)
	if generic.CanonicalEqual(defs, EffectiveGroupDefs(s, sc.BaseScenarioID)) {
		o.GroupDefs = nil
	} else {
		o.GroupDefs = defs
	}
	s.pruneOverlay(scenarioID)
	return nil
}

// PutQualificationDef adds or redefines one qualification key.
func PutQualificationDef(s *Snapshot, scenarioID ScenarioID, def QualificationDef) error {
	sc, ok := s.Scenario(scenarioID)
	if !ok {
		return generic.ScenarioNotFound(string(scenarioID))
	}
	if def.Key == "" {
		return fmt.Errorf("%w: qualification key required", generic.ErrInvalidInput)
	}
	s.ensure()
	if sc.IsRoot() {
		s.QualificationDefsByScenario[scenarioID] = upsertDef(s.QualificationDefsByScenario[scenarioID], def)
		return nil
	}

	o := s.overlayForWrite(scenarioID)
	inherited := false
	for _, d := range EffectiveQualificationDefs(s, sc.BaseScenarioID) {
		if d == def {
			inherited = true
			break
		}
	}
	if inherited {
		o.QualificationDefs = removeDef(o.QualificationDefs, def.Key)
	} else {
		o.QualificationDefs = upsertDef(o.QualificationDefs, def)
	}
	s.pruneOverlay(scenarioID)
	return nil
}

func upsertDef(defs []QualificationDef, def QualificationDef) []QualificationDef {
	out := append([]QualificationDef{}, defs...)
	for i, d := range out {
		if d.Key == def.Key {
			out[i] = def
			return out
		}
	}
	return append(out, def)
}

func removeDef(defs []QualificationDef, key string) []QualificationDef {
	var out []QualificationDef
	for _, d := range defs {
		if d.Key != key {
			out = append(out, d)
		}
	}
	return out
}

// AssignQualification records that the item holds a qualification in
// scenarioID. Assignments accumulate along the chain.
func AssignQualification(s *Snapshot, scenarioID ScenarioID, itemID ItemID, qualification string) error {
	if _, ok := s.Scenario(scenarioID); !ok {
		return generic.ScenarioNotFound(string(scenarioID))
	}
	if _, ok := EffectiveDataItem(s, scenarioID, itemID); !ok {
		return generic.ItemNotFound(string(itemID))
	}
	if qualification == "" {
		return fmt.Errorf("%w: qualification required", generic.ErrInvalidInput)
	}
	for _, a := range EffectiveQualificationAssignments(s, scenarioID, itemID) {
		if a.Qualification == qualification {
			return nil
		}
	}
	s.ensure()
	if s.QualificationAssignmentsByScenario[scenarioID] == nil {
		s.QualificationAssignmentsByScenario[scenarioID] = make(map[ItemID][]QualificationAssignment)
	}
	s.QualificationAssignmentsByScenario[scenarioID][itemID] = append(
		s.QualificationAssignmentsByScenario[scenarioID][itemID],
		QualificationAssignment{Qualification: qualification, DataItemID: itemID},
	)
	return nil
}

// UnassignQualification removes an assignment made in scenarioID itself.
// Inherited assignments belong to the ancestor that made them.
func UnassignQualification(s *Snapshot, scenarioID ScenarioID, itemID ItemID, qualification string) error {
	if _, ok := s.Scenario(scenarioID); !ok {
		return generic.ScenarioNotFound(string(scenarioID))
	}
	own := s.QualificationAssignmentsByScenario[scenarioID][itemID]
	var kept []QualificationAssignment
	for _, a := range own {
		if a.Qualification != qualification {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(own) {
		for _, a := range EffectiveQualificationAssignments(s, scenarioID, itemID) {
			if a.Qualification == qualification {
				return fmt.Errorf("%w: qualification %s of %s", generic.ErrNotOwner, qualification, itemID)
			}
		}
		return nil
	}
	if len(kept) == 0 {
		delete(s.QualificationAssignmentsByScenario[scenarioID], itemID)
		return nil
	}
	s.QualificationAssignmentsByScenario[scenarioID][itemID] = kept
	return nil
}
