/*
Package factory converts JSON import documents into scenario snapshots.

PURPOSE:
  Facilities export their enrollment and staffing records from the
  administration software. The export is converted (outside this module)
  into the import document below; the factory turns it into a root
  scenario with data items, bookings, group memberships and
  qualifications, using the same write functions as the HTTP API, so an
  import is indistinguishable from manual entry.

JSON SCHEMA:
  {
    "scenario": {"id": "ist", "name": "Ist-Stand 2024"},
    "groups": [{"id": "1", "name": "Fuchs", "icon": "🦊"}],
    "qualifications": [{"key": "E", "name": "Erzieher/in"}],
    "children": [
      {
        "id": "k1",
        "name": "Kind 1",
        "startdate": "01.09.2023",
        "birthdate": "12.03.2022",
        "groups": [{"groupId": "1", "start": "01.09.2023"}],
        "bookings": [
          {
            "startdate": "01.09.2023",
            "times": [{"day": 1, "segments": [{"start": "08:00", "end": "12:00"}]}]
          }
        ]
      }
    ],
    "staff": [
      {"name": "Anna", "qualification": "E", "bookings": [...]}
    ]
  }

DATES:
  German DD.MM.YYYY and ISO YYYY-MM-DD are both accepted and stored as
  ISO. Missing ids are generated.

USAGE:
  f := factory.NewImportFactory()
  snap, rootID, err := f.ParseImport(data)

  // or add the facility as another root scenario
  rootID, err := f.Apply(existing, doc)

SEE ALSO:
  - scenario/write.go: AddDataItem, PutBooking, PutGroupAssignment
  - api/handlers.go: POST /api/import
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/kitaplan/capacity-engine/generic"
	"github.com/kitaplan/capacity-engine/scenario"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ImportDocument is the JSON representation of one facility.
type ImportDocument struct {
	Scenario       ScenarioJSON        `json:"scenario"`
	Groups         []GroupJSON         `json:"groups,omitempty"`
	Qualifications []QualificationJSON `json:"qualifications,omitempty"`
	Children       []PersonJSON        `json:"children,omitempty"`
	Staff          []PersonJSON        `json:"staff,omitempty"`
}

type ScenarioJSON struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Remark string `json:"remark,omitempty"`
}

type GroupJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type QualificationJSON struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// PersonJSON is a child or a staff member.
type PersonJSON struct {
	ID            string           `json:"id,omitempty"`
	Name          string           `json:"name"`
	StartDate     string           `json:"startdate,omitempty"`
	EndDate       string           `json:"enddate,omitempty"`
	Birthdate     string           `json:"birthdate,omitempty"`
	Qualification string           `json:"qualification,omitempty"` // staff only
	Remark        string           `json:"remark,omitempty"`
	Paused        *PauseJSON       `json:"paused,omitempty"`
	Groups        []MembershipJSON `json:"groups,omitempty"`
	Bookings      []BookingJSON    `json:"bookings,omitempty"`
}

type PauseJSON struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type MembershipJSON struct {
	ID      string `json:"id,omitempty"`
	GroupID string `json:"groupId"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

type BookingJSON struct {
	ID        string    `json:"id,omitempty"`
	StartDate string    `json:"startdate,omitempty"`
	EndDate   string    `json:"enddate,omitempty"`
	Times     []DayJSON `json:"times"`
}

type DayJSON struct {
	Day      int           `json:"day"` // 1 = Monday ... 5 = Friday
	Segments []SegmentJSON `json:"segments"`
}

type SegmentJSON struct {
	ID      string `json:"id,omitempty"`
	Start   string `json:"start"`
	End     string `json:"end"`
	GroupID string `json:"groupId,omitempty"`
}

// =============================================================================
// IMPORT FACTORY
// =============================================================================

// DefaultScenarioName names imported scenarios without a name.
const DefaultScenarioName = "Import"

// ImportFactory converts import documents into snapshots.
type ImportFactory struct{}

func NewImportFactory() *ImportFactory {
	return &ImportFactory{}
}

// ParseImport parses a JSON import document into a fresh snapshot with one
// root scenario.
func (f *ImportFactory) ParseImport(data []byte) (*scenario.Snapshot, scenario.ScenarioID, error) {
	var doc ImportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", fmt.Errorf("%w: failed to parse import JSON: %v", generic.ErrInvalidInput, err)
	}
	snap := scenario.NewSnapshot()
	id, err := f.Apply(snap, doc)
	if err != nil {
		return nil, "", err
	}
	return snap, id, nil
}

// Apply adds the document as a new root scenario to snap. On error snap may
// be partially written; callers that share snap apply it to a clone.
func (f *ImportFactory) Apply(snap *scenario.Snapshot, doc ImportDocument) (scenario.ScenarioID, error) {
	name := doc.Scenario.Name
	if name == "" {
		name = DefaultScenarioName
	}
	sc, err := scenario.AddScenario(snap, scenario.Scenario{
		ID:     scenario.ScenarioID(doc.Scenario.ID),
		Name:   name,
		Remark: doc.Scenario.Remark,
	})
	if err != nil {
		return "", err
	}

	if len(doc.Groups) > 0 {
		defs := make([]scenario.GroupDef, 0, len(doc.Groups))
		for _, g := range doc.Groups {
			if g.ID == "" {
				return "", fmt.Errorf("%w: group %q without id", generic.ErrInvalidInput, g.Name)
			}
			defs = append(defs, scenario.GroupDef{ID: scenario.GroupID(g.ID), Name: g.Name, Icon: g.Icon})
		}
		if err := scenario.SetGroupDefs(snap, sc.ID, defs); err != nil {
			return "", err
		}
	}

	for _, q := range doc.Qualifications {
		if err := scenario.PutQualificationDef(snap, sc.ID, scenario.QualificationDef{Key: q.Key, Name: q.Name}); err != nil {
			return "", err
		}
	}

	for i, p := range doc.Children {
		if err := addPerson(snap, sc.ID, scenario.ItemDemand, p); err != nil {
			return "", fmt.Errorf("child %d: %w", i+1, err)
		}
	}
	for i, p := range doc.Staff {
		if err := addPerson(snap, sc.ID, scenario.ItemCapacity, p); err != nil {
			return "", fmt.Errorf("staff %d: %w", i+1, err)
		}
	}

	return sc.ID, nil
}

func addPerson(snap *scenario.Snapshot, sid scenario.ScenarioID, typ scenario.ItemType, p PersonJSON) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name required", generic.ErrInvalidInput)
	}
	item := scenario.DataItem{
		ID:        scenario.ItemID(p.ID),
		Type:      typ,
		Name:      p.Name,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Birthdate: p.Birthdate,
		Remark:    p.Remark,
	}
	if typ == scenario.ItemCapacity {
		item.Qualification = p.Qualification
	}
	if p.Paused != nil {
		item.PausedState = &scenario.PausedState{Enabled: true, Start: p.Paused.Start, End: p.Paused.End}
	}

	item, err := scenario.AddDataItem(snap, sid, item)
	if err != nil {
		return err
	}

	if typ == scenario.ItemCapacity && p.Qualification != "" {
		if err := scenario.AssignQualification(snap, sid, item.ID, p.Qualification); err != nil {
			return err
		}
	}

	for _, m := range p.Groups {
		_, err := scenario.PutGroupAssignment(snap, sid, item.ID, scenario.GroupAssignment{
			ID:      scenario.AssignmentID(m.ID),
			GroupID: scenario.GroupID(m.GroupID),
			Start:   m.Start,
			End:     m.End,
		})
		if err != nil {
			return err
		}
	}

	for _, b := range p.Bookings {
		if _, err := scenario.PutBooking(snap, sid, item.ID, toBooking(b)); err != nil {
			return err
		}
	}
	return nil
}

func toBooking(bj BookingJSON) scenario.Booking {
	b := scenario.Booking{
		ID:        scenario.BookingID(bj.ID),
		StartDate: bj.StartDate,
		EndDate:   bj.EndDate,
	}
	for _, d := range bj.Times {
		dt := scenario.DayTimes{Day: d.Day}
		for _, s := range d.Segments {
			dt.Segments = append(dt.Segments, scenario.TimeSegment{
				ID:           s.ID,
				BookingStart: s.Start,
				BookingEnd:   s.End,
				GroupID:      scenario.GroupID(s.GroupID),
			})
		}
		b.Times = append(b.Times, dt)
	}
	return b
}

// =============================================================================
// EXPORT
// =============================================================================

// ToJSON converts the effective view of a scenario back into an import
// document with German dates. Importing the result yields the same
// effective data as a root scenario.
func (f *ImportFactory) ToJSON(snap *scenario.Snapshot, sid scenario.ScenarioID) (ImportDocument, error) {
	sc, ok := snap.Scenario(sid)
	if !ok {
		return ImportDocument{}, generic.ScenarioNotFound(string(sid))
	}
	doc := ImportDocument{Scenario: ScenarioJSON{ID: string(sc.ID), Name: sc.Name, Remark: sc.Remark}}

	for _, g := range scenario.EffectiveGroupDefs(snap, sid) {
		doc.Groups = append(doc.Groups, GroupJSON{ID: string(g.ID), Name: g.Name, Icon: g.Icon})
	}
	for _, q := range scenario.EffectiveQualificationDefs(snap, sid) {
		doc.Qualifications = append(doc.Qualifications, QualificationJSON{Key: q.Key, Name: q.Name})
	}

	for _, item := range scenario.EffectiveDataItems(snap, sid) {
		p := PersonJSON{
			ID:            string(item.ID),
			Name:          item.Name,
			StartDate:     germanDate(item.StartDate),
			EndDate:       germanDate(item.EndDate),
			Birthdate:     germanDate(item.Birthdate),
			Qualification: item.Qualification,
			Remark:        item.Remark,
		}
		if item.Type == scenario.ItemCapacity && p.Qualification == "" {
			if qa := scenario.EffectiveQualificationAssignments(snap, sid, item.ID); len(qa) > 0 {
				p.Qualification = qa[0].Qualification
			}
		}
		if ps := item.PausedState; ps != nil && ps.Enabled {
			p.Paused = &PauseJSON{Start: germanDate(ps.Start), End: germanDate(ps.End)}
		}
		for _, a := range scenario.EffectiveGroupAssignments(snap, sid, item.ID).Sorted() {
			p.Groups = append(p.Groups, MembershipJSON{
				ID: string(a.ID), GroupID: string(a.GroupID), Start: germanDate(a.Start), End: germanDate(a.End),
			})
		}
		for _, b := range scenario.EffectiveBookings(snap, sid, item.ID).Sorted() {
			p.Bookings = append(p.Bookings, fromBooking(b))
		}

		if item.Type == scenario.ItemDemand {
			doc.Children = append(doc.Children, p)
		} else {
			doc.Staff = append(doc.Staff, p)
		}
	}
	return doc, nil
}

func fromBooking(b scenario.Booking) BookingJSON {
	bj := BookingJSON{ID: string(b.ID), StartDate: germanDate(b.StartDate), EndDate: germanDate(b.EndDate)}
	for _, dt := range b.Times {
		d := DayJSON{Day: dt.Day}
		for _, s := range dt.Segments {
			d.Segments = append(d.Segments, SegmentJSON{ID: s.ID, Start: s.BookingStart, End: s.BookingEnd, GroupID: string(s.GroupID)})
		}
		bj.Times = append(bj.Times, d)
	}
	return bj
}

// germanDate renders ISO dates as DD.MM.YYYY and leaves anything else as is.
func germanDate(s string) string {
	if tp, ok := generic.ParseDate(s); ok {
		return tp.German()
	}
	return s
}
