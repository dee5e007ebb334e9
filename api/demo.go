/*
demo.go - Demo facilities for testing and demonstrations

PURPOSE:
  Provides pre-built snapshots with realistic data for demos and tests.
  Each demo has a root scenario built through the import factory and one or
  more derived scenarios built through the overlay write path.

AVAILABLE DEMOS:
  kind-eins:        One child in group Fuchs, one derived scenario that
                    extends the Monday booking by an hour
  krippe-schulkind: Mixed facility with under-3 children and school
                    children, staff with and without Fachkraft
                    qualification, a parental-leave scenario and a hiring
                    scenario

USAGE VIA API:
  POST /api/demos/load
  {"demo_id": "krippe-schulkind"}

NOTE:
  Loading a demo replaces the whole snapshot.

SEE ALSO:
  - factory/import.go: Import document format
  - handlers.go: Snapshot handlers
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/kitaplan/capacity-engine/factory"
	"github.com/kitaplan/capacity-engine/scenario"
)

// =============================================================================
// DEMO DEFINITIONS
// =============================================================================

var demos = []DemoDTO{
	{
		ID:          "kind-eins",
		Name:        "Kind 1 / Fuchs",
		Description: "Ein Kind, eine Gruppe, eine längere Buchung im abgeleiteten Szenario",
	},
	{
		ID:          "krippe-schulkind",
		Name:        "Krippe und Schulkinder",
		Description: "Gemischte Einrichtung mit Elternzeit- und Einstellungsszenario",
	},
}

var demoBuilders = map[string]func() (*scenario.Snapshot, error){
	"kind-eins":        KindEinsDemo,
	"krippe-schulkind": KrippeSchulkindDemo,
}

// ListDemos returns the available demos.
// GET /api/demos
func (h *Handler) ListDemos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, demos)
}

// LoadDemo replaces the snapshot with a demo.
// POST /api/demos/load
func (h *Handler) LoadDemo(w http.ResponseWriter, r *http.Request) {
	var req LoadDemoRequest
	if !decodeBody(w, r, &req) {
		return
	}
	build, ok := demoBuilders[req.DemoID]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown demo", fmt.Errorf("demo %q", req.DemoID))
		return
	}
	snap, err := build()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build demo", err)
		return
	}
	h.Memory.Replace(snap)
	writeJSON(w, http.StatusOK, snap.Scenarios)
}

// =============================================================================
// DEMO BUILDERS
// =============================================================================

func weekdays(from, to string, days ...int) []factory.DayJSON {
	if len(days) == 0 {
		days = []int{1, 2, 3, 4, 5}
	}
	out := make([]factory.DayJSON, len(days))
	for i, d := range days {
		out[i] = factory.DayJSON{Day: d, Segments: []factory.SegmentJSON{{Start: from, End: to}}}
	}
	return out
}

// KindEinsDemo is the smallest interesting facility: Kind 1 in group Fuchs,
// booked Mondays 08:00-12:00. Scenario "Längere Buchung" books it until
// 13:00.
func KindEinsDemo() (*scenario.Snapshot, error) {
	doc := factory.ImportDocument{
		Scenario:       factory.ScenarioJSON{ID: "ist", Name: "Ist-Stand"},
		Groups:         []factory.GroupJSON{{ID: "1", Name: "Fuchs"}},
		Qualifications: []factory.QualificationJSON{{Key: "E", Name: "Erzieher/in"}},
		Children: []factory.PersonJSON{{
			ID:        "kind-1",
			Name:      "Kind 1",
			StartDate: "01.01.2024",
			Birthdate: "15.05.2020",
			Groups:    []factory.MembershipJSON{{ID: "kind-1-fuchs", GroupID: "1", Start: "01.01.2024"}},
			Bookings: []factory.BookingJSON{{
				ID:        "kind-1-buchung",
				StartDate: "01.01.2024",
				Times:     weekdays("08:00", "12:00", 1),
			}},
		}},
		Staff: []factory.PersonJSON{{
			ID:            "anna",
			Name:          "Anna",
			Qualification: "E",
			StartDate:     "01.01.2024",
			Groups:        []factory.MembershipJSON{{ID: "anna-fuchs", GroupID: "1", Start: "01.01.2024"}},
			Bookings:      []factory.BookingJSON{{ID: "anna-dienst", StartDate: "01.01.2024", Times: weekdays("07:30", "15:30")}},
		}},
	}

	snap := scenario.NewSnapshot()
	root, err := factory.NewImportFactory().Apply(snap, doc)
	if err != nil {
		return nil, err
	}

	derived, err := scenario.AddScenario(snap, scenario.Scenario{
		ID: "laenger", BaseScenarioID: root, Name: "Längere Buchung", Likelihood: 60,
	})
	if err != nil {
		return nil, err
	}
	longer := scenario.Booking{
		ID:        "kind-1-buchung",
		StartDate: "2024-01-01",
		Times: []scenario.DayTimes{{Day: 1, Segments: []scenario.TimeSegment{
			{BookingStart: "08:00", BookingEnd: "13:00"},
		}}},
	}
	if _, err := scenario.PutBooking(snap, derived.ID, "kind-1", longer); err != nil {
		return nil, err
	}
	return snap, nil
}

// KrippeSchulkindDemo is a facility with two groups: Krippe (under three)
// and Schulkinder. "Elternzeit" pauses the only Erzieherin of the Krippe
// for half a year; "Neue Fachkraft" builds on it and hires a replacement.
func KrippeSchulkindDemo() (*scenario.Snapshot, error) {
	doc := factory.ImportDocument{
		Scenario: factory.ScenarioJSON{ID: "ist", Name: "Ist-Stand 2025"},
		Groups: []factory.GroupJSON{
			{ID: "1", Name: "Krippe", Icon: "🐣"},
			{ID: "2", Name: "Schulkinder", Icon: "🎒"},
		},
		Qualifications: []factory.QualificationJSON{
			{Key: "E", Name: "Erzieher/in"},
			{Key: "K", Name: "Kinderpfleger/in"},
			{Key: "H", Name: "Hilfskraft"},
		},
	}

	krippe := []struct{ id, name, birth string }{
		{"mia", "Mia", "03.02.2024"},
		{"ben", "Ben", "20.07.2023"},
		{"lea", "Lea", "11.11.2023"},
	}
	for _, c := range krippe {
		doc.Children = append(doc.Children, factory.PersonJSON{
			ID: c.id, Name: c.name, Birthdate: c.birth, StartDate: "01.09.2025",
			Groups:   []factory.MembershipJSON{{GroupID: "1", Start: "01.09.2025"}},
			Bookings: []factory.BookingJSON{{StartDate: "01.09.2025", Times: weekdays("08:00", "13:00")}},
		})
	}
	schule := []struct{ id, name, birth string }{
		{"paul", "Paul", "02.03.2017"},
		{"emma", "Emma", "18.09.2016"},
	}
	for _, c := range schule {
		doc.Children = append(doc.Children, factory.PersonJSON{
			ID: c.id, Name: c.name, Birthdate: c.birth, StartDate: "01.09.2025", EndDate: "31.07.2026",
			Groups:   []factory.MembershipJSON{{GroupID: "2", Start: "01.09.2025", End: "31.07.2026"}},
			Bookings: []factory.BookingJSON{{StartDate: "01.09.2025", EndDate: "31.07.2026", Times: weekdays("12:00", "17:00")}},
		})
	}

	doc.Staff = []factory.PersonJSON{
		{
			ID: "sabine", Name: "Sabine", Qualification: "E", StartDate: "01.09.2025",
			Groups:   []factory.MembershipJSON{{GroupID: "1", Start: "01.09.2025"}},
			Bookings: []factory.BookingJSON{{StartDate: "01.09.2025", Times: weekdays("07:30", "13:30")}},
		},
		{
			ID: "tom", Name: "Tom", Qualification: "K", StartDate: "01.09.2025",
			Groups:   []factory.MembershipJSON{{GroupID: "2", Start: "01.09.2025"}},
			Bookings: []factory.BookingJSON{{StartDate: "01.09.2025", Times: weekdays("11:30", "17:00")}},
		},
		{
			ID: "ina", Name: "Ina", Qualification: "H", StartDate: "01.09.2025",
			Groups:   []factory.MembershipJSON{{GroupID: "1", Start: "01.09.2025"}},
			Bookings: []factory.BookingJSON{{StartDate: "01.09.2025", Times: weekdays("08:00", "12:00", 1, 3, 5)}},
		},
	}

	snap := scenario.NewSnapshot()
	root, err := factory.NewImportFactory().Apply(snap, doc)
	if err != nil {
		return nil, err
	}

	leave, err := scenario.AddScenario(snap, scenario.Scenario{
		ID: "elternzeit", BaseScenarioID: root, Name: "Elternzeit Sabine",
		Confidence: 80, Likelihood: 70, Desirability: 20,
	})
	if err != nil {
		return nil, err
	}
	pause := scenario.PausedState{Enabled: true, Start: "01.01.2026", End: "30.06.2026"}
	if _, err := scenario.UpdateDataItem(snap, leave.ID, "sabine", scenario.DataItemPatch{PausedState: &pause}); err != nil {
		return nil, err
	}

	hire, err := scenario.AddScenario(snap, scenario.Scenario{
		ID: "neue-fachkraft", BaseScenarioID: leave.ID, Name: "Neue Fachkraft",
		Confidence: 50, Likelihood: 40, Desirability: 90, Remark: "Vertretung für Sabine",
	})
	if err != nil {
		return nil, err
	}
	julia, err := scenario.AddDataItem(snap, hire.ID, scenario.DataItem{
		ID: "julia", Type: scenario.ItemCapacity, Name: "Julia", Qualification: "E",
		StartDate: "01.01.2026", EndDate: "30.06.2026",
	})
	if err != nil {
		return nil, err
	}
	if _, err := scenario.PutGroupAssignment(snap, hire.ID, julia.ID, scenario.GroupAssignment{
		GroupID: "1", Start: "01.01.2026", End: "30.06.2026",
	}); err != nil {
		return nil, err
	}
	if _, err := scenario.PutBooking(snap, hire.ID, julia.ID, scenario.Booking{
		StartDate: "01.01.2026", EndDate: "30.06.2026",
		Times: []scenario.DayTimes{
			{Day: 1, Segments: []scenario.TimeSegment{{BookingStart: "07:30", BookingEnd: "13:30"}}},
			{Day: 2, Segments: []scenario.TimeSegment{{BookingStart: "07:30", BookingEnd: "13:30"}}},
			{Day: 3, Segments: []scenario.TimeSegment{{BookingStart: "07:30", BookingEnd: "13:30"}}},
			{Day: 4, Segments: []scenario.TimeSegment{{BookingStart: "07:30", BookingEnd: "13:30"}}},
			{Day: 5, Segments: []scenario.TimeSegment{{BookingStart: "07:30", BookingEnd: "13:30"}}},
		},
	}); err != nil {
		return nil, err
	}
	if err := scenario.AssignQualification(snap, hire.ID, julia.ID, "E"); err != nil {
		return nil, err
	}

	return snap, nil
}
