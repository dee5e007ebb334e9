package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kitaplan/capacity-engine/capacity"
	"github.com/kitaplan/capacity-engine/generic"
	"github.com/kitaplan/capacity-engine/scenario"
)

// =============================================================================
// CHART HANDLERS
// =============================================================================

// WeeklyChart evaluates the working week containing ?date (default today).
// GET /api/scenarios/{sid}/charts/weekly
func (h *Handler) WeeklyChart(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.scenario(w, r)
	if !ok {
		return
	}
	date, err := h.dateParam(r, "date")
	if err != nil {
		writeEngineError(w, err)
		return
	}

	set := capacity.ResolveItems(h.Memory.Snapshot(), sc.ID)
	chart := h.Engine.BuildWeeklyChart(set, date, parseFilters(r), h.Chart)
	h.Metrics.chartComputed("weekly")
	writeJSON(w, http.StatusOK, toWeeklyChartDTO(chart))
}

// MidtermChart evaluates calendar periods from ?today through the latest
// date of interest.
// GET /api/scenarios/{sid}/charts/midterm
func (h *Handler) MidtermChart(w http.ResponseWriter, r *http.Request) {
	chart, ok := h.midterm(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toMidtermChartDTO(chart))
}

// MidtermWorkbook exports the midterm chart as a spreadsheet.
// GET /api/scenarios/{sid}/charts/midterm.xlsx
func (h *Handler) MidtermWorkbook(w http.ResponseWriter, r *http.Request) {
	chart, ok := h.midterm(w, r)
	if !ok {
		return
	}
	sc, _ := h.Memory.Snapshot().Scenario(chart.ScenarioID)

	f, err := MidtermWorkbook(sc, chart)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build workbook", err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("kapazitaet-%s-%s.xlsx", chart.ScenarioID, strings.ToLower(string(chart.Dimension)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(w); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to write workbook", err)
	}
}

func (h *Handler) midterm(w http.ResponseWriter, r *http.Request) (capacity.MidtermChart, bool) {
	sc, ok := h.scenario(w, r)
	if !ok {
		return capacity.MidtermChart{}, false
	}
	dim, err := generic.ParseDimension(r.URL.Query().Get("dimension"))
	if err != nil {
		writeEngineError(w, err)
		return capacity.MidtermChart{}, false
	}
	today, err := h.dateParam(r, "today")
	if err != nil {
		writeEngineError(w, err)
		return capacity.MidtermChart{}, false
	}

	set := capacity.ResolveItems(h.Memory.Snapshot(), sc.ID)
	chart := h.Engine.BuildMidtermChart(set, dim, today, parseFilters(r))
	h.Metrics.chartComputed("midterm")
	return chart, true
}

// FilterOptions lists the groups and qualifications that can be filtered.
// GET /api/scenarios/{sid}/filters
func (h *Handler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.scenario(w, r)
	if !ok {
		return
	}
	set := capacity.ResolveItems(h.Memory.Snapshot(), sc.ID)
	writeJSON(w, http.StatusOK, filterOptions(set))
}

// SyncFilters reconciles the client's filter state with the current
// options: a changed option set selects everything again.
// POST /api/scenarios/{sid}/filters/sync
func (h *Handler) SyncFilters(w http.ResponseWriter, r *http.Request) {
	var prev FilterSyncRequest
	if !decodeBody(w, r, &prev) {
		return
	}
	sc, ok := h.scenario(w, r)
	if !ok {
		return
	}
	set := capacity.ResolveItems(h.Memory.Snapshot(), sc.ID)
	writeJSON(w, http.StatusOK, FilterSyncResponse{
		Groups:         capacity.FilterSync(prev.Groups, capacity.AvailableGroups(set.Items)),
		Qualifications: capacity.FilterSync(prev.Qualifications, capacity.AvailableQualifications(set.Items)),
	})
}

// DatesOfInterest lists the dates on which anything starts or ends.
// GET /api/scenarios/{sid}/dates-of-interest
func (h *Handler) DatesOfInterest(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.scenario(w, r)
	if !ok {
		return
	}
	set := capacity.ResolveItems(h.Memory.Snapshot(), sc.ID)
	dates := capacity.DatesOfInterest(set.Items)
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	writeJSON(w, http.StatusOK, out)
}

func filterOptions(set capacity.ItemSet) FilterOptionsDTO {
	dto := FilterOptionsDTO{Qualifications: capacity.AvailableQualifications(set.Items)}
	for _, id := range capacity.AvailableGroups(set.Items) {
		name := set.GroupName(id)
		switch {
		case id == scenario.NoGroup:
			name = "Ohne Gruppe"
		case name == "":
			name = string(id)
		}
		dto.Groups = append(dto.Groups, GroupOptionDTO{ID: id, Name: name})
	}
	if dto.Groups == nil {
		dto.Groups = []GroupOptionDTO{}
	}
	return dto
}

// parseFilters reads ?groups=1,2&qualifications=E,K. An absent parameter
// leaves the filter inactive; a present but empty one selects nothing.
func parseFilters(r *http.Request) capacity.Filters {
	q := r.URL.Query()
	var f capacity.Filters
	if _, ok := q["groups"]; ok {
		f.Groups = []scenario.GroupID{}
		for _, id := range splitList(q.Get("groups")) {
			f.Groups = append(f.Groups, scenario.GroupID(id))
		}
	}
	if _, ok := q["qualifications"]; ok {
		f.Qualifications = append([]string{}, splitList(q.Get("qualifications"))...)
	}
	return f
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// dateParam parses a date query parameter; absent means today.
func (h *Handler) dateParam(r *http.Request, name string) (generic.TimePoint, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return generic.FromTime(h.Now()), nil
	}
	date, ok := generic.ParseDate(raw)
	if !ok {
		return generic.TimePoint{}, fmt.Errorf("%w: %s=%q", generic.ErrInvalidInput, name, raw)
	}
	return date, nil
}

// =============================================================================
// SPREADSHEET EXPORT
// =============================================================================

var midtermColumns = []string{
	"Zeitraum", "Von", "Bis", "Kinder", "Personal",
	"Buchungsstunden", "Gewichtete Stunden", "Benötigte Stunden", "Verfügbare Stunden",
	"Anstellungsschlüssel", "Schlüssel erfüllt",
	"Fachkraftstunden", "Benötigte Fachkraftstunden", "Fachkraftquote %", "Quote erfüllt",
}

// MidtermWorkbook renders a midterm chart into a workbook with one sheet.
func MidtermWorkbook(sc scenario.Scenario, chart capacity.MidtermChart) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Mittelfristig"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s (%s)", sc.Name, chart.Dimension)
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, err
	}

	for i, h := range midtermColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	f.SetRowStyle(sheet, 2, 2, headerStyle)

	for i, p := range chart.Periods {
		row := i + 3
		r := toRatiosDTO(p.Ratios)
		values := []any{
			p.Label, p.Start, p.End, p.Bedarf, p.Kapazitaet,
			r.ChildHours, r.WeightedChildHours, r.RequiredStaffHours, r.AvailableStaffHours,
			r.StaffRatio, yesNo(r.StaffRequirementMet),
			r.FachkraftHours, r.RequiredFachkraftHours, r.FachkraftQuotePercent, yesNo(r.FachkraftRequirementMet),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "C", 12)
	f.SetColWidth(sheet, "D", "O", 16)
	return f, nil
}

func yesNo(b bool) string {
	if b {
		return "ja"
	}
	return "nein"
}
