/*
handlers.go - HTTP API handlers for the capacity engine

PURPOSE:
  Exposes scenarios, overlay writes and the capacity charts via REST API.
  Handles HTTP request/response and JSON serialization; all semantics live
  in the scenario and capacity packages.

ENDPOINTS:
  Snapshot:
    GET    /api/snapshot                         Full state (save-file shape)
    PUT    /api/snapshot                         Replace full state
    POST   /api/import                           Import a facility as new root scenario
    POST   /api/save                             Flush to the database now

  Scenarios:
    GET    /api/scenarios                        List
    POST   /api/scenarios                        Create (optionally based on another)
    GET    /api/scenarios/{sid}                  Get
    PUT    /api/scenarios/{sid}                  Update (base change is cycle-checked)
    DELETE /api/scenarios/{sid}                  Delete (not while others are based on it)
    GET    /api/scenarios/{sid}/chain            Scenario → root
    GET    /api/scenarios/{sid}/base-candidates  Valid bases for the scenario
    GET    /api/scenarios/{sid}/export           Effective view as import document

  Items (always as seen in {sid}):
    GET    /api/scenarios/{sid}/items
    POST   /api/scenarios/{sid}/items
    GET    /api/scenarios/{sid}/items/{iid}
    PATCH  /api/scenarios/{sid}/items/{iid}      Overlay write with collapse
    DELETE /api/scenarios/{sid}/items/{iid}      Owner only, cascades
    POST   /api/scenarios/{sid}/items/{iid}/revert
    GET    /api/scenarios/{sid}/items/{iid}/diff
    POST   /api/scenarios/{sid}/items/{iid}/bookings
    PUT    /api/scenarios/{sid}/items/{iid}/bookings/{bid}
    DELETE /api/scenarios/{sid}/items/{iid}/bookings/{bid}
    POST   /api/scenarios/{sid}/items/{iid}/groups
    PUT    /api/scenarios/{sid}/items/{iid}/groups/{aid}
    DELETE /api/scenarios/{sid}/items/{iid}/groups/{aid}
    POST   /api/scenarios/{sid}/items/{iid}/qualifications
    DELETE /api/scenarios/{sid}/items/{iid}/qualifications/{key}

  Catalogs:
    GET    /api/scenarios/{sid}/group-defs
    PUT    /api/scenarios/{sid}/group-defs
    GET    /api/scenarios/{sid}/qualification-defs
    PUT    /api/scenarios/{sid}/qualification-defs/{key}

  Charts (see charts.go):
    GET    /api/scenarios/{sid}/charts/weekly?date=&groups=&qualifications=
    GET    /api/scenarios/{sid}/charts/midterm?dimension=&today=&groups=&qualifications=
    GET    /api/scenarios/{sid}/charts/midterm.xlsx
    GET    /api/scenarios/{sid}/filters
    POST   /api/scenarios/{sid}/filters/sync
    GET    /api/scenarios/{sid}/dates-of-interest

  Demos (see demo.go):
    GET    /api/demos
    POST   /api/demos/load

ARCHITECTURE:
  Handler holds the live snapshot (store/memory) and the persistence
  collaborator. Reads take the current snapshot; writes go through
  Memory.Update, which applies them to a copy and swaps it in.

ERROR HANDLING:
  Errors are returned as JSON {error, details} with HTTP status:
  - 400: Validation errors, cycles, writes by a non-owner
  - 404: Scenario or item not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - charts.go: Chart handlers and spreadsheet export
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kitaplan/capacity-engine/capacity"
	"github.com/kitaplan/capacity-engine/factory"
	"github.com/kitaplan/capacity-engine/generic"
	"github.com/kitaplan/capacity-engine/scenario"
	"github.com/kitaplan/capacity-engine/store/memory"
)

// maxBodyBytes bounds request bodies; full snapshots are the largest.
const maxBodyBytes = 32 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Memory   *memory.Memory
	Store    scenario.SnapshotStore // nil: no persistence
	Importer *factory.ImportFactory
	Engine   *capacity.RatioEngine
	Chart    capacity.ChartConfig
	Metrics  *Metrics

	// Now is the clock for "today" in charts. Tests replace it.
	Now func() time.Time
}

// NewHandler creates a handler around the live snapshot. store may be nil.
func NewHandler(mem *memory.Memory, store scenario.SnapshotStore) *Handler {
	return &Handler{
		Memory:   mem,
		Store:    store,
		Importer: factory.NewImportFactory(),
		Engine:   capacity.NewRatioEngine(),
		Chart:    capacity.DefaultChartConfig(),
		Metrics:  NewMetrics(),
		Now:      time.Now,
	}
}

// LoadSnapshot replaces the live snapshot with the persisted one.
func (h *Handler) LoadSnapshot(ctx context.Context) error {
	if h.Store == nil {
		return nil
	}
	snap, err := h.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	return h.Memory.Save(ctx, snap)
}

// =============================================================================
// SNAPSHOT HANDLERS
// =============================================================================

// GetSnapshot returns the full state.
// GET /api/snapshot
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Memory.Snapshot())
}

// PutSnapshot replaces the full state with the request body.
// PUT /api/snapshot
func (h *Handler) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}
	snap, err := scenario.Decode(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid snapshot", err)
		return
	}
	if err := scenario.ValidateSnapshot(snap); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid snapshot", err)
		return
	}

	h.Memory.Replace(snap)
	writeJSON(w, http.StatusOK, map[string]int{"scenarios": len(snap.Scenarios)})
}

// Import adds a facility import document as a new root scenario.
// POST /api/import
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var doc factory.ImportDocument
	if !decodeBody(w, r, &doc) {
		return
	}

	var id scenario.ScenarioID
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		var err error
		id, err = h.Importer.Apply(s, doc)
		return err
	}) {
		return
	}

	sc, _ := h.Memory.Snapshot().Scenario(id)
	writeJSON(w, http.StatusCreated, sc)
}

// Save flushes the snapshot to the database if it changed.
// POST /api/save
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeJSON(w, http.StatusOK, SaveResponse{Saved: false})
		return
	}
	saved, err := h.Memory.Flush(r.Context(), h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save", err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{Saved: saved})
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns all scenarios in creation order.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios := h.Memory.Snapshot().Scenarios
	if scenarios == nil {
		scenarios = []scenario.Scenario{}
	}
	writeJSON(w, http.StatusOK, scenarios)
}

// CreateScenario adds a scenario. An empty id is generated.
// POST /api/scenarios
func (h *Handler) CreateScenario(w http.ResponseWriter, r *http.Request) {
	var req scenario.Scenario
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Invalid request", fmt.Errorf("%w: name required", generic.ErrInvalidInput))
		return
	}

	var created scenario.Scenario
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		var err error
		created, err = scenario.AddScenario(s, req)
		return err
	}) {
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetScenario returns one scenario.
// GET /api/scenarios/{sid}
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.scenario(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// UpdateScenario replaces a scenario's attributes.
// PUT /api/scenarios/{sid}
func (h *Handler) UpdateScenario(w http.ResponseWriter, r *http.Request) {
	var req scenario.Scenario
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = scenarioID(r)

	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		return scenario.UpdateScenario(s, req)
	}) {
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// DeleteScenario removes a scenario and everything it stores.
// DELETE /api/scenarios/{sid}
func (h *Handler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	id := scenarioID(r)
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		return scenario.DeleteScenario(s, id)
	}) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetChain returns the scenario followed by its ancestors up to the root.
// GET /api/scenarios/{sid}/chain
func (h *Handler) GetChain(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.scenario(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, scenario.GetScenarioChain(h.Memory.Snapshot().Scenarios, sc.ID))
}

// GetBaseCandidates lists the scenarios that may become the base.
// GET /api/scenarios/{sid}/base-candidates
func (h *Handler) GetBaseCandidates(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.scenario(w, r)
	if !ok {
		return
	}
	candidates := scenario.BaseCandidates(h.Memory.Snapshot().Scenarios, sc.ID)
	if candidates == nil {
		candidates = []scenario.Scenario{}
	}
	writeJSON(w, http.StatusOK, candidates)
}

// ExportScenario returns the effective view as an import document.
// GET /api/scenarios/{sid}/export
func (h *Handler) ExportScenario(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Importer.ToJSON(h.Memory.Snapshot(), scenarioID(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// =============================================================================
// ITEM HANDLERS
// =============================================================================

// ListItems returns every item visible in the scenario.
// GET /api/scenarios/{sid}/items
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.scenario(w, r)
	if !ok {
		return
	}
	snap := h.Memory.Snapshot()
	items := scenario.EffectiveDataItems(snap, sc.ID)
	dtos := make([]ItemDTO, len(items))
	for i, item := range items {
		dtos[i] = toItemDTO(snap, sc.ID, item)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateItem adds a child or staff member owned by the scenario.
// POST /api/scenarios/{sid}/items
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req scenario.DataItem
	if !decodeBody(w, r, &req) {
		return
	}
	sid := scenarioID(r)

	var created scenario.DataItem
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		var err error
		created, err = scenario.AddDataItem(s, sid, req)
		return err
	}) {
		return
	}
	writeJSON(w, http.StatusCreated, toItemDTO(h.Memory.Snapshot(), sid, created))
}

// GetItem returns one item as seen in the scenario.
// GET /api/scenarios/{sid}/items/{iid}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	h.writeItem(w, r, http.StatusOK)
}

// PatchItem merges a partial update into the item. In derived scenarios
// this writes (or collapses) an overlay.
// PATCH /api/scenarios/{sid}/items/{iid}
func (h *Handler) PatchItem(w http.ResponseWriter, r *http.Request) {
	var patch scenario.DataItemPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	sid, iid := scenarioID(r), itemID(r)
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		_, err := scenario.UpdateDataItem(s, sid, iid, patch)
		return err
	}) {
		return
	}
	h.writeItem(w, r, http.StatusOK)
}

// DeleteItem removes an item from its owning scenario.
// DELETE /api/scenarios/{sid}/items/{iid}
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	sid, iid := scenarioID(r), itemID(r)
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		return scenario.DeleteDataItem(s, sid, iid)
	}) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RevertItem drops every overlay of the item in the scenario.
// POST /api/scenarios/{sid}/items/{iid}/revert
func (h *Handler) RevertItem(w http.ResponseWriter, r *http.Request) {
	sid, iid := scenarioID(r), itemID(r)
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		return scenario.RevertToBase(s, sid, iid)
	}) {
		return
	}
	h.writeItem(w, r, http.StatusOK)
}

// DiffItem compares the item with the parent scenario's view of it.
// GET /api/scenarios/{sid}/items/{iid}/diff
func (h *Handler) DiffItem(w http.ResponseWriter, r *http.Request) {
	diff, err := scenario.DiffItem(h.Memory.Snapshot(), scenarioID(r), itemID(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diff)
}

// PutBooking creates (POST) or replaces (PUT) one booking of the item.
// POST /api/scenarios/{sid}/items/{iid}/bookings
// PUT  /api/scenarios/{sid}/items/{iid}/bookings/{bid}
func (h *Handler) PutBooking(w http.ResponseWriter, r *http.Request) {
	var b scenario.Booking
	if !decodeBody(w, r, &b) {
		return
	}
	if bid := chi.URLParam(r, "bid"); bid != "" {
		b.ID = scenario.BookingID(bid)
	}
	sid, iid := scenarioID(r), itemID(r)

	var stored scenario.Booking
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		var err error
		stored, err = scenario.PutBooking(s, sid, iid, b)
		return err
	}) {
		return
	}
	writeJSON(w, statusFor(r), stored)
}

// DeleteBooking removes one booking of the item.
// DELETE /api/scenarios/{sid}/items/{iid}/bookings/{bid}
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	sid, iid := scenarioID(r), itemID(r)
	bid := scenario.BookingID(chi.URLParam(r, "bid"))
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		return scenario.DeleteBooking(s, sid, iid, bid)
	}) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutGroupAssignment creates (POST) or replaces (PUT) one membership.
// POST /api/scenarios/{sid}/items/{iid}/groups
// PUT  /api/scenarios/{sid}/items/{iid}/groups/{aid}
func (h *Handler) PutGroupAssignment(w http.ResponseWriter, r *http.Request) {
	var a scenario.GroupAssignment
	if !decodeBody(w, r, &a) {
		return
	}
	if aid := chi.URLParam(r, "aid"); aid != "" {
		a.ID = scenario.AssignmentID(aid)
	}
	sid, iid := scenarioID(r), itemID(r)

	var stored scenario.GroupAssignment
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		var err error
		stored, err = scenario.PutGroupAssignment(s, sid, iid, a)
		return err
	}) {
		return
	}
	writeJSON(w, statusFor(r), stored)
}

// DeleteGroupAssignment removes one membership.
// DELETE /api/scenarios/{sid}/items/{iid}/groups/{aid}
func (h *Handler) DeleteGroupAssignment(w http.ResponseWriter, r *http.Request) {
	sid, iid := scenarioID(r), itemID(r)
	aid := scenario.AssignmentID(chi.URLParam(r, "aid"))
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		return scenario.DeleteGroupAssignment(s, sid, iid, aid)
	}) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignQualification records a qualification for the item.
// POST /api/scenarios/{sid}/items/{iid}/qualifications
func (h *Handler) AssignQualification(w http.ResponseWriter, r *http.Request) {
	var req QualificationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sid, iid := scenarioID(r), itemID(r)
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		return scenario.AssignQualification(s, sid, iid, req.Qualification)
	}) {
		return
	}
	h.writeItem(w, r, http.StatusOK)
}

// UnassignQualification removes a qualification assigned in the scenario.
// DELETE /api/scenarios/{sid}/items/{iid}/qualifications/{key}
func (h *Handler) UnassignQualification(w http.ResponseWriter, r *http.Request) {
	sid, iid := scenarioID(r), itemID(r)
	key := chi.URLParam(r, "key")
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		return scenario.UnassignQualification(s, sid, iid, key)
	}) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// GetGroupDefs returns the group catalog seen by the scenario.
// GET /api/scenarios/{sid}/group-defs
func (h *Handler) GetGroupDefs(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.scenario(w, r)
	if !ok {
		return
	}
	defs := scenario.EffectiveGroupDefs(h.Memory.Snapshot(), sc.ID)
	if defs == nil {
		defs = []scenario.GroupDef{}
	}
	writeJSON(w, http.StatusOK, defs)
}

// PutGroupDefs replaces the group catalog seen by the scenario.
// PUT /api/scenarios/{sid}/group-defs
func (h *Handler) PutGroupDefs(w http.ResponseWriter, r *http.Request) {
	var defs []scenario.GroupDef
	if !decodeBody(w, r, &defs) {
		return
	}
	sid := scenarioID(r)
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		return scenario.SetGroupDefs(s, sid, defs)
	}) {
		return
	}
	h.GetGroupDefs(w, r)
}

// GetQualificationDefs returns the accumulated qualification catalog.
// GET /api/scenarios/{sid}/qualification-defs
func (h *Handler) GetQualificationDefs(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.scenario(w, r)
	if !ok {
		return
	}
	defs := scenario.EffectiveQualificationDefs(h.Memory.Snapshot(), sc.ID)
	if defs == nil {
		defs = []scenario.QualificationDef{}
	}
	writeJSON(w, http.StatusOK, defs)
}

// PutQualificationDef adds or renames one qualification.
// PUT /api/scenarios/{sid}/qualification-defs/{key}
func (h *Handler) PutQualificationDef(w http.ResponseWriter, r *http.Request) {
	var def scenario.QualificationDef
	if !decodeBody(w, r, &def) {
		return
	}
	def.Key = chi.URLParam(r, "key")
	sid := scenarioID(r)
	if !h.mutate(w, r, func(s *scenario.Snapshot) error {
		return scenario.PutQualificationDef(s, sid, def)
	}) {
		return
	}
	h.GetQualificationDefs(w, r)
}

// =============================================================================
// HELPERS
// =============================================================================

func scenarioID(r *http.Request) scenario.ScenarioID {
	return scenario.ScenarioID(chi.URLParam(r, "sid"))
}

func itemID(r *http.Request) scenario.ItemID {
	return scenario.ItemID(chi.URLParam(r, "iid"))
}

// scenario looks up the {sid} scenario and writes 404 if it is missing.
func (h *Handler) scenario(w http.ResponseWriter, r *http.Request) (scenario.Scenario, bool) {
	id := scenarioID(r)
	sc, ok := h.Memory.Snapshot().Scenario(id)
	if !ok {
		writeEngineError(w, generic.ScenarioNotFound(string(id)))
	}
	return sc, ok
}

// mutate applies fn to the live snapshot and writes the error response if
// it fails.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, fn func(*scenario.Snapshot) error) bool {
	if err := h.Memory.Update(r.Context(), fn); err != nil {
		writeEngineError(w, err)
		return false
	}
	return true
}

func (h *Handler) writeItem(w http.ResponseWriter, r *http.Request, status int) {
	snap := h.Memory.Snapshot()
	sid, iid := scenarioID(r), itemID(r)
	if _, ok := snap.Scenario(sid); !ok {
		writeEngineError(w, generic.ScenarioNotFound(string(sid)))
		return
	}
	item, ok := scenario.EffectiveDataItem(snap, sid, iid)
	if !ok {
		writeEngineError(w, generic.ItemNotFound(string(iid)))
		return
	}
	writeJSON(w, status, toItemDTO(snap, sid, item))
}

func toItemDTO(snap *scenario.Snapshot, sid scenario.ScenarioID, item scenario.DataItem) ItemDTO {
	owner, _ := scenario.OwnerOf(snap, sid, item.ID)
	qualifications := scenario.EffectiveQualificationAssignments(snap, sid, item.ID)
	if qualifications == nil {
		qualifications = []scenario.QualificationAssignment{}
	}
	return ItemDTO{
		Item:           item,
		Owner:          owner,
		Overlaid:       scenario.HasOverlay(snap, sid, item.ID),
		Qualification:  capacity.QualificationOf(snap, sid, item),
		Bookings:       scenario.EffectiveBookings(snap, sid, item.ID).Sorted(),
		Groups:         scenario.EffectiveGroupAssignments(snap, sid, item.ID).Sorted(),
		Qualifications: qualifications,
	}
}

// statusFor answers 201 for creations and 200 for replacements.
func statusFor(r *http.Request) int {
	if r.Method == http.MethodPost {
		return http.StatusCreated
	}
	return http.StatusOK
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps engine errors to HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
