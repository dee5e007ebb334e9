/*
Package sqlite persists scenario snapshots in SQLite.

PURPOSE:
  Implements scenario.SnapshotStore. The snapshot is stored in three
  tables instead of one JSON blob, so that a save file can be inspected and
  queried with plain SQL (which scenario overrides what).

KEY TABLES:
  scenarios:    One row per scenario, in snapshot order
  entity_rows:  Entity store. One row per (scenario, kind, item)
  overlay_rows: Overlay store. Same shape as entity_rows

ROW KINDS:
  data_item                 payload: DataItem
  bookings                  payload: BookingSet of one item
  group_assignments         payload: GroupAssignmentSet of one item
  qualification_assignments payload: []QualificationAssignment of one item
  group_defs                payload: []GroupDef, item_id ''
  qualification_defs        payload: []QualificationDef, item_id ''

SAVE SEMANTICS:
  Save replaces the whole persisted state inside one SQL transaction.
  Either the new snapshot is stored completely or the old one stays.

USAGE:
  store, err := sqlite.New("./data/kita.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  snap, err := store.Load(ctx)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - scenario/store.go: SnapshotStore interface
  - store/memory: The live snapshot holder that flushes here
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kitaplan/capacity-engine/scenario"
)

// Row kinds.
const (
	kindDataItem                 = "data_item"
	kindBookings                 = "bookings"
	kindGroupAssignments         = "group_assignments"
	kindQualificationAssignments = "qualification_assignments"
	kindGroupDefs                = "group_defs"
	kindQualificationDefs        = "qualification_defs"
)

// Store implements scenario.SnapshotStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		base_scenario_id TEXT,
		name TEXT NOT NULL,
		confidence INTEGER NOT NULL DEFAULT 0,
		likelihood INTEGER NOT NULL DEFAULT 0,
		desirability INTEGER NOT NULL DEFAULT 0,
		remark TEXT,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entity_rows (
		scenario_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		item_id TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		PRIMARY KEY (scenario_id, kind, item_id)
	);

	CREATE TABLE IF NOT EXISTS overlay_rows (
		scenario_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		item_id TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		PRIMARY KEY (scenario_id, kind, item_id)
	);

	-- "Which scenarios touch this item?"
	CREATE INDEX IF NOT EXISTS idx_entity_rows_item ON entity_rows(item_id);
	CREATE INDEX IF NOT EXISTS idx_overlay_rows_item ON overlay_rows(item_id);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SNAPSHOT STORE (scenario.SnapshotStore interface)
// =============================================================================

// row is one entity or overlay row before encoding.
type row struct {
	scenarioID scenario.ScenarioID
	kind       string
	itemID     string
	payload    any
}

// Save replaces the persisted state with snap.
func (s *Store) Save(ctx context.Context, snap *scenario.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"scenarios", "entity_rows", "overlay_rows"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, sc := range snap.Scenarios {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO scenarios (id, base_scenario_id, name, confidence, likelihood, desirability, remark, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			string(sc.ID), nullString(string(sc.BaseScenarioID)), sc.Name,
			sc.Confidence, sc.Likelihood, sc.Desirability, nullString(sc.Remark), i,
		)
		if err != nil {
			return fmt.Errorf("insert scenario %s: %w", sc.ID, err)
		}
	}

	if err := insertRows(ctx, tx, "entity_rows", entityRows(snap)); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, "overlay_rows", overlayRows(snap)); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES ('saved_at', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("update meta: %w", err)
	}

	return tx.Commit()
}

func insertRows(ctx context.Context, tx *sql.Tx, table string, rows []row) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+table+" (scenario_id, kind, item_id, payload_json) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare %s: %w", table, err)
	}
	defer stmt.Close()

	for _, r := range rows {
		payload, err := json.Marshal(r.payload)
		if err != nil {
			return fmt.Errorf("encode %s %s/%s: %w", r.kind, r.scenarioID, r.itemID, err)
		}
		if _, err := stmt.ExecContext(ctx, string(r.scenarioID), r.kind, r.itemID, string(payload)); err != nil {
			return fmt.Errorf("insert %s %s/%s: %w", r.kind, r.scenarioID, r.itemID, err)
		}
	}
	return nil
}

func entityRows(snap *scenario.Snapshot) []row {
	var rows []row
	for sid, items := range snap.DataByScenario {
		for id, item := range items {
			rows = append(rows, row{sid, kindDataItem, string(id), item})
		}
	}
	for sid, items := range snap.BookingsByScenario {
		for id, set := range items {
			rows = append(rows, row{sid, kindBookings, string(id), set})
		}
	}
	for sid, items := range snap.GroupsByScenario {
		for id, set := range items {
			rows = append(rows, row{sid, kindGroupAssignments, string(id), set})
		}
	}
	for sid, items := range snap.QualificationAssignmentsByScenario {
		for id, list := range items {
			rows = append(rows, row{sid, kindQualificationAssignments, string(id), list})
		}
	}
	for sid, defs := range snap.GroupDefsByScenario {
		rows = append(rows, row{sid, kindGroupDefs, "", defs})
	}
	for sid, defs := range snap.QualificationDefsByScenario {
		rows = append(rows, row{sid, kindQualificationDefs, "", defs})
	}
	return rows
}

func overlayRows(snap *scenario.Snapshot) []row {
	var rows []row
	for sid, o := range snap.OverlaysByScenario {
		if o == nil {
			continue
		}
		for id, item := range o.DataItems {
			rows = append(rows, row{sid, kindDataItem, string(id), item})
		}
		for id, set := range o.Bookings {
			rows = append(rows, row{sid, kindBookings, string(id), set})
		}
		for id, set := range o.GroupAssignments {
			rows = append(rows, row{sid, kindGroupAssignments, string(id), set})
		}
		if o.GroupDefs != nil {
			rows = append(rows, row{sid, kindGroupDefs, "", o.GroupDefs})
		}
		if o.QualificationDefs != nil {
			rows = append(rows, row{sid, kindQualificationDefs, "", o.QualificationDefs})
		}
	}
	return rows
}

// Load rebuilds the persisted snapshot. An empty database yields an empty
// snapshot.
func (s *Store) Load(ctx context.Context) (*scenario.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := scenario.NewSnapshot()
	if err := s.loadScenarios(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadRows(ctx, "entity_rows", func(sid scenario.ScenarioID, kind, itemID string, payload []byte) error {
		return decodeEntity(snap, sid, kind, scenario.ItemID(itemID), payload)
	}); err != nil {
		return nil, err
	}
	if err := s.loadRows(ctx, "overlay_rows", func(sid scenario.ScenarioID, kind, itemID string, payload []byte) error {
		return decodeOverlay(snap, sid, kind, scenario.ItemID(itemID), payload)
	}); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) loadScenarios(ctx context.Context, snap *scenario.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, base_scenario_id, name, confidence, likelihood, desirability, remark
		FROM scenarios ORDER BY position`)
	if err != nil {
		return fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc scenario.Scenario
		var base, remark sql.NullString
		if err := rows.Scan(&sc.ID, &base, &sc.Name, &sc.Confidence, &sc.Likelihood, &sc.Desirability, &remark); err != nil {
			return fmt.Errorf("scan scenario: %w", err)
		}
		sc.BaseScenarioID = scenario.ScenarioID(base.String)
		sc.Remark = remark.String
		snap.Scenarios = append(snap.Scenarios, sc)
	}
	return rows.Err()
}

func (s *Store) loadRows(ctx context.Context, table string, apply func(scenario.ScenarioID, string, string, []byte) error) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT scenario_id, kind, item_id, payload_json FROM "+table+" ORDER BY scenario_id, kind, item_id")
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var sid, kind, itemID, payload string
		if err := rows.Scan(&sid, &kind, &itemID, &payload); err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
		if err := apply(scenario.ScenarioID(sid), kind, itemID, []byte(payload)); err != nil {
			return fmt.Errorf("decode %s %s %s/%s: %w", table, kind, sid, itemID, err)
		}
	}
	return rows.Err()
}

func decodeEntity(snap *scenario.Snapshot, sid scenario.ScenarioID, kind string, id scenario.ItemID, payload []byte) error {
	switch kind {
	case kindDataItem:
		var item scenario.DataItem
		if err := json.Unmarshal(payload, &item); err != nil {
			return err
		}
		if snap.DataByScenario[sid] == nil {
			snap.DataByScenario[sid] = make(map[scenario.ItemID]scenario.DataItem)
		}
		snap.DataByScenario[sid][id] = item
	case kindBookings:
		var set scenario.BookingSet
		if err := json.Unmarshal(payload, &set); err != nil {
			return err
		}
		if snap.BookingsByScenario[sid] == nil {
			snap.BookingsByScenario[sid] = make(map[scenario.ItemID]scenario.BookingSet)
		}
		snap.BookingsByScenario[sid][id] = set
	case kindGroupAssignments:
		var set scenario.GroupAssignmentSet
		if err := json.Unmarshal(payload, &set); err != nil {
			return err
		}
		if snap.GroupsByScenario[sid] == nil {
			snap.GroupsByScenario[sid] = make(map[scenario.ItemID]scenario.GroupAssignmentSet)
		}
		snap.GroupsByScenario[sid][id] = set
	case kindQualificationAssignments:
		var list []scenario.QualificationAssignment
		if err := json.Unmarshal(payload, &list); err != nil {
			return err
		}
		if snap.QualificationAssignmentsByScenario[sid] == nil {
			snap.QualificationAssignmentsByScenario[sid] = make(map[scenario.ItemID][]scenario.QualificationAssignment)
		}
		snap.QualificationAssignmentsByScenario[sid][id] = list
	case kindGroupDefs:
		var defs []scenario.GroupDef
		if err := json.Unmarshal(payload, &defs); err != nil {
			return err
		}
		snap.GroupDefsByScenario[sid] = defs
	case kindQualificationDefs:
		var defs []scenario.QualificationDef
		if err := json.Unmarshal(payload, &defs); err != nil {
			return err
		}
		snap.QualificationDefsByScenario[sid] = defs
	default:
		return fmt.Errorf("unknown row kind %q", kind)
	}
	return nil
}

func decodeOverlay(snap *scenario.Snapshot, sid scenario.ScenarioID, kind string, id scenario.ItemID, payload []byte) error {
	o := snap.OverlaysByScenario[sid]
	if o == nil {
		o = &scenario.Overlay{}
		snap.OverlaysByScenario[sid] = o
	}
	switch kind {
	case kindDataItem:
		var item scenario.DataItem
		if err := json.Unmarshal(payload, &item); err != nil {
			return err
		}
		if o.DataItems == nil {
			o.DataItems = make(map[scenario.ItemID]scenario.DataItem)
		}
		o.DataItems[id] = item
	case kindBookings:
		var set scenario.BookingSet
		if err := json.Unmarshal(payload, &set); err != nil {
			return err
		}
		if o.Bookings == nil {
			o.Bookings = make(map[scenario.ItemID]scenario.BookingSet)
		}
		o.Bookings[id] = set
	case kindGroupAssignments:
		var set scenario.GroupAssignmentSet
		if err := json.Unmarshal(payload, &set); err != nil {
			return err
		}
		if o.GroupAssignments == nil {
			o.GroupAssignments = make(map[scenario.ItemID]scenario.GroupAssignmentSet)
		}
		o.GroupAssignments[id] = set
	case kindGroupDefs:
		return json.Unmarshal(payload, &o.GroupDefs)
	case kindQualificationDefs:
		return json.Unmarshal(payload, &o.QualificationDefs)
	default:
		return fmt.Errorf("unknown overlay row kind %q", kind)
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// SavedAt returns the time of the last Save, or the zero time.
func (s *Store) SavedAt(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'saved_at'`).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"scenarios", "entity_rows", "overlay_rows", "meta"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
