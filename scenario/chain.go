package scenario

import (
	"fmt"

	"github.com/kitaplan/capacity-engine/generic"
)

// =============================================================================
// SCENARIO CHAIN - Scenario to root ancestor
// =============================================================================

// GetScenarioChain returns the scenario followed by its ancestors, ending
// with the root. An empty id yields an empty chain; an unknown base stops
// the walk and the last found scenario acts as root. A scenario that shows
// up twice also stops the walk, so corrupt data cannot loop forever.
func GetScenarioChain(scenarios []Scenario, id ScenarioID) []Scenario {
	if id == "" {
		return []Scenario{}
	}
	byID := make(map[ScenarioID]Scenario, len(scenarios))
	for _, s := range scenarios {
		byID[s.ID] = s
	}

	chain := []Scenario{}
	seen := make(map[ScenarioID]bool)
	for current := id; current != ""; {
		s, ok := byID[current]
		if !ok || seen[current] {
			break
		}
		seen[current] = true
		chain = append(chain, s)
		current = s.BaseScenarioID
	}
	return chain
}

// chainIDs is GetScenarioChain reduced to ids.
func chainIDs(s *Snapshot, id ScenarioID) []ScenarioID {
	if s == nil {
		return nil
	}
	chain := GetScenarioChain(s.Scenarios, id)
	ids := make([]ScenarioID, len(chain))
	for i, sc := range chain {
		ids[i] = sc.ID
	}
	return ids
}

// Descendants returns every scenario that has id somewhere in its chain,
// excluding id itself.
func Descendants(scenarios []Scenario, id ScenarioID) []Scenario {
	var out []Scenario
	for _, s := range scenarios {
		if s.ID == id {
			continue
		}
		chain := GetScenarioChain(scenarios, s.ID)
		if len(chain) < 2 {
			continue
		}
		for _, ancestor := range chain[1:] {
			if ancestor.ID == id {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// Children returns the scenarios directly based on id.
func Children(scenarios []Scenario, id ScenarioID) []Scenario {
	var out []Scenario
	for _, s := range scenarios {
		if s.BaseScenarioID == id && s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

// BaseCandidates returns the scenarios id may be based on: all except
// itself and its descendants.
func BaseCandidates(scenarios []Scenario, id ScenarioID) []Scenario {
	excluded := map[ScenarioID]bool{id: true}
	for _, d := range Descendants(scenarios, id) {
		excluded[d.ID] = true
	}
	var out []Scenario
	for _, s := range scenarios {
		if !excluded[s.ID] {
			out = append(out, s)
		}
	}
	return out
}

// ValidateBase checks that id may use baseID as its base. An empty baseID
// (make it a root) is always valid.
func ValidateBase(scenarios []Scenario, id, baseID ScenarioID) error {
	if baseID == "" {
		return nil
	}
	if baseID == id {
		return &generic.CycleError{ScenarioID: string(id), BaseID: string(baseID)}
	}
	found := false
	for _, s := range scenarios {
		if s.ID == baseID {
			found = true
			break
		}
	}
	if !found {
		return generic.ScenarioNotFound(string(baseID))
	}
	for _, d := range Descendants(scenarios, id) {
		if d.ID == baseID {
			return &generic.CycleError{ScenarioID: string(id), BaseID: string(baseID)}
		}
	}
	return nil
}

// ValidateSnapshot checks a snapshot loaded from outside: every scenario
// needs a unique, non-empty id and every chain must end in a root. A base
// id that does not resolve is accepted; that scenario acts as a root.
func ValidateSnapshot(s *Snapshot) error {
	if s == nil {
		return nil
	}
	seen := make(map[ScenarioID]bool, len(s.Scenarios))
	for i, sc := range s.Scenarios {
		if sc.ID == "" {
			return fmt.Errorf("%w: scenario %d has no id", generic.ErrInvalidInput, i)
		}
		if seen[sc.ID] {
			return fmt.Errorf("%w: duplicate scenario id %s", generic.ErrInvalidInput, sc.ID)
		}
		seen[sc.ID] = true
	}
	for _, sc := range s.Scenarios {
		if sc.IsRoot() {
			continue
		}
		// The walk stops early only on a scenario it already visited.
		chain := GetScenarioChain(s.Scenarios, sc.ID)
		last := chain[len(chain)-1]
		if !last.IsRoot() && seen[last.BaseScenarioID] {
			return &generic.CycleError{ScenarioID: string(sc.ID), BaseID: string(sc.BaseScenarioID)}
		}
	}
	return nil
}
