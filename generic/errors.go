/*
errors.go - Centralized error types for the capacity engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The resolution and presence engines are total and never return errors;
  only the write path and the outer collaborators (store, HTTP) do.

ERROR CATEGORIES:
  1. Scenario graph errors - cycles, missing scenarios, children on delete
  2. Entity errors - missing items, writes outside the owning scenario
  3. Input errors - invalid chart dimension, invalid clock time

USAGE:
  Callers match with errors.Is:

    if errors.Is(err, generic.ErrScenarioCycle) {
        // offer a different base scenario
    }

SEE ALSO:
  - scenario/chain.go: ValidateBase returns CycleError
  - scenario/write.go: Write path errors
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrScenarioCycle is returned when a base scenario would make a scenario
	// its own ancestor.
	ErrScenarioCycle = errors.New("scenario cycle")

	// ErrScenarioNotFound is returned when a referenced scenario doesn't exist.
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrScenarioExists is returned when adding a scenario with a taken id.
	ErrScenarioExists = errors.New("scenario already exists")

	// ErrScenarioHasChildren is returned when deleting a scenario that other
	// scenarios are based on.
	ErrScenarioHasChildren = errors.New("scenario has derived scenarios")

	// ErrItemNotFound is returned when no chain member defines the item.
	ErrItemNotFound = errors.New("data item not found")

	// ErrNotOwner is returned for structural changes (delete, qualification
	// assignment removal) attempted outside the item's owning scenario.
	ErrNotOwner = errors.New("item is not owned by this scenario")

	// ErrInvalidDimension is returned for an unknown chart time dimension.
	ErrInvalidDimension = errors.New("invalid time dimension")

	// ErrInvalidInput is returned for malformed client input (clock times,
	// item types, empty ids).
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CycleError names the scenario that would become its own ancestor.
type CycleError struct {
	ScenarioID string
	BaseID     string
}

func (e *CycleError) Error() string {
	if e.ScenarioID == e.BaseID {
		return fmt.Sprintf("scenario cycle: %s cannot be based on itself", e.ScenarioID)
	}
	return fmt.Sprintf("scenario cycle: %s cannot be based on its descendant %s", e.ScenarioID, e.BaseID)
}

func (e *CycleError) Unwrap() error {
	return ErrScenarioCycle
}

// NotFoundError names the missing scenario or item.
type NotFoundError struct {
	Kind string // "scenario" or "item"
	ID   string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.ID, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ScenarioNotFound wraps ErrScenarioNotFound with the id.
func ScenarioNotFound(id string) error {
	return &NotFoundError{Kind: "scenario", ID: id, Err: ErrScenarioNotFound}
}

// ItemNotFound wraps ErrItemNotFound with the id.
func ItemNotFound(id string) error {
	return &NotFoundError{Kind: "item", ID: id, Err: ErrItemNotFound}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrScenarioCycle) ||
		errors.Is(err, ErrScenarioExists) ||
		errors.Is(err, ErrScenarioHasChildren) ||
		errors.Is(err, ErrNotOwner) ||
		errors.Is(err, ErrInvalidDimension) ||
		errors.Is(err, ErrInvalidInput)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrScenarioNotFound) ||
		errors.Is(err, ErrItemNotFound)
}
