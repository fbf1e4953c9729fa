package srs

import (
	"fmt"

	"github.com/phrazzld/tactics-srs/internal/domain"
)

// Action is what the driver must do with a puzzle's schedule row.
type Action int

// Possible actions.
const (
	// ActionNoOp leaves the schedule untouched.
	ActionNoOp Action = iota
	// ActionUpsert writes Decision.Entry, replacing any existing row.
	ActionUpsert
	// ActionDelete removes the puzzle's row.
	ActionDelete
)

// String returns a lower-case name for logs.
func (a Action) String() string {
	switch a {
	case ActionNoOp:
		return "noop"
	case ActionUpsert:
		return "upsert"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Decision is the outcome of scheduling one puzzle. Entry is set only for
// ActionUpsert.
type Decision struct {
	Action   Action
	PuzzleID string
	Entry    *domain.ScheduleEntry
}

// Upsert returns a decision to write entry.
func Upsert(entry *domain.ScheduleEntry) Decision {
	return Decision{Action: ActionUpsert, PuzzleID: entry.PuzzleID, Entry: entry}
}

// Delete returns a decision to remove the schedule row of puzzleID.
func Delete(puzzleID string) Decision {
	return Decision{Action: ActionDelete, PuzzleID: puzzleID}
}

// NoOp returns a decision to leave puzzleID alone.
func NoOp(puzzleID string) Decision {
	return Decision{Action: ActionNoOp, PuzzleID: puzzleID}
}
