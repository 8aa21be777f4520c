package component

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/ecs"
)

// Team identifies which roster a combatant came from.
type Team string

const (
	Team1 Team = "team1"
	Team2 Team = "team2"
)

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == Team1 {
		return Team2
	}
	return Team1
}

// Row is the two-valued battle position used for damage mitigation.
type Row int

const (
	Front Row = iota
	Back
)

// String returns "front" or "back".
func (r Row) String() string {
	if r == Back {
		return "back"
	}
	return "front"
}

// Toggle returns the opposite row.
func (r Row) Toggle() Row {
	if r == Front {
		return Back
	}
	return Front
}

// ParseRow converts "front"/"back" into a Row.
func ParseRow(s string) (Row, error) {
	switch s {
	case "front":
		return Front, nil
	case "back":
		return Back, nil
	default:
		return Front, fmt.Errorf("unknown row %q", s)
	}
}

// Combatant tags an entity as an active participant of a combat session.
// It is attached on session entry and removed on session exit.
type Combatant struct {
	Session    ecs.Entity
	Team       Team
	Row        Row
	Initiative int
	// HasTakenAction is set once the combatant has resolved an action in its current turn.
	HasTakenAction bool
}

// Session is the state of one encounter, stored on a dedicated entity.
type Session struct {
	// Combatants lists participants in roster order: team1 first, then team2.
	Combatants []ecs.Entity
	// TurnQueue is Combatants sorted by initiative descending, ties in roster order.
	TurnQueue        []ecs.Entity
	CurrentTurnIndex int
	RoundNumber      int
	// Ended is set while the session is being torn down.
	Ended bool
}

// Active returns the entity at the current turn pointer, or NilEntity when the
// queue is empty.
func (s Session) Active() ecs.Entity {
	if len(s.TurnQueue) == 0 || s.CurrentTurnIndex < 0 || s.CurrentTurnIndex >= len(s.TurnQueue) {
		return ecs.NilEntity
	}
	return s.TurnQueue[s.CurrentTurnIndex]
}
