package ai

import (
	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/component"
)

// CombatantState captures a combatant's decision-relevant state at planning time.
type CombatantState struct {
	Entity ecs.Entity
	Name   string
	Team   component.Team
	Row    component.Row
	HP     int
	MaxHP  int
}

// Dead reports whether the combatant has no health left.
func (c CombatantState) Dead() bool { return c.HP <= 0 }

// HPPercent returns current HP as a percentage of MaxHP; 0 if MaxHP == 0.
func (c CombatantState) HPPercent() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP) * 100
}

// WorldState is the snapshot one planning pass reads.
//
// Invariant: Actor is also present in Combatants.
type WorldState struct {
	Session ecs.Entity
	Actor   CombatantState
	Profile component.AIProfile
	// Skills is the actor's skillbook in learning order.
	Skills     []string
	Combatants []CombatantState // roster order
}

// Enemies returns the living combatants not on the actor's team.
//
// Postcondition: roster order is preserved.
func (ws *WorldState) Enemies() []CombatantState {
	var out []CombatantState
	for _, c := range ws.Combatants {
		if !c.Dead() && c.Team != ws.Actor.Team {
			out = append(out, c)
		}
	}
	return out
}

// Allies returns the living combatants on the actor's team, the actor included.
//
// Postcondition: roster order is preserved.
func (ws *WorldState) Allies() []CombatantState {
	var out []CombatantState
	for _, c := range ws.Combatants {
		if !c.Dead() && c.Team == ws.Actor.Team {
			out = append(out, c)
		}
	}
	return out
}

// WeakestEnemy returns the living enemy with the lowest current HP.
//
// Postcondition: false if no living enemies exist; ties go to the earliest in roster order.
func (ws *WorldState) WeakestEnemy() (CombatantState, bool) {
	enemies := ws.Enemies()
	if len(enemies) == 0 {
		return CombatantState{}, false
	}
	weakest := enemies[0]
	for _, e := range enemies[1:] {
		if e.HP < weakest.HP {
			weakest = e
		}
	}
	return weakest, true
}

// NeediestAlly returns the living ally below full health with the lowest HP
// percentage.
//
// Postcondition: false if every living ally is at full health; ties go to the
// earliest in roster order.
func (ws *WorldState) NeediestAlly() (CombatantState, bool) {
	var best CombatantState
	found := false
	for _, a := range ws.Allies() {
		if a.HP >= a.MaxHP {
			continue
		}
		if !found || a.HPPercent() < best.HPPercent() {
			best, found = a, true
		}
	}
	return best, found
}
