package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/component"
)

func cs(e ecs.Entity, team component.Team, hp, max int) ai.CombatantState {
	return ai.CombatantState{Entity: e, Team: team, HP: hp, MaxHP: max}
}

func stateFor(actor ai.CombatantState, others ...ai.CombatantState) *ai.WorldState {
	return &ai.WorldState{Actor: actor, Combatants: append([]ai.CombatantState{actor}, others...)}
}

func TestCombatantState_HPPercent(t *testing.T) {
	assert.Equal(t, 50.0, cs(1, component.Team1, 10, 20).HPPercent())
	assert.Equal(t, 0.0, cs(1, component.Team1, 10, 0).HPPercent())
	assert.True(t, cs(1, component.Team1, 0, 20).Dead())
}

func TestWorldState_EnemiesAndAllies_SkipDead(t *testing.T) {
	self := cs(1, component.Team2, 30, 30)
	ws := stateFor(self,
		cs(2, component.Team1, 10, 50),
		cs(3, component.Team1, 0, 50),
		cs(4, component.Team2, 5, 30),
		cs(5, component.Team2, 0, 30),
	)
	var enemies, allies []ecs.Entity
	for _, c := range ws.Enemies() {
		enemies = append(enemies, c.Entity)
	}
	for _, c := range ws.Allies() {
		allies = append(allies, c.Entity)
	}
	assert.Equal(t, []ecs.Entity{2}, enemies)
	assert.Equal(t, []ecs.Entity{1, 4}, allies)
}

func TestWorldState_WeakestEnemy_LowestCurrentHP(t *testing.T) {
	ws := stateFor(cs(1, component.Team2, 30, 30),
		cs(2, component.Team1, 40, 200),
		cs(3, component.Team1, 30, 30),
		cs(4, component.Team1, 30, 100),
	)
	w, ok := ws.WeakestEnemy()
	require.True(t, ok)
	assert.Equal(t, ecs.Entity(3), w.Entity, "ties go to roster order; percentage is ignored")
}

func TestWorldState_WeakestEnemy_NoneAlive(t *testing.T) {
	ws := stateFor(cs(1, component.Team2, 30, 30), cs(2, component.Team1, 0, 30))
	_, ok := ws.WeakestEnemy()
	assert.False(t, ok)
}

func TestWorldState_NeediestAlly_LowestPercentBelowFull(t *testing.T) {
	ws := stateFor(cs(1, component.Team2, 100, 100),
		cs(2, component.Team2, 20, 100),
		cs(3, component.Team2, 15, 30),
		cs(4, component.Team1, 1, 100),
	)
	a, ok := ws.NeediestAlly()
	require.True(t, ok)
	assert.Equal(t, ecs.Entity(2), a.Entity)
}

func TestWorldState_NeediestAlly_IncludesSelf(t *testing.T) {
	ws := stateFor(cs(1, component.Team2, 10, 100), cs(2, component.Team2, 90, 100))
	a, ok := ws.NeediestAlly()
	require.True(t, ok)
	assert.Equal(t, ecs.Entity(1), a.Entity)
}

func TestWorldState_NeediestAlly_AllFull(t *testing.T) {
	ws := stateFor(cs(1, component.Team2, 100, 100), cs(2, component.Team2, 50, 50), cs(3, component.Team2, 0, 50))
	_, ok := ws.NeediestAlly()
	assert.False(t, ok)
}

func TestPropertyWeakestEnemy_NoLivingEnemyHasLessHP(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "n")
		self := cs(1, component.Team2, 10, 10)
		var others []ai.CombatantState
		for i := 0; i < n; i++ {
			team := rapid.SampledFrom([]component.Team{component.Team1, component.Team2}).Draw(rt, "team")
			hp := rapid.IntRange(0, 100).Draw(rt, "hp")
			others = append(others, cs(ecs.Entity(i+2), team, hp, 100))
		}
		ws := stateFor(self, others...)
		w, ok := ws.WeakestEnemy()
		if !ok {
			assert.Empty(rt, ws.Enemies())
			return
		}
		assert.Equal(rt, component.Team1, w.Team)
		assert.False(rt, w.Dead())
		for _, e := range ws.Enemies() {
			assert.LessOrEqual(rt, w.HP, e.HP)
		}
	})
}
