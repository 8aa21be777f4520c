package encounter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/encounter"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// Every draw yields 50: initiative rolls add 6, any hit chance above 50 lands
// and no combatant in these fixtures crits.
const steadyRoll = 50

func testRules() combat.Rules {
	return combat.Rules{
		ScalingMultiplier: 2,
		PowerMultiplier:   1,
		MinHitChance:      5,
		Initiative:        dice.MustParse("1d11-1"),
		BasicAttack:       "basic_attack",
		DespawnDefeated:   true,
		MaxRounds:         50,
	}
}

// testContent holds:
//
//	hero   player,  STR 10 DEX 10: 100 HP, attack 20, defense 5, speed 20
//	brute  mob,     STR 10:        100 HP, attack 20, defense 5, speed 10
//	rat    mob,     STR 2:          60 HP, attack 4,  defense 1, speed 10
func testContent(t *testing.T) encounter.Content {
	t.Helper()
	skills := skill.NewRegistry()
	skills.Register(&skill.Def{ID: "basic_attack", Name: "Attack",
		Effects: []skill.Effect{{Type: skill.Damage, ScalingStat: component.StatAttack}}})
	skills.Register(&skill.Def{ID: "poison_dart", Name: "Poison Dart",
		Effects: []skill.Effect{{Type: skill.ApplyEffect, EffectID: "poison"}}})

	effects := effect.NewRegistry()
	effects.Register(&effect.Def{ID: "poison", Name: "Poison", BaseDuration: 3,
		Tick: &effect.Tick{Type: effect.TickDamage, Power: 2}})

	mobs := npc.NewRegistry()
	for _, tmpl := range []*npc.Template{
		{ID: "hero", Name: "Hero", Level: 1, Player: true, Stats: component.CoreStats{Strength: 10, Dexterity: 10}},
		{ID: "brute", Name: "Brute", Level: 2, Stats: component.CoreStats{Strength: 10}},
		{ID: "rat", Name: "Rat", Level: 1, Stats: component.CoreStats{Strength: 2}, Skills: []string{"poison_dart"}},
	} {
		mobs.Register(tmpl)
	}
	return encounter.Content{Skills: skills, Effects: effects, Mobs: mobs}
}

func steadySources() dice.Source { return dice.NewFixed(steadyRoll) }

func newManager(t *testing.T, content encounter.Content, scripts *scripting.Manager) *encounter.Manager {
	t.Helper()
	return encounter.NewManager(content, testRules(), steadySources, scripts, zap.NewNop())
}

func front(template string) encounter.Member {
	return encounter.Member{Template: template, Row: component.Front}
}

func viewByName(views []encounter.CombatantView, name string) (encounter.CombatantView, bool) {
	for _, v := range views {
		if v.Name == name {
			return v, true
		}
	}
	return encounter.CombatantView{}, false
}

func TestEncounter_AIVersusAIRunsToCompletion(t *testing.T) {
	mgr := newManager(t, testContent(t), nil)

	enc, err := mgr.Start([]encounter.Member{front("brute")}, []encounter.Member{front("rat")})
	require.NoError(t, err)

	out := enc.Outcome()
	assert.True(t, out.Ended)
	assert.Equal(t, component.Team1, out.Winner)
	assert.Equal(t, 2, out.Rounds)
	assert.Equal(t, 1, out.Defeated)
	assert.Positive(t, out.Events)
	assert.Equal(t, ecs.NilEntity, enc.Active())

	views := enc.Combatants()
	require.Len(t, views, 1, "the defeated rat is despawned")
	assert.Equal(t, "Brute", views[0].Name)
	assert.Less(t, views[0].HP, views[0].MaxHP)
}

func TestEncounter_PlayerCommandFlow(t *testing.T) {
	mgr := newManager(t, testContent(t), nil)

	enc, err := mgr.Start([]encounter.Member{front("hero")}, []encounter.Member{front("rat")})
	require.NoError(t, err)
	require.False(t, enc.Outcome().Ended)

	views := enc.Combatants()
	hero, ok := viewByName(views, "Hero")
	require.True(t, ok)
	rat, ok := viewByName(views, "Rat")
	require.True(t, ok)
	assert.True(t, hero.Player)
	assert.Equal(t, hero.Entity, enc.Active(), "the faster hero acts first")

	attack := encounter.Action{Actor: hero.Entity, Type: event.ActionSkill, SkillID: "basic_attack", Target: rat.Entity}
	require.NoError(t, mgr.Act(enc.ID, attack))

	// The rat's turn resolves before Act returns and hands the turn back.
	assert.Equal(t, hero.Entity, enc.Active())
	assert.Equal(t, 2, enc.Outcome().Rounds)
	views = enc.Combatants()
	rat, _ = viewByName(views, "Rat")
	assert.Equal(t, 21, rat.HP)

	require.NoError(t, mgr.Act(enc.ID, attack))
	out := enc.Outcome()
	assert.True(t, out.Ended)
	assert.Equal(t, component.Team1, out.Winner)
	assert.Equal(t, 1, out.Defeated)

	assert.ErrorIs(t, enc.Act(attack), encounter.ErrNotRunning)
}

func TestEncounter_RejectedPlayerActionKeepsTurn(t *testing.T) {
	mgr := newManager(t, testContent(t), nil)
	enc, err := mgr.Start([]encounter.Member{front("hero")}, []encounter.Member{front("rat")})
	require.NoError(t, err)
	hero, _ := viewByName(enc.Combatants(), "Hero")
	rat, _ := viewByName(enc.Combatants(), "Rat")

	require.NoError(t, enc.Act(encounter.Action{Actor: hero.Entity, Type: event.ActionSkill, SkillID: "fireball", Target: rat.Entity}))
	require.NoError(t, enc.Act(encounter.Action{Actor: rat.Entity, Type: event.ActionSkill, SkillID: "basic_attack", Target: hero.Entity}))

	assert.Equal(t, hero.Entity, enc.Active())
	assert.Equal(t, 1, enc.Outcome().Rounds)
	rat, _ = viewByName(enc.Combatants(), "Rat")
	assert.Equal(t, rat.MaxHP, rat.HP)
}

func TestEncounter_SwapRowTogglesRow(t *testing.T) {
	mgr := newManager(t, testContent(t), nil)
	enc, err := mgr.Start([]encounter.Member{front("hero")}, []encounter.Member{front("rat")})
	require.NoError(t, err)
	hero, _ := viewByName(enc.Combatants(), "Hero")

	require.NoError(t, enc.Act(encounter.Action{Actor: hero.Entity, Type: event.ActionSwapRow}))

	hero, _ = viewByName(enc.Combatants(), "Hero")
	assert.Equal(t, component.Back, hero.Row)
	assert.Equal(t, hero.Entity, enc.Active(), "the rat acted and round 2 began")
}

func TestEncounter_FleeLosesForFleeingTeam(t *testing.T) {
	mgr := newManager(t, testContent(t), nil)
	enc, err := mgr.Start([]encounter.Member{front("hero")}, []encounter.Member{front("rat")})
	require.NoError(t, err)
	hero, _ := viewByName(enc.Combatants(), "Hero")

	require.NoError(t, mgr.Flee(enc.ID, hero.Entity))

	out := enc.Outcome()
	assert.True(t, out.Ended)
	assert.Equal(t, component.Team2, out.Winner)
	assert.Zero(t, out.Defeated)
	assert.ErrorIs(t, enc.Flee(hero.Entity), encounter.ErrNotRunning)
}

func TestEncounter_StartTwice(t *testing.T) {
	mgr := newManager(t, testContent(t), nil)
	enc, err := mgr.Start([]encounter.Member{front("hero")}, []encounter.Member{front("rat")})
	require.NoError(t, err)
	assert.ErrorIs(t, enc.Start(nil, nil), encounter.ErrAlreadyStarted)
}

func TestEncounter_CommandsBeforeStart(t *testing.T) {
	content := testContent(t)
	roller := dice.NewLoggedRoller(dice.NewFixed(steadyRoll), zap.NewNop())
	enc := encounter.New("pending", content, testRules(), roller, nil, zap.NewNop())

	assert.ErrorIs(t, enc.Act(encounter.Action{Type: event.ActionSwapRow}), encounter.ErrNotRunning)
	assert.ErrorIs(t, enc.Flee(1), encounter.ErrNotRunning)
	assert.Equal(t, ecs.NilEntity, enc.Active())
	assert.Empty(t, enc.Combatants())
}

func TestEncounter_EmptyTeamEndsImmediately(t *testing.T) {
	mgr := newManager(t, testContent(t), nil)
	enc, err := mgr.Start([]encounter.Member{front("brute")}, nil)
	require.NoError(t, err)

	out := enc.Outcome()
	assert.True(t, out.Ended)
	assert.Equal(t, component.Team1, out.Winner)
}

func TestEncounter_ChangeEquipmentRecomputesStats(t *testing.T) {
	mgr := newManager(t, testContent(t), nil)
	enc, err := mgr.Start([]encounter.Member{front("hero")}, []encounter.Member{front("rat")})
	require.NoError(t, err)
	hero, _ := viewByName(enc.Combatants(), "Hero")
	require.Equal(t, 100, hero.MaxHP)

	plate := component.Equipment{{Slot: "body", ItemID: "plate", Bonuses: map[component.Stat]int{component.StatMaxHealth: 25}}}
	require.NoError(t, enc.ChangeEquipment(hero.Entity, plate))
	hero, _ = viewByName(enc.Combatants(), "Hero")
	assert.Equal(t, 125, hero.MaxHP)
	assert.Equal(t, 100, hero.HP)

	require.NoError(t, enc.ChangeEquipment(hero.Entity, nil))
	hero, _ = viewByName(enc.Combatants(), "Hero")
	assert.Equal(t, 100, hero.MaxHP)

	assert.Error(t, enc.ChangeEquipment(ecs.Entity(9999), plate))
}

func TestEncounter_ScriptedProfileDrivesTurn(t *testing.T) {
	content := testContent(t)
	content.Mobs.Register(&npc.Template{
		ID: "dart_rat", Name: "Dart Rat", Level: 1, AIProfile: "darter",
		Stats: component.CoreStats{Strength: 2}, Skills: []string{"poison_dart"},
	})
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "darter.lua"), []byte(`
		function ai_darter(actor)
			for _, c in ipairs(engine.combat.combatants(actor)) do
				if not c.ally then return "poison_dart", c.id end
			end
			return nil, nil
		end
	`), 0644))
	content.ScriptsDir = dir

	core, logs := observer.New(zap.InfoLevel)
	scripts := scripting.NewManager(dice.NewLoggedRoller(dice.NewFixed(steadyRoll), zap.NewNop()), zap.New(core), 0)
	t.Cleanup(scripts.Close)
	mgr := newManager(t, content, scripts)

	enc, err := mgr.Start([]encounter.Member{front("hero")}, []encounter.Member{front("dart_rat")})
	require.NoError(t, err)
	hero, _ := viewByName(enc.Combatants(), "Hero")
	rat, _ := viewByName(enc.Combatants(), "Dart Rat")

	require.NoError(t, enc.Act(encounter.Action{Actor: hero.Entity, Type: event.ActionSwapRow}))

	// Poison ticked once when the hero's second turn started.
	hero, _ = viewByName(enc.Combatants(), "Hero")
	assert.Equal(t, 98, hero.HP)
	assert.Equal(t, hero.Entity, enc.Active())
	rat, _ = viewByName(enc.Combatants(), "Dart Rat")
	assert.Equal(t, rat.MaxHP, rat.HP)
	assert.Zero(t, logs.FilterMessage("scripting: Lua runtime error").Len())

	require.NoError(t, mgr.Remove(enc.ID))
	assert.False(t, scripts.HasHook(enc.ID, "ai_darter"))
}
