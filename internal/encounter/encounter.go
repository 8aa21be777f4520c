// Package encounter wires one combat encounter together and hosts many of them.
//
// An Encounter owns its entity store, event bus and systems. Systems subscribe
// in a fixed order, which is the only ordering guarantee the bus gives:
//
//	effects  status-effect lifecycle (ticks before the machine sees the turn)
//	stats    derived-stat recomputation
//	combat   turn state machine and action resolution
//	ai       decisions for non-player combatants
//	outcome  result bookkeeping
//
// Every entry point takes the encounter's mutex, so each encounter resolves
// events one chain at a time while different encounters run in parallel.
package encounter

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

var (
	// ErrEncounterNotFound is returned for unknown encounter ids.
	ErrEncounterNotFound = errors.New("encounter not found")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("encounter already started")
	// ErrNotRunning is returned for commands sent before Start or after the end.
	ErrNotRunning = errors.New("encounter is not running")
)

// Member is one roster slot: the template to spawn and its starting row.
type Member struct {
	Template string
	Row      component.Row
}

// Action is an externally issued command for a player-controlled combatant.
type Action struct {
	Actor   ecs.Entity
	Type    event.ActionType
	SkillID string
	Target  ecs.Entity
}

// Outcome summarises an encounter so far.
type Outcome struct {
	Ended    bool
	Winner   component.Team
	Rounds   int
	Defeated int
	Events   uint64
}

// CombatantView is a read-only snapshot of one spawned actor.
type CombatantView struct {
	Entity ecs.Entity
	Name   string
	Team   component.Team
	Row    component.Row
	HP     int
	MaxHP  int
	Mana   int
	Player bool
}

// Encounter is one self-contained combat.
type Encounter struct {
	ID string

	mu      sync.Mutex
	world   *entity.World
	bus     *event.Bus
	machine *combat.Machine
	spawner *npc.Spawner
	content Content
	roller  *dice.Roller
	scripts *scripting.Manager
	logger  *zap.Logger

	started bool
	session ecs.Entity
	slots   map[ecs.Entity]slot
	order   []ecs.Entity
	outcome Outcome
}

type slot struct {
	team component.Team
	row  component.Row
}

// New assembles an encounter. scripts may be nil; its VM for id rolls dice
// from roller.
//
// Precondition: content registries, roller and logger must be non-nil.
// Postcondition: the returned encounter has an empty world and has not started.
func New(id string, content Content, rules combat.Rules, roller *dice.Roller, scripts *scripting.Manager, logger *zap.Logger) *Encounter {
	w, t := entity.New()
	bus := event.NewBus(observability.EncounterLogger(logger, "bus", id))
	calc := stats.NewCalculator(w, t.Derived, t.Health, t.Mana, content.Effects, observability.EncounterLogger(logger, "stats", id))
	lifecycle := effect.NewLifecycle(w, t.Effects, content.Effects, calc, bus, observability.EncounterLogger(logger, "effects", id))
	machine := combat.NewMachine(w, t.Registry, t.Combatants, t.Sessions, calc, content.Skills, roller, bus, rules,
		observability.EncounterLogger(logger, "combat", id))

	var caller ai.ScriptCaller
	if scripts != nil && content.ScriptsDir != "" {
		caller = scripts
	}
	planner := ai.NewPlanner(content.Skills, machine, rules.BasicAttack, caller, id, observability.EncounterLogger(logger, "ai", id))

	e := &Encounter{
		ID:      id,
		world:   w,
		bus:     bus,
		machine: machine,
		spawner: npc.NewSpawner(t, calc, observability.EncounterLogger(logger, "npc", id)),
		content: content,
		roller:  roller,
		scripts: scripts,
		logger:  observability.EncounterLogger(logger, "encounter", id),
		slots:   make(map[ecs.Entity]slot),
	}
	bus.Subscribe("effects", lifecycle)
	bus.Subscribe("stats", calc)
	bus.Subscribe("combat", machine)
	bus.Subscribe("ai", ai.NewDecider(w, planner, bus, observability.EncounterLogger(logger, "ai", id)))
	bus.Subscribe("outcome", event.HandlerFunc(e.record))
	return e
}

// Start spawns both rosters and begins combat. AI-controlled turns resolve
// before Start returns; it returns once a player-controlled combatant must act
// or the combat has ended.
//
// Precondition: every Member names a loaded template.
// Postcondition: on error nothing has been spawned.
func (e *Encounter) Start(team1, team2 []Member) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return ErrAlreadyStarted
	}
	var templates [2][]*npc.Template
	for i, roster := range [2][]Member{team1, team2} {
		for _, m := range roster {
			tmpl, ok := e.content.Mobs.Get(m.Template)
			if !ok {
				return fmt.Errorf("encounter %s: unknown template %q", e.ID, m.Template)
			}
			templates[i] = append(templates[i], tmpl)
		}
	}
	if e.scripts != nil && e.content.ScriptsDir != "" {
		if err := e.scripts.LoadWithRoller(e.ID, e.content.ScriptsDir, ai.Roster(e.world), e.roller); err != nil {
			return fmt.Errorf("encounter %s: %w", e.ID, err)
		}
	}
	e.started = true

	teams := [2]component.Team{component.Team1, component.Team2}
	var participants [2][]combat.Participant
	for i, roster := range [2][]Member{team1, team2} {
		for j, m := range roster {
			ent := e.spawner.Spawn(templates[i][j])
			e.slots[ent] = slot{team: teams[i], row: m.Row}
			e.order = append(e.order, ent)
			participants[i] = append(participants[i], combat.Participant{Entity: ent, Row: m.Row})
		}
	}
	e.logger.Info("encounter starting", zap.Int("team1", len(team1)), zap.Int("team2", len(team2)))
	e.session = e.machine.Begin(participants[0], participants[1])
	return nil
}

// Act publishes a player command for the active combatant. Invalid actions are
// logged and ignored by the state machine; the turn stays open.
func (e *Encounter) Act(a Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running() {
		return ErrNotRunning
	}
	e.bus.Publish(event.ActionTaken{Session: e.session, Actor: a.Actor, Type: a.Type, SkillID: a.SkillID, Target: a.Target})
	return nil
}

// Flee ends the combat with actor's team losing.
func (e *Encounter) Flee(actor ecs.Entity) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running() {
		return ErrNotRunning
	}
	e.bus.Publish(event.FleeAttempt{Session: e.session, Actor: actor})
	return nil
}

// ChangeEquipment replaces actor's equipment and triggers a stat recompute.
func (e *Encounter) ChangeEquipment(actor ecs.Entity, items component.Equipment) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.world.Alive(actor) {
		return fmt.Errorf("encounter %s: unknown actor %d", e.ID, actor)
	}
	e.spawner.Equip(actor, items)
	e.bus.Publish(event.EquipmentChanged{Character: actor})
	return nil
}

// Outcome returns the result so far.
func (e *Encounter) Outcome() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.outcome
	o.Events = e.bus.Published()
	return o
}

// Active returns the combatant whose turn it is, or NilEntity outside combat.
func (e *Encounter) Active() ecs.Entity {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.world.Sessions.Get(e.session)
	if !ok || s.Ended {
		return ecs.NilEntity
	}
	return s.Active()
}

// Combatants returns every spawned actor that still exists, in roster order.
func (e *Encounter) Combatants() []CombatantView {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []CombatantView
	for _, ent := range e.order {
		if !e.world.Alive(ent) {
			continue
		}
		hp, _ := e.world.Health.Get(ent)
		mp, _ := e.world.Mana.Get(ent)
		id, _ := e.world.Identities.Get(ent)
		row := e.slots[ent].row
		if c, ok := e.world.Combatants.Get(ent); ok {
			row = c.Row
		}
		out = append(out, CombatantView{
			Entity: ent,
			Name:   id.Name,
			Team:   e.slots[ent].team,
			Row:    row,
			HP:     hp.Current,
			MaxHP:  hp.Max,
			Mana:   mp.Current,
			Player: id.Player,
		})
	}
	return out
}

// Close releases the encounter's script VM.
func (e *Encounter) Close() {
	if e.scripts != nil {
		e.scripts.Unload(e.ID)
	}
}

func (e *Encounter) running() bool {
	return e.started && !e.outcome.Ended
}

// record is the outcome subscriber. It runs inside bus dispatch, under e.mu.
func (e *Encounter) record(ev event.Event) {
	switch ev := ev.(type) {
	case event.RoundStarted:
		e.outcome.Rounds = ev.Round
	case event.EnemyDefeated:
		e.outcome.Defeated++
	case event.CombatEnded:
		e.outcome.Ended = true
		e.outcome.Winner = ev.WinningTeam
		e.logger.Info("encounter finished",
			zap.String("winner", string(ev.WinningTeam)),
			zap.Int("rounds", e.outcome.Rounds),
			zap.Int("defeated", e.outcome.Defeated),
		)
	}
}
