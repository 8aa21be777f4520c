package ai

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
)

// Skills resolves skill ids to definitions.
type Skills interface {
	Get(id string) (*skill.Def, bool)
}

// Affordability reports whether actor can currently pay for def.
type Affordability interface {
	Affordable(actor ecs.Entity, def *skill.Def) bool
}

// ScriptCaller is the interface required by the Planner to consult Lua profiles.
type ScriptCaller interface {
	// HasHook reports whether key's VM defines hook.
	HasHook(key, hook string) bool
	// CallHook calls hook in key's VM and returns nret results, or nil on failure.
	CallHook(key, hook string, nret int, args ...lua.LValue) []lua.LValue
}

// Action is one planned skill use.
type Action struct {
	SkillID string
	Target  ecs.Entity
}

// rule plans an action for one profile; false means no valid action exists.
type rule func(p *Planner, ws *WorldState) (Action, bool)

// rules is the profile rule table. Profiles absent from it are scripted when a
// matching hook exists and Aggressor otherwise.
var rules = map[component.AIProfile]rule{
	component.ProfileAggressor: (*Planner).aggressor,
	component.ProfileHealer:    (*Planner).healer,
}

// Planner chooses actions for AI-controlled combatants.
type Planner struct {
	skills      Skills
	afford      Affordability
	basicAttack string
	scripts     ScriptCaller
	scriptKey   string
	logger      *zap.Logger
}

// NewPlanner constructs a Planner. scripts may be nil, in which case every
// profile outside the rule table plans as Aggressor.
//
// Precondition: skills, afford and logger must not be nil.
func NewPlanner(skills Skills, afford Affordability, basicAttack string, scripts ScriptCaller, scriptKey string, logger *zap.Logger) *Planner {
	if skills == nil {
		panic("ai.NewPlanner: skills must not be nil")
	}
	if afford == nil {
		panic("ai.NewPlanner: afford must not be nil")
	}
	if logger == nil {
		panic("ai.NewPlanner: logger must not be nil")
	}
	return &Planner{
		skills:      skills,
		afford:      afford,
		basicAttack: basicAttack,
		scripts:     scripts,
		scriptKey:   scriptKey,
		logger:      logger,
	}
}

// Plan selects an action for ws.Actor according to ws.Profile.
//
// Precondition: ws was built by BuildWorldState.
// Postcondition: a returned action names a skill the actor can afford and a
// living combatant of the session.
func (p *Planner) Plan(ws *WorldState) (Action, bool) {
	if r, ok := rules[ws.Profile]; ok {
		return r(p, ws)
	}
	return p.scripted(ws)
}

// aggressor picks the affordable single-target damage skill with the highest
// power, falling back to the basic attack, against the enemy with the lowest
// current health.
func (p *Planner) aggressor(ws *WorldState) (Action, bool) {
	target, ok := ws.WeakestEnemy()
	if !ok {
		return Action{}, false
	}
	var best *skill.Def
	for _, id := range ws.Skills {
		def, ok := p.skills.Get(id)
		if !ok || !def.SingleTargetDamage() || !p.afford.Affordable(ws.Actor.Entity, def) {
			continue
		}
		if best == nil || def.DamagePower() > best.DamagePower() {
			best = def
		}
	}
	if best == nil {
		def, ok := p.skills.Get(p.basicAttack)
		if !ok || !p.afford.Affordable(ws.Actor.Entity, def) {
			return Action{}, false
		}
		best = def
	}
	return Action{SkillID: best.ID, Target: target.Entity}, true
}

// healer uses the first affordable heal skill on the neediest ally, and acts
// as aggressor when there is no such skill or every ally is at full health.
func (p *Planner) healer(ws *WorldState) (Action, bool) {
	ally, wounded := ws.NeediestAlly()
	if wounded {
		for _, id := range ws.Skills {
			def, ok := p.skills.Get(id)
			if !ok || !def.Has(skill.Heal) {
				continue
			}
			if def.HealsOnlySelf() && ally.Entity != ws.Actor.Entity {
				continue
			}
			if p.afford.Affordable(ws.Actor.Entity, def) {
				return Action{SkillID: def.ID, Target: ally.Entity}, true
			}
		}
	}
	return p.aggressor(ws)
}

// ScriptHook returns the Lua global consulted for profile.
func ScriptHook(profile component.AIProfile) string {
	return "ai_" + string(profile)
}

// scripted asks ai_<profile>(actor_id) for (skill_id, target_id). A missing
// hook, a failed call, or a nil or malformed answer plans as aggressor.
func (p *Planner) scripted(ws *WorldState) (Action, bool) {
	hook := ScriptHook(ws.Profile)
	if p.scripts == nil || !p.scripts.HasHook(p.scriptKey, hook) {
		return p.aggressor(ws)
	}
	ret := p.scripts.CallHook(p.scriptKey, hook, 2, lua.LNumber(ws.Actor.Entity))
	if len(ret) != 2 {
		return p.aggressor(ws)
	}
	id, ok := ret[0].(lua.LString)
	if !ok {
		return p.aggressor(ws)
	}
	target, ok := ret[1].(lua.LNumber)
	if !ok {
		p.logger.Warn("script returned no target",
			zap.String("hook", hook),
			zap.Uint64("actor", uint64(ws.Actor.Entity)),
		)
		return p.aggressor(ws)
	}
	if !p.valid(ws, string(id), ecs.Entity(target)) {
		p.logger.Warn("script returned an unusable action",
			zap.String("hook", hook),
			zap.String("skill", string(id)),
			zap.Uint64("target", uint64(target)),
		)
		return p.aggressor(ws)
	}
	return Action{SkillID: string(id), Target: ecs.Entity(target)}, true
}

// valid reports whether a scripted choice names a known, affordable skill the
// actor may use and a living combatant of the session.
func (p *Planner) valid(ws *WorldState, skillID string, target ecs.Entity) bool {
	def, ok := p.skills.Get(skillID)
	if !ok || !p.afford.Affordable(ws.Actor.Entity, def) {
		return false
	}
	known := skillID == p.basicAttack
	for _, id := range ws.Skills {
		if id == skillID {
			known = true
		}
	}
	if !known {
		return false
	}
	for _, c := range ws.Combatants {
		if c.Entity == target {
			return !c.Dead()
		}
	}
	return false
}
