// Package skill holds the read-only skill content used during combat.
package skill

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/component"
)

// EffectType selects how a skill effect is resolved.
type EffectType string

const (
	Damage      EffectType = "Damage"
	Heal        EffectType = "Heal"
	ApplyEffect EffectType = "ApplyEffect"
)

// Target names who an effect starts from before pattern expansion.
type Target string

const (
	// TargetChosen starts from the target picked by the actor. It is the default.
	TargetChosen Target = "TARGET"
	// TargetSelf starts from the actor, ignoring the chosen target.
	TargetSelf Target = "SELF"
)

// Pattern expands the starting target into the affected set.
type Pattern string

const (
	Single     Pattern = "SINGLE"
	FrontRow   Pattern = "FRONT_ROW"
	BackRow    Pattern = "BACK_ROW"
	Adjacent   Pattern = "ADJACENT"
	AllEnemies Pattern = "ALL_ENEMIES"
)

// Targeting wraps the pattern so content can grow more targeting keys.
type Targeting struct {
	Pattern Pattern `yaml:"pattern"`
}

// Cost is one resource or stat that must be paid to use a skill.
type Cost struct {
	Stat   component.Stat `yaml:"stat"`
	Amount int            `yaml:"amount"`
}

// Effect is one independently resolved part of a skill.
type Effect struct {
	Type        EffectType     `yaml:"type"`
	Target      Target         `yaml:"target"`
	Targeting   Targeting      `yaml:"targeting"`
	Power       int            `yaml:"power"`
	ScalingStat component.Stat `yaml:"scaling_stat"`
	EffectID    string         `yaml:"effect_id"`
}

// StartsFromSelf reports whether the effect ignores the chosen target.
func (e Effect) StartsFromSelf() bool { return e.Target == TargetSelf }

// PatternOrDefault returns the declared pattern, or Single when none is set.
func (e Effect) PatternOrDefault() Pattern {
	if e.Targeting.Pattern == "" {
		return Single
	}
	return e.Targeting.Pattern
}

// Def is the static definition of a skill, loaded from YAML.
type Def struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Costs       []Cost   `yaml:"costs"`
	Effects     []Effect `yaml:"effects"`
}

// Validate checks ids, cost stats, effect types, patterns and scaling stats.
//
// Postcondition: Returns nil if valid, or an error joining every violation.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if len(d.Effects) == 0 {
		errs = append(errs, errors.New("at least one effect is required"))
	}
	for i, c := range d.Costs {
		if c.Stat != component.ResourceHealth && c.Stat != component.ResourceMana && !c.Stat.IsDerived() {
			errs = append(errs, fmt.Errorf("costs[%d]: unknown stat %q", i, c.Stat))
		}
		if c.Amount < 0 {
			errs = append(errs, fmt.Errorf("costs[%d]: amount must be >= 0", i))
		}
	}
	for i, e := range d.Effects {
		switch e.Type {
		case Damage, Heal:
		case ApplyEffect:
			if e.EffectID == "" {
				errs = append(errs, fmt.Errorf("effects[%d]: ApplyEffect requires effect_id", i))
			}
		default:
			errs = append(errs, fmt.Errorf("effects[%d]: unknown type %q", i, e.Type))
		}
		switch e.Target {
		case "", TargetChosen, TargetSelf:
		default:
			errs = append(errs, fmt.Errorf("effects[%d]: unknown target %q", i, e.Target))
		}
		switch e.PatternOrDefault() {
		case Single, FrontRow, BackRow, Adjacent, AllEnemies:
		default:
			errs = append(errs, fmt.Errorf("effects[%d]: unknown targeting pattern %q", i, e.Targeting.Pattern))
		}
		if e.ScalingStat != "" && !e.ScalingStat.IsDerived() {
			errs = append(errs, fmt.Errorf("effects[%d]: unknown scaling_stat %q", i, e.ScalingStat))
		}
		if e.Power < 0 {
			errs = append(errs, fmt.Errorf("effects[%d]: power must be >= 0", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("skill %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Has reports whether any effect of the skill is of type t.
func (d *Def) Has(t EffectType) bool {
	for _, e := range d.Effects {
		if e.Type == t {
			return true
		}
	}
	return false
}

// DamagePower returns the highest power among the skill's Damage effects.
func (d *Def) DamagePower() int {
	best := 0
	for _, e := range d.Effects {
		if e.Type == Damage && e.Power > best {
			best = e.Power
		}
	}
	return best
}

// SingleTargetDamage reports whether the skill deals damage and every damage
// effect hits only the chosen target.
func (d *Def) SingleTargetDamage() bool {
	found := false
	for _, e := range d.Effects {
		if e.Type != Damage {
			continue
		}
		if e.PatternOrDefault() != Single || e.StartsFromSelf() {
			return false
		}
		found = true
	}
	return found
}

// HealsOnlySelf reports whether the skill heals and every heal effect lands
// on the caster regardless of the chosen target.
func (d *Def) HealsOnlySelf() bool {
	found := false
	for _, e := range d.Effects {
		if e.Type != Heal {
			continue
		}
		if !e.StartsFromSelf() {
			return false
		}
		found = true
	}
	return found
}

// Registry holds all known skill definitions keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds def, overwriting any existing entry with the same ID.
//
// Precondition: def must be non-nil with a non-empty ID.
func (r *Registry) Register(def *Def) {
	r.defs[def.ID] = def
}

// Get returns the definition for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Len returns the number of registered skills.
func (r *Registry) Len() int { return len(r.defs) }

// All returns every definition sorted by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadFromBytes parses and validates a single skill definition.
func LoadFromBytes(data []byte) (*Def, error) {
	var def Def
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parsing skill YAML: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadDirectory reads every *.yaml file in dir as one skill definition.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a populated Registry, or an error naming the first
// file that fails to read, parse or validate, or a duplicated ID.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading skill dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		def, err := LoadFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
		if _, dup := reg.Get(def.ID); dup {
			return nil, fmt.Errorf("%q: duplicate skill id %q", path, def.ID)
		}
		reg.Register(def)
	}
	return reg, nil
}
