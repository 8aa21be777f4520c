// Package effect defines timed status effects and the lifecycle system that
// attaches, ticks and expires them.
package effect

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

// TickType selects what a per-turn tick does to the owner.
type TickType string

const (
	TickDamage TickType = "DAMAGE"
	TickHeal   TickType = "HEAL"
)

// Tick is applied to the owner each time the owner's turn starts.
type Tick struct {
	Type  TickType `yaml:"type"`
	Power int      `yaml:"power"`
}

// Def is the static definition of an effect, loaded from YAML.
type Def struct {
	ID           string              `yaml:"id"`
	Name         string              `yaml:"name"`
	Description  string              `yaml:"description"`
	BaseDuration int                 `yaml:"base_duration"`
	StatModifier *component.Modifier `yaml:"stat_modifier"`
	Tick         *Tick               `yaml:"tick"`
}

// Validate checks the id, the duration, the modifier and the tick.
//
// Postcondition: Returns nil if valid, or an error joining every violation.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.BaseDuration < 1 {
		errs = append(errs, fmt.Errorf("base_duration must be >= 1, got %d", d.BaseDuration))
	}
	if d.StatModifier != nil {
		if err := d.StatModifier.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.Tick != nil {
		if d.Tick.Type != TickDamage && d.Tick.Type != TickHeal {
			errs = append(errs, fmt.Errorf("tick.type must be DAMAGE or HEAL, got %q", d.Tick.Type))
		}
		if d.Tick.Power < 0 {
			errs = append(errs, fmt.Errorf("tick.power must be >= 0, got %d", d.Tick.Power))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("effect %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Lookup resolves effect ids to definitions.
type Lookup interface {
	Get(id string) (*Def, bool)
}

// Registry holds all known effect definitions keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds def, overwriting any existing entry with the same ID.
func (r *Registry) Register(def *Def) {
	r.defs[def.ID] = def
}

// Get returns the definition for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Len returns the number of registered effects.
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

// LoadFromBytes parses and validates a single effect definition.
func LoadFromBytes(data []byte) (*Def, error) {
	var def Def
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parsing effect YAML: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadDirectory reads every *.yaml file in dir as one effect definition.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a populated Registry, or an error naming the first
// bad file.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect dir %q: %w", dir, err)
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
			return nil, fmt.Errorf("%q: duplicate effect id %q", path, def.ID)
		}
		reg.Register(def)
	}
	return reg, nil
}
