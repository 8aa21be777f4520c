// Package npc provides actor templates and the spawner that turns them into
// fully componented entities.
package npc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/component"
)

// EquipmentEntry is one occupied equipment slot in a template.
type EquipmentEntry struct {
	Slot    string                 `yaml:"slot"`
	Item    string                 `yaml:"item"`
	Bonuses map[component.Stat]int `yaml:"bonuses"`
}

// Template defines a reusable actor loaded from YAML.
type Template struct {
	ID          string               `yaml:"id"`
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Level       int                  `yaml:"level"`
	Stats       component.CoreStats  `yaml:"stats"`
	Skills      []string             `yaml:"skills"`
	AIProfile   component.AIProfile  `yaml:"ai_profile"` // empty = aggressor for mobs
	Traits      []component.Trait    `yaml:"traits"`
	Archetype   *component.Archetype `yaml:"archetype"`
	Equipment   []EquipmentEntry     `yaml:"equipment"`
	// Player marks externally controlled characters. Players never get an AI profile.
	Player bool `yaml:"player"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1, core
// stats are non-negative, every modifier and equipment bonus names a derived
// stat, and a player template carries no AI profile.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("npc template %q: level must be >= 1", t.ID)
	}
	if t.Stats.Strength < 0 || t.Stats.Dexterity < 0 || t.Stats.Intelligence < 0 {
		return fmt.Errorf("npc template %q: core stats must be >= 0", t.ID)
	}
	if t.Player && t.AIProfile != "" {
		return fmt.Errorf("npc template %q: player templates must not set ai_profile", t.ID)
	}
	for _, s := range t.Skills {
		if s == "" {
			return fmt.Errorf("npc template %q: skill ids must not be empty", t.ID)
		}
	}
	for _, tr := range t.Traits {
		for _, m := range tr.Modifiers {
			if err := m.Validate(); err != nil {
				return fmt.Errorf("npc template %q: trait %q: %w", t.ID, tr.Name, err)
			}
		}
	}
	if t.Archetype != nil {
		for _, m := range t.Archetype.Modifiers {
			if err := m.Validate(); err != nil {
				return fmt.Errorf("npc template %q: archetype %q: %w", t.ID, t.Archetype.Name, err)
			}
		}
	}
	for i, eq := range t.Equipment {
		if eq.Slot == "" {
			return fmt.Errorf("npc template %q: equipment[%d] must have a slot", t.ID, i)
		}
		for stat := range eq.Bonuses {
			if !stat.IsDerived() {
				return fmt.Errorf("npc template %q: equipment %q: unknown stat %q", t.ID, eq.Slot, stat)
			}
		}
	}
	return nil
}

// Profile returns the AI profile a spawned actor carries, or false for players.
func (t *Template) Profile() (component.AIProfile, bool) {
	if t.Player {
		return "", false
	}
	if t.AIProfile == "" {
		return component.ProfileAggressor, true
	}
	return t.AIProfile, true
}

// LoadTemplateFromBytes parses a single template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error. Unknown fields are rejected.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// Registry indexes templates by ID.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// Register stores tmpl, replacing any template with the same ID.
func (r *Registry) Register(tmpl *Template) {
	r.templates[tmpl.ID] = tmpl
}

// Get returns the template for id.
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// IDs returns every registered template ID in sorted order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.templates))
	for id := range r.templates {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// LoadDirectory reads all *.yaml files in dir as one template each.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first read, parse,
// validate or duplicate-ID failure; on error, the partial result is discarded.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if _, dup := reg.Get(tmpl.ID); dup {
			return nil, fmt.Errorf("loading %q: duplicate template id %q", path, tmpl.ID)
		}
		reg.Register(tmpl)
	}
	return reg, nil
}
