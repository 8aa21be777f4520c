// Package component defines the component records attached to entities.
// The types carry data only; the systems that own each kind live elsewhere.
package component

import "fmt"

// Stat names a derived combat stat. The same keys are used by content
// (modifiers, skill costs, scaling stats) and by the stat calculator.
type Stat string

const (
	StatAttack      Stat = "attack"
	StatMagicAttack Stat = "magic_attack"
	StatDefense     Stat = "defense"
	StatMagicResist Stat = "magic_resist"
	StatCritChance  Stat = "crit_chance"
	StatCritDamage  Stat = "crit_damage"
	StatDodge       Stat = "dodge"
	StatSpeed       Stat = "speed"
	StatAccuracy    Stat = "accuracy"
	StatMaxHealth   Stat = "max_health"
	StatMaxMana     Stat = "max_mana"
)

// Resource keys name pools rather than derived stats. They are valid in skill costs.
const (
	ResourceHealth Stat = "health"
	ResourceMana   Stat = "mana"
)

// DerivedStatKeys returns every derived stat in a fixed order.
func DerivedStatKeys() []Stat {
	return []Stat{
		StatAttack, StatMagicAttack, StatDefense, StatMagicResist,
		StatCritChance, StatCritDamage, StatDodge, StatSpeed, StatAccuracy,
		StatMaxHealth, StatMaxMana,
	}
}

// IsDerived reports whether s names a derived stat.
func (s Stat) IsDerived() bool {
	for _, k := range DerivedStatKeys() {
		if k == s {
			return true
		}
	}
	return false
}

// CoreStats are the source-of-truth inputs to every derived stat.
type CoreStats struct {
	Strength     int `yaml:"strength"`
	Dexterity    int `yaml:"dexterity"`
	Intelligence int `yaml:"intelligence"`
}

// DerivedStats are recomputed from CoreStats plus modifiers. They are never
// patched incrementally except when a skill cost is paid from them.
type DerivedStats struct {
	Attack      int
	MagicAttack int
	Defense     int
	MagicResist int
	CritChance  int
	CritDamage  int
	Dodge       int
	Speed       int
	Accuracy    int
	MaxHealth   int
	MaxMana     int
}

func (d *DerivedStats) field(s Stat) *int {
	switch s {
	case StatAttack:
		return &d.Attack
	case StatMagicAttack:
		return &d.MagicAttack
	case StatDefense:
		return &d.Defense
	case StatMagicResist:
		return &d.MagicResist
	case StatCritChance:
		return &d.CritChance
	case StatCritDamage:
		return &d.CritDamage
	case StatDodge:
		return &d.Dodge
	case StatSpeed:
		return &d.Speed
	case StatAccuracy:
		return &d.Accuracy
	case StatMaxHealth:
		return &d.MaxHealth
	case StatMaxMana:
		return &d.MaxMana
	default:
		return nil
	}
}

// Value returns the value of s, or false when s is not a derived stat.
func (d DerivedStats) Value(s Stat) (int, bool) {
	p := d.field(s)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Set writes v into s and reports whether s is a derived stat.
func (d *DerivedStats) Set(s Stat, v int) bool {
	p := d.field(s)
	if p == nil {
		return false
	}
	*p = v
	return true
}

// ValueType selects how a Modifier combines with a stat.
type ValueType string

const (
	Flat    ValueType = "FLAT"
	Percent ValueType = "PERCENT"
)

// Modifier adjusts one stat. Percent values are whole percentages: 10 means +10%.
type Modifier struct {
	Stat  Stat      `yaml:"stat"`
	Value float64   `yaml:"value"`
	Type  ValueType `yaml:"value_type"`
}

// Validate checks that the modifier names a derived stat and a known value type.
func (m Modifier) Validate() error {
	if !m.Stat.IsDerived() {
		return fmt.Errorf("modifier: unknown stat %q", m.Stat)
	}
	if m.Type != Flat && m.Type != Percent {
		return fmt.Errorf("modifier on %q: value_type must be FLAT or PERCENT, got %q", m.Stat, m.Type)
	}
	return nil
}
