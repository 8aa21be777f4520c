package effect

import "github.com/cory-johannsen/skirmish/internal/game/component"

// Totals is the per-stat sum of every active effect's stat modifier.
type Totals struct {
	Flat    map[component.Stat]float64
	Percent map[component.Stat]float64
}

// Apply returns (value + flat) * (1 + percent/100) for stat s.
func (t Totals) Apply(s component.Stat, value float64) float64 {
	return (value + t.Flat[s]) * (1 + t.Percent[s]/100)
}

// Sum aggregates the stat modifiers of active. Instances whose definition is
// unknown or carries no modifier contribute nothing. Stacked instances of the
// same effect each contribute.
//
// Postcondition: the returned maps are non-nil.
func Sum(active component.ActiveEffects, defs Lookup) Totals {
	t := Totals{
		Flat:    make(map[component.Stat]float64),
		Percent: make(map[component.Stat]float64),
	}
	for _, inst := range active {
		def, ok := defs.Get(inst.EffectID)
		if !ok || def.StatModifier == nil {
			continue
		}
		m := def.StatModifier
		switch m.Type {
		case component.Flat:
			t.Flat[m.Stat] += m.Value
		case component.Percent:
			t.Percent[m.Stat] += m.Value
		}
	}
	return t
}
