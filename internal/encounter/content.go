package encounter

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
)

// Content bundles the definitions every encounter shares. Content is read-only
// once loaded and safe to share across goroutines.
type Content struct {
	Skills  *skill.Registry
	Effects *effect.Registry
	Mobs    *npc.Registry
	// ScriptsDir holds AI scripts loaded into each encounter's VM; empty disables scripting.
	ScriptsDir string
}

// LoadContent reads every content directory named in cfg.
//
// Precondition: cfg passed config validation.
// Postcondition: every skill effect of type APPLY_EFFECT names a loaded effect,
// and every template skill names a loaded skill; otherwise an error is returned.
func LoadContent(cfg config.ContentConfig) (Content, error) {
	skills, err := skill.LoadDirectory(cfg.SkillsDir)
	if err != nil {
		return Content{}, fmt.Errorf("loading skills: %w", err)
	}
	effects, err := effect.LoadDirectory(cfg.EffectsDir)
	if err != nil {
		return Content{}, fmt.Errorf("loading effects: %w", err)
	}
	mobs, err := npc.LoadDirectory(cfg.MobsDir)
	if err != nil {
		return Content{}, fmt.Errorf("loading mobs: %w", err)
	}
	c := Content{Skills: skills, Effects: effects, Mobs: mobs, ScriptsDir: cfg.ScriptsDir}
	if err := c.CrossCheck(); err != nil {
		return Content{}, err
	}
	return c, nil
}

// CrossCheck verifies references between content kinds.
func (c Content) CrossCheck() error {
	for _, def := range c.Skills.All() {
		for _, e := range def.Effects {
			if e.Type != skill.ApplyEffect {
				continue
			}
			if _, ok := c.Effects.Get(e.EffectID); !ok {
				return fmt.Errorf("skill %q: unknown effect %q", def.ID, e.EffectID)
			}
		}
	}
	for _, id := range c.Mobs.IDs() {
		tmpl, _ := c.Mobs.Get(id)
		for _, s := range tmpl.Skills {
			if _, ok := c.Skills.Get(s); !ok {
				return fmt.Errorf("template %q: unknown skill %q", id, s)
			}
		}
	}
	return nil
}
