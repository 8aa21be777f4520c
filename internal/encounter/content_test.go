package encounter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/encounter"
	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

const (
	venomFangYAML = `
id: venom_fang
name: Venom Fang
effects:
  - type: Damage
    power: 5
    scaling_stat: attack
  - type: ApplyEffect
    effect_id: poison
`
	poisonYAML = `
id: poison
name: Poison
base_duration: 3
tick:
  type: DAMAGE
  power: 2
`
	spiderYAML = `
id: spider
name: Cave Spider
level: 2
stats:
  strength: 3
  dexterity: 12
skills: [venom_fang]
`
)

func writeContent(t *testing.T, files map[string]string) config.ContentConfig {
	t.Helper()
	root := t.TempDir()
	cfg := config.ContentConfig{
		SkillsDir:  filepath.Join(root, "skills"),
		EffectsDir: filepath.Join(root, "effects"),
		MobsDir:    filepath.Join(root, "mobs"),
	}
	for _, dir := range []string{cfg.SkillsDir, cfg.EffectsDir, cfg.MobsDir} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(body), 0644))
	}
	return cfg
}

func TestLoadContent_LoadsEveryKind(t *testing.T) {
	cfg := writeContent(t, map[string]string{
		"skills/venom_fang.yaml": venomFangYAML,
		"effects/poison.yaml":    poisonYAML,
		"mobs/spider.yaml":       spiderYAML,
	})

	c, err := encounter.LoadContent(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Skills.Len())
	assert.Equal(t, 1, c.Effects.Len())
	assert.Equal(t, []string{"spider"}, c.Mobs.IDs())
	assert.Empty(t, c.ScriptsDir)
}

func TestLoadContent_UnknownEffectReference(t *testing.T) {
	cfg := writeContent(t, map[string]string{
		"skills/venom_fang.yaml": venomFangYAML,
		"mobs/spider.yaml":       spiderYAML,
	})
	_, err := encounter.LoadContent(cfg)
	assert.ErrorContains(t, err, `unknown effect "poison"`)
}

func TestLoadContent_UnknownTemplateSkill(t *testing.T) {
	cfg := writeContent(t, map[string]string{
		"effects/poison.yaml": poisonYAML,
		"mobs/spider.yaml":    spiderYAML,
	})
	_, err := encounter.LoadContent(cfg)
	assert.ErrorContains(t, err, `unknown skill "venom_fang"`)
}

func TestLoadContent_MissingDirectory(t *testing.T) {
	cfg := writeContent(t, nil)
	cfg.MobsDir = filepath.Join(cfg.MobsDir, "missing")
	_, err := encounter.LoadContent(cfg)
	assert.ErrorContains(t, err, "loading mobs")
}

func TestContent_CrossCheckAcceptsFixture(t *testing.T) {
	assert.NoError(t, testContent(t).CrossCheck())
}

func TestContent_CrossCheckRejectsDanglingSkill(t *testing.T) {
	c := encounter.Content{Skills: skill.NewRegistry(), Effects: testContent(t).Effects, Mobs: npc.NewRegistry()}
	c.Mobs.Register(&npc.Template{ID: "imp", Name: "Imp", Level: 1, Skills: []string{"hellfire"}})
	assert.ErrorContains(t, c.CrossCheck(), "hellfire")
}

func TestLoadContent_ShippedContentRunsToCompletion(t *testing.T) {
	root := filepath.Join("..", "..", "content")
	c, err := encounter.LoadContent(config.ContentConfig{
		SkillsDir:  filepath.Join(root, "skills"),
		EffectsDir: filepath.Join(root, "effects"),
		MobsDir:    filepath.Join(root, "mobs"),
		ScriptsDir: filepath.Join(root, "scripts", "ai"),
	})
	require.NoError(t, err)

	scripts := scripting.NewManager(dice.NewLoggedRoller(dice.NewSeededSource(7), zap.NewNop()), zap.NewNop(), 0)
	t.Cleanup(scripts.Close)
	rules := testRules()
	rules.MaxRounds = 200
	mgr := encounter.NewManager(c, rules, func() dice.Source { return dice.NewSeededSource(42) }, scripts, zap.NewNop())

	enc, err := mgr.Start(
		[]encounter.Member{front("ganger_bruiser"), {Template: "street_medic", Row: component.Back}},
		[]encounter.Member{front("goblin_raider"), {Template: "goblin_sniper", Row: component.Back}},
	)
	require.NoError(t, err)
	assert.True(t, enc.Outcome().Ended)
}
