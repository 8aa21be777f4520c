package npc_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
)

const goblinYAML = `
id: goblin_shaman
name: Goblin Shaman
description: Mutters over a bundle of bones.
level: 3
stats:
  strength: 4
  dexterity: 8
  intelligence: 14
skills: [hex, mend]
ai_profile: healer
traits:
  - name: Thick Skull
    modifiers:
      - stat: defense
        value: 2
        value_type: FLAT
archetype:
  name: Mystic
  modifiers:
    - stat: magic_attack
      value: 10
      value_type: PERCENT
equipment:
  - slot: main_hand
    item: bone_staff
    bonuses:
      magic_attack: 4
`

func TestLoadTemplateFromBytes_FullTemplate(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(goblinYAML))
	require.NoError(t, err)
	assert.Equal(t, "goblin_shaman", tmpl.ID)
	assert.Equal(t, 3, tmpl.Level)
	assert.Equal(t, component.CoreStats{Strength: 4, Dexterity: 8, Intelligence: 14}, tmpl.Stats)
	assert.Equal(t, []string{"hex", "mend"}, tmpl.Skills)
	assert.Equal(t, component.ProfileHealer, tmpl.AIProfile)
	require.Len(t, tmpl.Traits, 1)
	assert.Equal(t, component.Modifier{Stat: component.StatDefense, Value: 2, Type: component.Flat}, tmpl.Traits[0].Modifiers[0])
	require.NotNil(t, tmpl.Archetype)
	assert.Equal(t, "Mystic", tmpl.Archetype.Name)
	require.Len(t, tmpl.Equipment, 1)
	assert.Equal(t, map[component.Stat]int{component.StatMagicAttack: 4}, tmpl.Equipment[0].Bonuses)
}

func TestLoadTemplateFromBytes_UnknownFieldRejected(t *testing.T) {
	_, err := npc.LoadTemplateFromBytes([]byte("id: x\nname: X\nlevel: 1\nmax_hp: 18\n"))
	assert.Error(t, err)
}

func TestTemplate_Validate(t *testing.T) {
	valid := func() npc.Template { return npc.Template{ID: "rat", Name: "Rat", Level: 1} }
	base := valid()
	require.NoError(t, base.Validate())

	luck := []component.Modifier{{Stat: "luck", Type: component.Flat}}
	mult := []component.Modifier{{Stat: component.StatAttack, Type: "MULT"}}
	manaBonus := map[component.Stat]int{component.ResourceMana: 3}
	cases := map[string]func(*npc.Template){
		"missing id":     func(t *npc.Template) { t.ID = "" },
		"missing name":   func(t *npc.Template) { t.Name = "" },
		"level zero":     func(t *npc.Template) { t.Level = 0 },
		"negative stat":  func(t *npc.Template) { t.Stats.Dexterity = -1 },
		"player with ai": func(t *npc.Template) { t.Player = true; t.AIProfile = component.ProfileHealer },
		"empty skill id": func(t *npc.Template) { t.Skills = []string{""} },
		"bad trait stat": func(t *npc.Template) { t.Traits = []component.Trait{{Name: "x", Modifiers: luck}} },
		"bad archetype":  func(t *npc.Template) { t.Archetype = &component.Archetype{Modifiers: mult} },
		"slotless item":  func(t *npc.Template) { t.Equipment = []npc.EquipmentEntry{{Item: "sword"}} },
		"bad bonus stat": func(t *npc.Template) { t.Equipment = []npc.EquipmentEntry{{Slot: "hand", Bonuses: manaBonus}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tmpl := valid()
			mutate(&tmpl)
			assert.Error(t, tmpl.Validate())
		})
	}
}

func TestTemplate_Profile(t *testing.T) {
	p, ok := (&npc.Template{}).Profile()
	assert.True(t, ok)
	assert.Equal(t, component.ProfileAggressor, p)

	p, ok = (&npc.Template{AIProfile: "sniper"}).Profile()
	assert.True(t, ok)
	assert.Equal(t, component.AIProfile("sniper"), p)

	_, ok = (&npc.Template{Player: true}).Profile()
	assert.False(t, ok)
}

func TestLoadDirectory_LoadsYAMLOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "goblin.yaml"), []byte(goblinYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rat.yaml"), []byte("id: rat\nname: Rat\nlevel: 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# mobs"), 0644))

	reg, err := npc.LoadDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"goblin_shaman", "rat"}, reg.IDs())
	_, ok := reg.Get("rat")
	assert.True(t, ok)
}

func TestLoadDirectory_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("id: rat\nname: Rat\nlevel: 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("id: rat\nname: Big Rat\nlevel: 2\n"), 0644))
	_, err := npc.LoadDirectory(dir)
	assert.ErrorContains(t, err, "duplicate")
}

func TestLoadDirectory_MissingDir(t *testing.T) {
	_, err := npc.LoadDirectory(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestPropertyTemplate_LevelBelowOneRejected(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(-50, 50).Draw(rt, "level")
		data := fmt.Sprintf("id: rat\nname: Rat\nlevel: %d\n", level)
		_, err := npc.LoadTemplateFromBytes([]byte(data))
		if level < 1 {
			assert.Error(rt, err)
		} else {
			assert.NoError(rt, err)
		}
	})
}
