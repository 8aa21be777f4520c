package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/ecs"
)

type health struct{ HP int }

func TestRegistry_CreateStartsAtOne(t *testing.T) {
	reg := ecs.NewRegistry()
	assert.Equal(t, ecs.Entity(1), reg.Create())
	assert.Equal(t, ecs.Entity(2), reg.Create())
	assert.Equal(t, 2, reg.Count())
}

func TestRegistry_DestroyRemovesRows(t *testing.T) {
	reg := ecs.NewRegistry()
	tbl := ecs.NewTable[health](reg, "health")
	e := reg.Create()
	require.True(t, tbl.Set(e, health{HP: 10}))

	reg.Destroy(e)

	assert.False(t, reg.Alive(e))
	assert.False(t, tbl.Has(e))
	assert.Equal(t, 0, tbl.Len())
}

func TestRegistry_DestroyUnknown_NoOp(t *testing.T) {
	reg := ecs.NewRegistry()
	reg.Destroy(42) // must not panic
	assert.Equal(t, 0, reg.Count())
}

func TestTable_SetOnDeadEntity_Ignored(t *testing.T) {
	reg := ecs.NewRegistry()
	tbl := ecs.NewTable[health](reg, "health")
	e := reg.Create()
	reg.Destroy(e)
	assert.False(t, tbl.Set(e, health{HP: 1}))
	assert.False(t, tbl.Has(e))
}

func TestTable_GetReturnsCopy(t *testing.T) {
	reg := ecs.NewRegistry()
	tbl := ecs.NewTable[health](reg, "health")
	e := reg.Create()
	tbl.Set(e, health{HP: 10})

	v, ok := tbl.Get(e)
	require.True(t, ok)
	v.HP = 0

	stored, _ := tbl.Get(e)
	assert.Equal(t, 10, stored.HP, "mutating a copy must not change the table")
}

func TestTable_Update(t *testing.T) {
	reg := ecs.NewRegistry()
	tbl := ecs.NewTable[health](reg, "health")
	e := reg.Create()
	assert.False(t, tbl.Update(e, func(h *health) { h.HP = 3 }), "missing row")

	tbl.Set(e, health{HP: 10})
	assert.True(t, tbl.Update(e, func(h *health) { h.HP -= 4 }))
	v, _ := tbl.Get(e)
	assert.Equal(t, 6, v.HP)
}

func TestTable_EntitiesSorted(t *testing.T) {
	reg := ecs.NewRegistry()
	tbl := ecs.NewTable[health](reg, "health")
	var want []ecs.Entity
	for i := 0; i < 5; i++ {
		e := reg.Create()
		tbl.Set(e, health{HP: i})
		want = append(want, e)
	}
	assert.Equal(t, want, tbl.Entities())
	assert.Equal(t, want, tbl.View().Entities())
}

func TestPropertyRegistry_HandlesNeverReused(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := ecs.NewRegistry()
		seen := map[ecs.Entity]bool{}
		ops := rapid.SliceOfN(rapid.Bool(), 1, 50).Draw(t, "ops")
		var last ecs.Entity
		for _, create := range ops {
			if create || last == ecs.NilEntity {
				e := reg.Create()
				assert.False(t, seen[e], "handle %d reused", e)
				seen[e] = true
				last = e
				continue
			}
			reg.Destroy(last)
		}
	})
}
