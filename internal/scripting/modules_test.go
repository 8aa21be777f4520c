package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/scripting"
)

func runScript(t testing.TB, mgr *scripting.Manager, roster scripting.Roster, luaSrc, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	dir := writeTempLua(t, "test.lua", luaSrc)
	require.NoError(t, mgr.Load("modtest", dir, roster))
	ret := mgr.CallHook("modtest", hook, 1, args...)
	require.Len(t, ret, 1)
	return ret[0]
}

func TestEngineLog_AllLevels(t *testing.T) {
	mgr, logs := newTestManager(t)
	runScript(t, mgr, nil, `
		function do_logs()
			engine.log.debug("d")
			engine.log.info("i")
			engine.log.warn("w")
			engine.log.error("e")
			return true
		end
	`, "do_logs")

	levels := map[string]zapcore.Level{"d": zap.DebugLevel, "i": zap.InfoLevel, "w": zap.WarnLevel, "e": zap.ErrorLevel}
	for msg, level := range levels {
		entries := logs.FilterMessage(msg).All()
		require.Len(t, entries, 1, "message %q", msg)
		assert.Equal(t, level, entries[0].Level)
	}
}

func TestEngineDice_Roll_ReturnsTable(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, nil, `
		function do_roll()
			local r = engine.dice.roll("1d6")
			if type(r.dice) ~= "number" then error("dice field missing") end
			return r.total
		end
	`, "do_roll")
	n, ok := ret.(lua.LNumber)
	require.True(t, ok, "expected LNumber, got %T", ret)
	assert.GreaterOrEqual(t, int(n), 1)
	assert.LessOrEqual(t, int(n), 6)
}

func TestEngineDice_Roll_BadExpressionIsRuntimeError(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "test.lua", `function bad() return engine.dice.roll("lots") end`)
	require.NoError(t, mgr.Load("enc", dir, nil))
	assert.Nil(t, mgr.CallHook("enc", "bad", 1))
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestPropertyDiceRoll_TotalEqualsDicePlusModifier(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "test.lua", `
		function check_invariant(expr)
			local r = engine.dice.roll(expr)
			return r.total == r.dice + r.modifier
		end
	`)
	require.NoError(t, mgr.Load("enc", dir, nil))
	rapid.Check(t, func(rt *rapid.T) {
		expr := rapid.SampledFrom([]string{"1d6", "2d6+3", "1d4-1", "d8"}).Draw(rt, "expr")
		ret := mgr.CallHook("enc", "check_invariant", 1, lua.LString(expr))
		if assert.Len(rt, ret, 1) {
			assert.Equal(rt, lua.LTrue, ret[0], "expr %s", expr)
		}
	})
}

func TestEngineCombat_Combatants_NilRoster_EmptyList(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, nil, `
		function count() return #engine.combat.combatants(1) end
	`, "count")
	assert.Equal(t, lua.LNumber(0), ret)
}

func TestEngineCombat_Combatants_ExposesRoster(t *testing.T) {
	mgr, _ := newTestManager(t)
	var asked uint64
	roster := func(actor uint64) []scripting.CombatantInfo {
		asked = actor
		return []scripting.CombatantInfo{
			{ID: 7, Name: "Acolyte", Team: "team2", Row: "back", HP: 30, MaxHP: 30, Ally: true, Self: true},
			{ID: 3, Name: "Hero", Team: "team1", Row: "front", HP: 12, MaxHP: 80},
		}
	}
	ret := runScript(t, mgr, roster, `
		function weakest_enemy(actor)
			local best = nil
			for _, c in ipairs(engine.combat.combatants(actor)) do
				if not c.ally and c.hp > 0 and (best == nil or c.hp < best.hp) then
					best = c
				end
			end
			return best.name .. ":" .. best.row .. ":" .. best.max_hp .. ":" .. tostring(best.self)
		end
	`, "weakest_enemy", lua.LNumber(7))
	assert.Equal(t, uint64(7), asked)
	assert.Equal(t, lua.LString("Hero:front:80:false"), ret)
}
