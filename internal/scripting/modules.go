package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// registerModules installs the engine global into v's state:
//
//	engine.log.debug|info|warn|error(msg)
//	engine.dice.roll(expr)          -> {total, dice, modifier}
//	engine.combat.combatants(actor) -> array of {id, name, team, row, hp, max_hp, ally, self}
func (m *Manager) registerModules(v *vm) {
	L := v.L
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", diceModule(L, v))
	L.SetField(engine, "combat", combatModule(L, v))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, log := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			log(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func diceModule(L *lua.LState, v *vm) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		expr, err := dice.Parse(L.CheckString(1))
		if err != nil {
			L.RaiseError("engine.dice.roll: %s", err.Error())
			return 0
		}
		res := v.roller.Roll(expr)
		out := L.NewTable()
		L.SetField(out, "total", lua.LNumber(res.Total()))
		L.SetField(out, "dice", lua.LNumber(res.Total()-res.Modifier))
		L.SetField(out, "modifier", lua.LNumber(res.Modifier))
		L.Push(out)
		return 1
	}))
	return mod
}

func combatModule(L *lua.LState, v *vm) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "combatants", L.NewFunction(func(L *lua.LState) int {
		actor := uint64(L.CheckNumber(1))
		list := L.NewTable()
		if v.roster != nil {
			for _, c := range v.roster(actor) {
				t := L.NewTable()
				L.SetField(t, "id", lua.LNumber(c.ID))
				L.SetField(t, "name", lua.LString(c.Name))
				L.SetField(t, "team", lua.LString(c.Team))
				L.SetField(t, "row", lua.LString(c.Row))
				L.SetField(t, "hp", lua.LNumber(c.HP))
				L.SetField(t, "max_hp", lua.LNumber(c.MaxHP))
				L.SetField(t, "ally", lua.LBool(c.Ally))
				L.SetField(t, "self", lua.LBool(c.Self))
				list.Append(t)
			}
		}
		L.Push(list)
		return 1
	}))
	return mod
}
