package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// CombatantInfo is a snapshot of one combatant as seen by a script.
type CombatantInfo struct {
	ID    uint64
	Name  string
	Team  string
	Row   string
	HP    int
	MaxHP int
	// Ally is true for members of the observing actor's team, including itself.
	Ally bool
	Self bool
}

// Roster returns the combatants visible to actorID, in roster order.
type Roster func(actorID uint64) []CombatantInfo

type vm struct {
	mu     sync.Mutex
	L      *lua.LState
	roster Roster
	roller *dice.Roller
}

// Manager owns one sandboxed VM per key, typically one per encounter.
//
// Calls into the same VM are serialized; different VMs run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
	limit  int
}

// NewManager creates a Manager whose script calls are each limited to
// instLimit opcodes. roller serves engine.dice.roll for VMs loaded without
// their own roller.
//
// Precondition: roller and logger must be non-nil; instLimit >= 0.
// Postcondition: returns a Manager with no VMs.
func NewManager(roller *dice.Roller, logger *zap.Logger, instLimit int) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
		limit:  instLimit,
	}
}

// Load creates a VM for key, registers the engine module bound to roster, then
// runs every *.lua file in scriptDir in lexicographic order. An existing VM for
// key is replaced.
//
// Precondition: key is non-empty; scriptDir is a readable directory.
// Postcondition: on error no VM is registered for key by this call.
func (m *Manager) Load(key, scriptDir string, roster Roster) error {
	return m.LoadWithRoller(key, scriptDir, roster, m.roller)
}

// LoadWithRoller is Load with engine.dice.roll bound to roller instead of the
// Manager's roller, so a VM can share its encounter's dice stream.
//
// Precondition: roller must be non-nil.
func (m *Manager) LoadWithRoller(key, scriptDir string, roster Roster, roller *dice.Roller) error {
	if roller == nil {
		panic("scripting.Manager.LoadWithRoller: roller must not be nil")
	}
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(files)

	v := &vm{L: NewSandboxedState(), roster: roster, roller: roller}
	m.registerModules(v)
	for _, path := range files {
		err := WithInstructionLimit(v.L, m.limit, func() error { return v.L.DoFile(path) })
		if err != nil {
			v.L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = v
	m.mu.Unlock()
	if old != nil {
		old.close()
	}
	m.logger.Debug("scripts loaded", zap.String("key", key), zap.Int("files", len(files)))
	return nil
}

// Unload closes and forgets the VM for key. Unknown keys are ignored.
func (m *Manager) Unload(key string) {
	m.mu.Lock()
	v := m.vms[key]
	delete(m.vms, key)
	m.mu.Unlock()
	if v != nil {
		v.close()
	}
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.close()
	}
}

func (v *vm) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.L.Close()
}

func (m *Manager) lookup(key string) *vm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vms[key]
}

// HasHook reports whether key's VM defines a global function named hook.
func (m *Manager) HasHook(key, hook string) bool {
	v := m.lookup(key)
	if v == nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.L.GetGlobal(hook).Type() == lua.LTFunction
}

// CallHook calls the global function hook in key's VM and returns its first
// nret results. It returns nil when key has no VM or the hook is undefined.
// Runtime errors, including an exhausted instruction budget, are logged at
// warn and also return nil.
//
// Precondition: nret >= 0.
// Postcondition: a non-nil result has exactly nret elements.
func (m *Manager) CallHook(key, hook string, nret int, args ...lua.LValue) []lua.LValue {
	v := m.lookup(key)
	if v == nil {
		m.logger.Info("scripting: no VM for key", zap.String("key", key), zap.String("hook", hook))
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	fn := v.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return nil
	}
	err := WithInstructionLimit(v.L, m.limit, func() error {
		return v.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("key", key),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return nil
	}
	out := make([]lua.LValue, nret)
	for i := range out {
		out[i] = v.L.Get(i - nret)
	}
	v.L.Pop(nret)
	return out
}
