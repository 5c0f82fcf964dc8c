package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/dice"
)

// CombatantInfo is a snapshot of a combatant's state passed to Lua callbacks.
// It reaches Lua as a table with the snake_case field names below.
type CombatantInfo struct {
	ID        string
	Name      string
	HP        float64
	MaxHP     float64
	Attack    int
	Armor     int
	Dodge     int
	Level     int
	Abilities []string
}

// Manager owns one sandboxed LState per script and exposes hook dispatch.
//
// Each script's LState is single-threaded; the mutex serializes every call.
type Manager struct {
	mu     sync.Mutex
	states map[string]*lua.LState
	limits map[string]int
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scripts loaded; panics on a
// nil roller or logger.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil || logger == nil {
		panic("scripting: NewManager requires a roller and a logger")
	}
	return &Manager{
		states: make(map[string]*lua.LState),
		limits: make(map[string]int),
		roller: roller,
		logger: logger,
	}
}

// LoadDir loads every *.lua file in dir as its own script, named after the
// file without its extension, in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the loaded names, or an error on the first failure.
func (m *Manager) LoadDir(dir string, instLimit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	names := make([]string, 0, len(files))
	for _, f := range files {
		name := strings.TrimSuffix(f, ".lua")
		if err := m.Load(name, filepath.Join(dir, f), instLimit); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Load creates a sandboxed VM for name, registers the engine.* modules, then
// executes the file at path. Loading a name twice replaces the earlier VM.
//
// Precondition: name must be non-empty.
// Postcondition: the script is registered; returns error on Lua load failure.
func (m *Manager) Load(name, path string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	err := L.DoFile(path)
	cancel()
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: loading %q as %q: %w", path, name, err)
	}

	m.mu.Lock()
	if old, ok := m.states[name]; ok {
		old.Close()
	}
	m.states[name] = L
	m.limits[name] = instLimit
	m.mu.Unlock()
	return nil
}

// Has reports whether a script named name is loaded.
func (m *Manager) Has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.states[name]
	return ok
}

// CallHook calls the named Lua global function in script's VM with a fresh
// instruction budget. Returns (LNil, nil) if the script or hook is not
// defined. Lua runtime errors, including an exhausted budget, are logged at
// Warn level and never propagated.
//
// Arguments are converted by ToLValue.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(script, hook string, args ...any) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	L, ok := m.states[script]
	if !ok {
		m.logger.Debug("scripting: no such script",
			zap.String("script", script),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	values := make([]lua.LValue, len(args))
	for i, a := range args {
		v, err := ToLValue(L, a)
		if err != nil {
			return lua.LNil, fmt.Errorf("scripting: %s.%s argument %d: %w", script, hook, i+1, err)
		}
		values[i] = v
	}

	defer budget(L, m.limits[script])()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, values...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("script", script),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, L := range m.states {
		L.Close()
		delete(m.states, name)
	}
}

// ToLValue converts a Go value to a Lua value built in L. Supported: nil,
// bool, int, float64, string, []int (as 1-based indices), []string,
// CombatantInfo, []CombatantInfo and any lua.LValue.
func ToLValue(L *lua.LState, v any) (lua.LValue, error) {
	switch x := v.(type) {
	case nil:
		return lua.LNil, nil
	case lua.LValue:
		return x, nil
	case bool:
		return lua.LBool(x), nil
	case int:
		return lua.LNumber(x), nil
	case float64:
		return lua.LNumber(x), nil
	case string:
		return lua.LString(x), nil
	case []int:
		t := L.NewTable()
		for _, n := range x {
			t.Append(lua.LNumber(n + 1))
		}
		return t, nil
	case []string:
		t := L.NewTable()
		for _, s := range x {
			t.Append(lua.LString(s))
		}
		return t, nil
	case CombatantInfo:
		return combatantTable(L, x), nil
	case []CombatantInfo:
		t := L.NewTable()
		for _, c := range x {
			t.Append(combatantTable(L, c))
		}
		return t, nil
	case map[string]any:
		t := L.NewTable()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fv, err := ToLValue(L, x[k])
			if err != nil {
				return lua.LNil, fmt.Errorf("field %q: %w", k, err)
			}
			t.RawSetString(k, fv)
		}
		return t, nil
	default:
		return lua.LNil, fmt.Errorf("unsupported type %T", v)
	}
}

func combatantTable(L *lua.LState, c CombatantInfo) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(c.ID))
	t.RawSetString("name", lua.LString(c.Name))
	t.RawSetString("hp", lua.LNumber(c.HP))
	t.RawSetString("max_hp", lua.LNumber(c.MaxHP))
	t.RawSetString("attack", lua.LNumber(c.Attack))
	t.RawSetString("armor", lua.LNumber(c.Armor))
	t.RawSetString("dodge", lua.LNumber(c.Dodge))
	t.RawSetString("level", lua.LNumber(c.Level))
	abilities := L.NewTable()
	for _, a := range c.Abilities {
		abilities.Append(lua.LString(a))
	}
	t.RawSetString("abilities", abilities)
	return t
}
