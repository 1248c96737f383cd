package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// sharedNamespace is the reserved key for scripts loaded via LoadShared.
// CallHook falls back to this VM when no namespace VM is found.
const sharedNamespace = "__shared__"

// vm is one sandboxed LState. An LState is single-threaded, so every use
// holds mu.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per namespace and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same namespace are
// serialized; different namespaces run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no namespaces.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		logger: logger,
	}
}

// Load creates a sandboxed VM for namespace, registers the engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order. A
// namespace that was already loaded is replaced.
//
// Precondition: namespace must be non-empty; scriptDir must be a readable directory.
// Postcondition: the VM is registered; returns error on Lua load failure.
func (m *Manager) Load(namespace, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, namespace, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	return m.loadInto(namespace, instLimit, func(L *lua.LState) error {
		for _, path := range luaFiles {
			if err := L.DoFile(path); err != nil {
				return fmt.Errorf("scripting: loading %q for %q: %w", path, namespace, err)
			}
		}
		return nil
	})
}

// LoadString is Load for a single in-memory chunk.
func (m *Manager) LoadString(namespace, src string, instLimit int) error {
	return m.loadInto(namespace, instLimit, func(L *lua.LState) error {
		if err := L.DoString(src); err != nil {
			return fmt.Errorf("scripting: loading chunk for %q: %w", namespace, err)
		}
		return nil
	})
}

// LoadShared creates the shared VM used as a CallHook fallback from any
// namespace.
func (m *Manager) LoadShared(scriptDir string, instLimit int) error {
	return m.Load(sharedNamespace, scriptDir, instLimit)
}

func (m *Manager) loadInto(key string, instLimit int, run func(L *lua.LState) error) error {
	if key == "" {
		return fmt.Errorf("scripting: namespace must not be empty")
	}
	L, release := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	err := run(L)
	release()
	if err != nil {
		L.Close()
		return err
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()

	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Debug("scripting: namespace loaded", zap.String("namespace", key))
	return nil
}

// Namespaces returns the loaded namespace names, sorted.
func (m *Manager) Namespaces() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.vms))
	for k := range m.vms {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// CallHook calls the named Lua global function in namespace's VM. If the
// namespace has no VM, the shared VM is tried as a fallback. Returns
// (LNil, nil) if the hook is not defined or no VM exists. Lua runtime errors,
// including an exhausted instruction budget, are logged at Warn level and
// never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(namespace, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[namespace]
	if !ok {
		v = m.vms[sharedNamespace]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Info("scripting: no VM for namespace",
			zap.String("namespace", namespace),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.L.IsClosed() {
		return lua.LNil, nil
	}

	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	release := WithInstructionLimit(v.L, v.limit)
	defer release()
	if err := v.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("namespace", namespace),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// Close releases every VM.
//
// Postcondition: later CallHook calls return (LNil, nil).
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()

	for _, v := range vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
	}
}
