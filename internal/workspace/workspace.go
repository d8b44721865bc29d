package workspace

import (
	"fmt"
	"strings"
	"time"

	"sync"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/models"
)

// GenericNotifyFunc receives any variable's update together with its name.
type GenericNotifyFunc func(name string, value anyvalue.AnyValue, connected bool)

type varCallback struct {
	varName  string
	listener any
	fn       NotifyFunc
}

type genericCallback struct {
	listener any
	fn       GenericNotifyFunc
}

// Workspace owns the named variables of a procedure and dispatches change
// callbacks. Variable names are unique; setup runs in registration order
// and teardown in reverse.
type Workspace struct {
	mu        sync.RWMutex
	order     []string
	vars      map[string]Variable
	setupDone bool

	cbMu         sync.Mutex
	varCallbacks []varCallback
	genCallbacks []genericCallback
}

// New creates an empty workspace
func New() *Workspace {
	return &Workspace{vars: make(map[string]Variable)}
}

// AddVariable registers a variable under a unique name
func (w *Workspace) AddVariable(name string, v Variable) error {
	if name == "" {
		return fmt.Errorf("variable name cannot be empty")
	}
	if strings.Contains(name, anyvalue.FieldSeparator) {
		return fmt.Errorf("variable name %q cannot contain %q", name, anyvalue.FieldSeparator)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.vars[name]; exists {
		return fmt.Errorf("variable %q already registered", name)
	}
	v.SetName(name)
	v.SetNotifyFunc(func(value anyvalue.AnyValue, connected bool) {
		w.dispatch(name, value, connected)
	})
	w.vars[name] = v
	w.order = append(w.order, name)
	return nil
}

// GetVariable returns a registered variable
func (w *Workspace) GetVariable(name string) (Variable, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.vars[name]
	return v, ok
}

// HasVariable reports whether the name is registered
func (w *Workspace) HasVariable(name string) bool {
	_, ok := w.GetVariable(name)
	return ok
}

// VariableNames lists registered names in registration order
func (w *Workspace) VariableNames() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, len(w.order))
	copy(names, w.order)
	return names
}

// Setup initialises all variables in registration order. The first failure
// aborts and is returned.
func (w *Workspace) Setup(registry *anyvalue.TypeRegistry) error {
	w.mu.RLock()
	order := make([]string, len(w.order))
	copy(order, w.order)
	w.mu.RUnlock()

	for _, name := range order {
		v, _ := w.GetVariable(name)
		if err := v.Setup(registry); err != nil {
			return fmt.Errorf("%w: %v", models.ErrVariableSetup, err)
		}
	}
	w.mu.Lock()
	w.setupDone = true
	w.mu.Unlock()
	return nil
}

// Teardown releases all variables in reverse registration order
func (w *Workspace) Teardown() {
	w.mu.RLock()
	order := make([]string, len(w.order))
	copy(order, w.order)
	w.mu.RUnlock()

	for i := len(order) - 1; i >= 0; i-- {
		v, _ := w.GetVariable(order[i])
		v.Teardown()
	}
	w.mu.Lock()
	w.setupDone = false
	w.mu.Unlock()
}

// IsSetup reports whether Setup completed
func (w *Workspace) IsSetup() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.setupDone
}

// splitName separates "name.field.path" into the variable name and path
func splitName(ref string) (string, string) {
	if idx := strings.Index(ref, anyvalue.FieldSeparator); idx >= 0 {
		return ref[:idx], ref[idx+1:]
	}
	return ref, ""
}

// GetValue resolves "name[.path]" and returns a copy of the addressed value
func (w *Workspace) GetValue(ref string) (anyvalue.AnyValue, bool) {
	name, path := splitName(ref)
	v, ok := w.GetVariable(name)
	if !ok {
		return anyvalue.Empty(), false
	}
	return v.GetValue(path)
}

// SetValue resolves "name[.path]" and assigns the addressed value,
// notifying observers on success.
func (w *Workspace) SetValue(ref string, value anyvalue.AnyValue) bool {
	name, path := splitName(ref)
	v, ok := w.GetVariable(name)
	if !ok {
		return false
	}
	return v.SetValue(value, path)
}

// ResetVariable restores the named variable to its freshly set up state
func (w *Workspace) ResetVariable(name string) bool {
	v, ok := w.GetVariable(name)
	if !ok {
		return false
	}
	v.Reset()
	return true
}

// WaitForVariable blocks until the named variable is available or the
// timeout elapses. The wait polls in short slices and aborts early when the
// halted callback (may be nil) reports true.
func (w *Workspace) WaitForVariable(name string, timeout time.Duration, halted func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if v, ok := w.GetVariable(name); ok && v.IsAvailable() {
			return true
		}
		if halted != nil && halted() {
			return false
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		slice := models.TimingAccuracy
		if remaining < slice {
			slice = remaining
		}
		time.Sleep(slice)
	}
}

// RegisterCallback registers a per-variable callback under a listener
// handle. Unknown variable names fail.
func (w *Workspace) RegisterCallback(varName string, fn NotifyFunc, listener any) error {
	if !w.HasVariable(varName) {
		return fmt.Errorf("variable %q not registered", varName)
	}
	if fn == nil {
		return fmt.Errorf("callback cannot be nil")
	}
	w.cbMu.Lock()
	defer w.cbMu.Unlock()
	w.varCallbacks = append(w.varCallbacks, varCallback{
		varName:  varName,
		listener: listener,
		fn:       fn,
	})
	return nil
}

// RegisterGenericCallback registers a callback invoked for any variable
// change, tagged with a listener handle.
func (w *Workspace) RegisterGenericCallback(fn GenericNotifyFunc, listener any) error {
	if fn == nil {
		return fmt.Errorf("callback cannot be nil")
	}
	w.cbMu.Lock()
	defer w.cbMu.Unlock()
	w.genCallbacks = append(w.genCallbacks, genericCallback{listener: listener, fn: fn})
	return nil
}

// UnregisterListener removes all callbacks registered under the listener
func (w *Workspace) UnregisterListener(listener any) {
	w.cbMu.Lock()
	defer w.cbMu.Unlock()
	kept := w.varCallbacks[:0]
	for _, cb := range w.varCallbacks {
		if cb.listener != listener {
			kept = append(kept, cb)
		}
	}
	w.varCallbacks = kept

	keptGen := w.genCallbacks[:0]
	for _, cb := range w.genCallbacks {
		if cb.listener != listener {
			keptGen = append(keptGen, cb)
		}
	}
	w.genCallbacks = keptGen
}

// GetCallbackGuard returns a guard whose Release removes all callbacks
// registered under the listener. Instructions hold one per activation so
// Halt/Reset cannot leave stale callbacks behind.
func (w *Workspace) GetCallbackGuard(listener any) *CallbackGuard {
	return &CallbackGuard{ws: w, listener: listener}
}

// dispatch runs on whichever goroutine set the value; callbacks must be
// short and non-blocking.
func (w *Workspace) dispatch(name string, value anyvalue.AnyValue, connected bool) {
	w.cbMu.Lock()
	var varFns []NotifyFunc
	for _, cb := range w.varCallbacks {
		if cb.varName == name {
			varFns = append(varFns, cb.fn)
		}
	}
	genFns := make([]GenericNotifyFunc, len(w.genCallbacks))
	for i, cb := range w.genCallbacks {
		genFns[i] = cb.fn
	}
	w.cbMu.Unlock()

	for _, fn := range varFns {
		fn(value, connected)
	}
	for _, fn := range genFns {
		fn(name, value, connected)
	}
}

// CallbackGuard scopes callback registrations to a listener's lifetime.
type CallbackGuard struct {
	ws       *Workspace
	listener any
	mu       sync.Mutex
	released bool
}

// Release deregisters all callbacks under the guard's listener. Idempotent.
func (g *CallbackGuard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return
	}
	g.released = true
	g.ws.UnregisterListener(g.listener)
}

// IsValid reports whether the guard still holds its registrations
func (g *CallbackGuard) IsValid() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.released
}
