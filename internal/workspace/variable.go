package workspace

import (
	"sync"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/attributes"
)

// NotifyFunc receives a variable's new value and connectivity state.
type NotifyFunc func(value anyvalue.AnyValue, connected bool)

// Variable is the capability set every workspace variable satisfies: it
// holds one typed value, may update asynchronously, and notifies on every
// value change or connectivity transition.
type Variable interface {
	// GetType returns the registered variable type name (e.g. "Local")
	GetType() string

	// GetName returns the workspace name of the variable
	GetName() string

	// SetName assigns the workspace name
	SetName(name string)

	// AddAttribute adds a raw string attribute; false on duplicates
	AddAttribute(name, value string) bool

	// GetAttribute returns a raw attribute value, or the empty string
	GetAttribute(name string) string

	// HasAttribute reports raw attribute presence
	HasAttribute(name string) bool

	// GetAttributes lists all raw attributes in insertion order
	GetAttributes() []attributes.StringAttribute

	// Setup initialises the variable from its attributes. It must be
	// idempotent: calling it twice is equivalent to calling it once.
	Setup(registry *anyvalue.TypeRegistry) error

	// Teardown releases any resources; the inverse of Setup
	Teardown()

	// GetValue retrieves (a copy of) the value or one of its fields; the
	// empty path addresses the whole value
	GetValue(path string) (anyvalue.AnyValue, bool)

	// SetValue assigns the value or one of its fields
	SetValue(value anyvalue.AnyValue, path string) bool

	// IsAvailable reports whether the variable is connected with a value
	IsAvailable() bool

	// Reset restores the variable to its freshly set up state
	Reset()

	// SetNotifyFunc installs the change notification callback
	SetNotifyFunc(fn NotifyFunc)
}

// Base carries the attribute handler and notification plumbing shared by
// variable implementations. Concrete variables embed it, guard their own
// value and call Notify on every change.
type Base struct {
	varType string
	name    string
	attrs   *attributes.Handler

	notifyMu sync.Mutex
	notify   NotifyFunc
}

// NewBase initialises the shared variable state for a type name
func NewBase(varType string) Base {
	return Base{varType: varType, attrs: attributes.NewHandler()}
}

// GetType returns the variable type name
func (b *Base) GetType() string { return b.varType }

// GetName returns the workspace name
func (b *Base) GetName() string { return b.name }

// SetName assigns the workspace name
func (b *Base) SetName(name string) { b.name = name }

// AddAttribute adds a raw attribute
func (b *Base) AddAttribute(name, value string) bool {
	return b.attrs.AddAttribute(name, value)
}

// GetAttribute returns a raw attribute value
func (b *Base) GetAttribute(name string) string {
	return b.attrs.GetAttribute(name)
}

// HasAttribute reports raw attribute presence
func (b *Base) HasAttribute(name string) bool {
	return b.attrs.HasAttribute(name)
}

// GetAttributes lists raw attributes
func (b *Base) GetAttributes() []attributes.StringAttribute {
	return b.attrs.GetAttributes()
}

// AttributeHandler exposes the handler for definition registration
func (b *Base) AttributeHandler() *attributes.Handler {
	return b.attrs
}

// SetNotifyFunc installs the change callback
func (b *Base) SetNotifyFunc(fn NotifyFunc) {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()
	b.notify = fn
}

// Notify dispatches a change notification if a callback is installed.
// Callbacks run on the calling thread and must be short and non-blocking.
func (b *Base) Notify(value anyvalue.AnyValue, connected bool) {
	b.notifyMu.Lock()
	fn := b.notify
	b.notifyMu.Unlock()
	if fn != nil {
		fn(value, connected)
	}
}
