package anyvalue

import (
	"fmt"
	"sync"
)

// TypeRegistry maps registered names to struct types. Procedure preambles
// register application types here before variables are set up.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]AnyType
}

// NewTypeRegistry creates an empty registry
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]AnyType)}
}

// RegisterType registers a type under a unique name
func (r *TypeRegistry) RegisterType(name string, t AnyType) error {
	if name == "" {
		return fmt.Errorf("type name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[name]; exists {
		return fmt.Errorf("type %q already registered", name)
	}
	t.Name = name
	r.types[name] = t
	return nil
}

// RegisterJSONType parses a JSON type description carrying a "name" wrapper:
// {"name":"MyType","type":<type>} and registers it.
func (r *TypeRegistry) RegisterJSONType(data string) error {
	named, err := parseNamedType(r, data)
	if err != nil {
		return err
	}
	return r.RegisterType(named.name, named.typ)
}

// GetType resolves a registered name
func (r *TypeRegistry) GetType(name string) (AnyType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// RegisteredTypeNames lists all registered names
func (r *TypeRegistry) RegisteredTypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	return names
}

type namedType struct {
	name string
	typ  AnyType
}

func parseNamedType(reg *TypeRegistry, data string) (namedType, error) {
	type rawNamed struct {
		Name string `json:"name"`
		Type any    `json:"type"`
	}
	var raw rawNamed
	if err := unmarshalUseNumber(data, &raw); err != nil {
		return namedType{}, fmt.Errorf("invalid type registration JSON: %w", err)
	}
	if raw.Name == "" {
		return namedType{}, fmt.Errorf("type registration without name")
	}
	t, err := typeFromRaw(reg, raw.Type)
	if err != nil {
		return namedType{}, err
	}
	return namedType{name: raw.Name, typ: t}, nil
}
