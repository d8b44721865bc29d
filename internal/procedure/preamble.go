package procedure

import (
	"fmt"
	"os"

	"github.com/ternarybob/oactree/internal/anyvalue"
)

// TypeRegistrationMode tells how a preamble type registration entry is to
// be interpreted.
type TypeRegistrationMode int

const (
	// RegistrationJSONString entries carry the registration JSON inline
	RegistrationJSONString TypeRegistrationMode = iota
	// RegistrationJSONFile entries carry a path to a JSON file
	RegistrationJSONFile
)

// TypeRegistration is one preamble entry registering an application type.
type TypeRegistration struct {
	Mode TypeRegistrationMode
	Data string
}

// Preamble carries the procedure-level declarations that precede the
// instruction list: type registrations and plugin paths.
type Preamble struct {
	registrations []TypeRegistration
	plugins       []string
}

// AddTypeRegistration appends a type registration entry
func (p *Preamble) AddTypeRegistration(reg TypeRegistration) {
	p.registrations = append(p.registrations, reg)
}

// TypeRegistrations lists the entries in declaration order
func (p *Preamble) TypeRegistrations() []TypeRegistration {
	return p.registrations
}

// AddPluginPath appends a plugin path
func (p *Preamble) AddPluginPath(path string) {
	p.plugins = append(p.plugins, path)
}

// PluginPaths lists the declared plugin paths
func (p *Preamble) PluginPaths() []string {
	return p.plugins
}

// Apply registers all declared types into the registry
func (p *Preamble) Apply(registry *anyvalue.TypeRegistry) error {
	for _, reg := range p.registrations {
		data := reg.Data
		if reg.Mode == RegistrationJSONFile {
			content, err := os.ReadFile(reg.Data)
			if err != nil {
				return fmt.Errorf("cannot read type registration file %q: %w", reg.Data, err)
			}
			data = string(content)
		}
		if err := registry.RegisterJSONType(data); err != nil {
			return fmt.Errorf("type registration failed: %w", err)
		}
	}
	return nil
}
