// Package flags provides feature flag support. Flags are read-only after
// initialization; known flags missing from configuration take their default
// and unknown flags read as false.
package flags

import (
	"maps"
	"sort"

	"github.com/zjrosen/evencheck/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagAutoRegister controls whether mark adds an unknown id to the registry.
	FlagAutoRegister = "auto-register"

	// FlagStrictMethods rejects marks whose method is not one of the known methods.
	FlagStrictMethods = "strict-methods"
)

// Definition describes a known flag.
type Definition struct {
	Name        string
	Default     bool
	Description string
}

var definitions = []Definition{
	{Name: FlagAutoRegister, Default: true, Description: "mark registers ids missing from the registry"},
	{Name: FlagStrictMethods, Default: false, Description: "mark rejects methods outside the known set"},
}

// Known returns the known flags sorted by name.
func Known() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. The map is copied. Known flags
// absent from it take their default.
func New(flags map[string]bool) *Registry {
	merged := make(map[string]bool, len(definitions)+len(flags))
	for _, d := range definitions {
		merged[d.Name] = d.Default
	}
	maps.Copy(merged, flags)

	r := &Registry{flags: merged}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(merged), "flags", r.All())
	return r
}

// Enabled returns true if the named flag is enabled.
// Returns false for unknown flags and on a nil registry.
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// All returns a copy of all flags. Returns an empty map if the registry is nil.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}
