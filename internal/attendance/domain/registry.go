package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps individual ids to their metadata.
type Registry struct {
	entries map[string]Individual
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Individual)}
}

// RegistryFrom builds a registry from stored entries, keeping each entry's
// RegisteredOn. A later entry with the same id replaces an earlier one.
func RegistryFrom(individuals []Individual) *Registry {
	r := NewRegistry()
	for _, ind := range individuals {
		r.entries[ind.ID] = ind
	}
	return r
}

// AddOrReplace stores an entry for id, overwriting any prior one.
// RegisteredOn is set to today.
func (r *Registry) AddOrReplace(id, name, category, today string) Individual {
	ind := Individual{
		ID:           id,
		Name:         name,
		Category:     normalizeCategory(category),
		RegisteredOn: today,
	}
	r.entries[id] = ind
	return ind
}

// AddIfAbsent stores an entry for id only if none exists.
// Returns ErrDuplicateID and leaves the stored entry untouched otherwise.
func (r *Registry) AddIfAbsent(id, name, category, today string) (Individual, error) {
	if _, exists := r.entries[id]; exists {
		return Individual{}, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	return r.AddOrReplace(id, name, category, today), nil
}

// Remove deletes the entry for id. Returns ErrNotFound when absent.
func (r *Registry) Remove(id string) error {
	if _, exists := r.entries[id]; !exists {
		return fmt.Errorf("individual %s: %w", id, ErrNotFound)
	}
	delete(r.entries, id)
	return nil
}

// Lookup returns the entry for id.
func (r *Registry) Lookup(id string) (Individual, bool) {
	ind, ok := r.entries[id]
	return ind, ok
}

// List returns every entry ordered by id.
func (r *Registry) List() []Individual {
	out := make([]Individual, 0, len(r.entries))
	for _, ind := range r.entries {
		out = append(out, ind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Search returns entries whose name or id contains term, ignoring case.
// An empty term matches everything.
func (r *Registry) Search(term string) []Individual {
	term = strings.ToLower(strings.TrimSpace(term))
	all := r.List()
	if term == "" {
		return all
	}
	out := make([]Individual, 0)
	for _, ind := range all {
		if strings.Contains(strings.ToLower(ind.Name), term) ||
			strings.Contains(strings.ToLower(ind.ID), term) {
			out = append(out, ind)
		}
	}
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	c := &Registry{entries: make(map[string]Individual, len(r.entries))}
	for id, ind := range r.entries {
		c.entries[id] = ind
	}
	return c
}

// CountByCategory groups the registry by category, most frequent first.
func (r *Registry) CountByCategory() []Count {
	return CountByCategory(r.List())
}
