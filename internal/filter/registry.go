package filter

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the filters available to the host, keyed by id.
type Registry struct {
	mu      sync.RWMutex
	filters map[string]Filter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{filters: make(map[string]Filter)}
}

// Add registers a filter.
func (r *Registry) Add(f Filter) error {
	if f == nil {
		return fmt.Errorf("cannot register nil filter")
	}
	id := f.ID().ID
	if id == "" {
		return fmt.Errorf("cannot register filter with empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.filters[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFilter, id)
	}
	r.filters[id] = f
	return nil
}

// Remove unregisters a filter.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.filters[id]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownFilter, id)
	}
	delete(r.filters, id)
	return nil
}

// Get looks a filter up by id.
func (r *Registry) Get(id string) (Filter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, exists := r.filters[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, id)
	}
	return f, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.filters[id]
	return exists
}

// List returns all filters sorted by id.
func (r *Registry) List() []Filter {
	r.mu.RLock()
	result := make([]Filter, 0, len(r.filters))
	for _, f := range r.filters {
		result = append(result, f)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID().ID < result[j].ID().ID
	})
	return result
}

// ListByCategory returns the filters of one category sorted by id.
func (r *Registry) ListByCategory(category string) []Filter {
	var result []Filter
	for _, f := range r.List() {
		if f.Category() == category {
			result = append(result, f)
		}
	}
	return result
}

// Count returns the number of registered filters.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.filters)
}
