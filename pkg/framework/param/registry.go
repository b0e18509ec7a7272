package param

import (
	"fmt"
	"sync"
)

// Registry holds parameter definitions in index order. The index is what the
// host passes to parameter callbacks.
type Registry struct {
	params []*Parameter
	byName map[string]int
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]int),
	}
}

// Add validates and appends parameters. Names must be unique.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, exists := r.byName[p.Name]; exists {
			return fmt.Errorf("parameter %q already registered", p.Name)
		}
		r.byName[p.Name] = len(r.params)
		r.params = append(r.params, p)
	}

	return nil
}

// GetByIndex retrieves a parameter by index, or nil.
func (r *Registry) GetByIndex(index int) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.params) {
		return nil
	}
	return r.params[index]
}

// Count returns the number of parameters.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.params)
}

// All returns all parameters in index order.
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Parameter, len(r.params))
	copy(result, r.params)
	return result
}
