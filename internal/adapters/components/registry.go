package components

import (
	"sort"
	"sync"
)

// Registry holds scanned components by name.
type Registry struct {
	components map[string]*Component
	mutex      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]*Component)}
}

// Register adds or replaces a component.
func (r *Registry) Register(component *Component) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.components[component.Name] = component
}

// Get retrieves a component by name
func (r *Registry) Get(name string) (*Component, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	component, exists := r.components[name]
	return component, exists
}

// All returns the components sorted by name.
func (r *Registry) All() []*Component {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*Component, 0, len(r.components))
	for _, component := range r.components {
		result = append(result, component)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Count returns the number of registered components
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.components)
}
