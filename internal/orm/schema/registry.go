// Package schema provides a registry for managing resource schemas
package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages all resource schemas in the application
type Registry struct {
	schemas map[string]*ResourceSchema
	mu      sync.RWMutex
}

// NewRegistry creates a new schema registry
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*ResourceSchema),
	}
}

// Register registers a new resource schema
func (r *Registry) Register(schema *ResourceSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if schema.Name == "" {
		return fmt.Errorf("resource name is required")
	}

	// Check for duplicate
	if _, exists := r.schemas[schema.Name]; exists {
		return fmt.Errorf("resource %s is already registered", schema.Name)
	}

	// Parents must be registered first so lookups by name stay consistent
	if schema.Parent != nil {
		if parent, exists := r.schemas[schema.Parent.Name]; !exists || parent != schema.Parent {
			return fmt.Errorf("resource %s extends unregistered resource %s", schema.Name, schema.Parent.Name)
		}
	}

	r.schemas[schema.Name] = schema
	return nil
}

// Get retrieves a resource schema by name
func (r *Registry) Get(name string) (*ResourceSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, exists := r.schemas[name]
	return schema, exists
}

// All returns a copy of all registered schemas
func (r *Registry) All() map[string]*ResourceSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Return copy to prevent external modification
	result := make(map[string]*ResourceSchema, len(r.schemas))
	for k, v := range r.schemas {
		result[k] = v
	}
	return result
}

// List returns the sorted names of all registered resources
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subtypes returns the registered descendants of name, sorted by name
func (r *Registry) Subtypes(name string) []*ResourceSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	base, ok := r.schemas[name]
	if !ok {
		return nil
	}

	var out []*ResourceSchema
	for _, s := range r.schemas {
		if s != base && s.IsA(base) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Clear removes all registered schemas (useful for testing)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.schemas = make(map[string]*ResourceSchema)
}

// Count returns the number of registered schemas
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.schemas)
}

// Exists checks if a resource schema exists
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.schemas[name]
	return exists
}

// GetFields returns the merged columns for a resource
func (r *Registry) GetFields(resourceName string) (map[string]*Field, error) {
	r.mu.RLock()
	schema, exists := r.schemas[resourceName]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("resource %s not found", resourceName)
	}

	return schema.Columns(), nil
}
