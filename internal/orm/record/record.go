// Package record holds resource instances: attribute storage with a single
// write primitive that every assignment goes through.
package record

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/conduit-lang/enumtrait/internal/orm/hooks"
	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// FieldChange represents a change to a single attribute
type FieldChange struct {
	Field    string
	OldValue interface{}
	NewValue interface{}
}

// Record is an instance of a resource
type Record struct {
	model    *schema.ResourceSchema
	executor *hooks.Executor
	attrs    map[string]interface{}
	changes  map[string]*FieldChange
}

// New creates an empty record of the given resource type
func New(model *schema.ResourceSchema) *Record {
	return &Record{
		model:    model,
		executor: hooks.NewExecutor(),
		attrs:    make(map[string]interface{}),
		changes:  make(map[string]*FieldChange),
	}
}

// Load builds a record from a row, writing every column through Set so
// write hooks apply to loaded values as well. The change set is cleared
// afterwards.
func Load(model *schema.ResourceSchema, row map[string]interface{}) (*Record, error) {
	rec := New(model)

	// Deterministic order keeps hook side effects reproducible
	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := rec.Set(name, row[name]); err != nil {
			return nil, err
		}
	}
	rec.changes = make(map[string]*FieldChange)
	return rec, nil
}

// Model returns the record's resource type
func (r *Record) Model() *schema.ResourceSchema {
	return r.model
}

// Get returns the stored value of an attribute, nil when unset
func (r *Record) Get(field string) interface{} {
	return r.attrs[field]
}

// Has reports whether the attribute has been written
func (r *Record) Has(field string) bool {
	_, ok := r.attrs[field]
	return ok
}

// Set writes an attribute. The value passes through the resource's write
// hook pipeline before it is stored.
func (r *Record) Set(field string, value interface{}) error {
	if !r.model.HasField(field) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownAttribute, r.model.Name, field)
	}

	value, err := r.executor.ExecuteWrite(r.model, field, value)
	if err != nil {
		return err
	}

	r.writeAttribute(field, value)
	return nil
}

// MustSet is Set for fixtures and tests; it panics on error
func (r *Record) MustSet(field string, value interface{}) *Record {
	if err := r.Set(field, value); err != nil {
		panic(err)
	}
	return r
}

// writeAttribute is the storage primitive
func (r *Record) writeAttribute(field string, value interface{}) {
	old, existed := r.attrs[field]
	r.attrs[field] = value

	if existed && equal(old, value) {
		return
	}
	if change, ok := r.changes[field]; ok {
		if equal(change.OldValue, value) {
			delete(r.changes, field)
			return
		}
		change.NewValue = value
		return
	}
	r.changes[field] = &FieldChange{Field: field, OldValue: old, NewValue: value}
}

// Attributes returns a copy of the stored attributes
func (r *Record) Attributes() map[string]interface{} {
	out := make(map[string]interface{}, len(r.attrs))
	for k, v := range r.attrs {
		out[k] = v
	}
	return out
}

// Changed reports whether an attribute differs from its loaded value
func (r *Record) Changed(field string) bool {
	_, ok := r.changes[field]
	return ok
}

// Changes returns the pending changes sorted by field name
func (r *Record) Changes() []*FieldChange {
	out := make([]*FieldChange, 0, len(r.changes))
	for _, c := range r.changes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func equal(a, b interface{}) bool {
	return reflect.DeepEqual(a, b)
}
