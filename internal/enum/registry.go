// Package enum implements enum traits: fields restricted to a declared set
// of values, with derived aliases, labels, option pairs, predicates, query
// scopes, validation and write-time coercion.
package enum

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

const columnDecorator = "enum.metadata"

type key struct {
	model string
	field string
}

type entry struct {
	bundle  *Bundle
	members *Members
}

// Declared describes one registry entry
type Declared struct {
	Model   *schema.ResourceSchema
	Bundle  *Bundle
	Members *Members
}

// Registry holds the enum declarations of every resource, keyed by
// (resource name, field). Lookups fall back to ancestors.
type Registry struct {
	mu       sync.RWMutex
	resolver *Resolver
	logger   *zap.Logger

	entries map[key]*entry
	models  map[string]*schema.ResourceSchema
	order   map[string][]string // model -> fields in declaration order
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...RegistryOption) *Registry {
	s := newSettings(opts)
	return &Registry{
		resolver: NewResolver(opts...),
		logger:   s.logger,
		entries:  make(map[key]*entry),
		models:   make(map[string]*schema.ResourceSchema),
		order:    make(map[string][]string),
	}
}

// Declare resolves decl and attaches it to model. The field's column is
// annotated with the bundle, an inclusion constraint is registered, the
// query scopes are generated and the coercion write hook is installed.
// Declaring a field again replaces its bundle, scopes and members.
func (r *Registry) Declare(model *schema.ResourceSchema, decl Declaration) (*Bundle, error) {
	if model == nil {
		return nil, declarationError("", decl.Field, "resource is required")
	}

	bundle, err := r.resolver.Resolve(model.Name, decl)
	if err != nil {
		return nil, err
	}
	members := buildMembers(bundle, model.Persistent)

	r.mu.Lock()
	k := key{model: model.Name, field: decl.Field}
	if _, exists := r.entries[k]; !exists {
		r.order[model.Name] = append(r.order[model.Name], decl.Field)
	}
	r.entries[k] = &entry{bundle: bundle, members: members}
	r.models[model.Name] = model
	r.mu.Unlock()

	r.annotate(model, bundle)
	installScopes(model, bundle, members)
	r.installWriteHook(model)

	r.logger.Debug("enum declared",
		zap.String("model", model.Name),
		zap.String("field", decl.Field),
		zap.Strings("aliases", bundle.aliases),
		zap.Bool("allow_nil", bundle.allowNil),
	)

	return bundle, nil
}

// annotate attaches the bundle to the declaring resource's field, creating
// the field when the resource does not define it
func (r *Registry) annotate(model *schema.ResourceSchema, b *Bundle) {
	field, ok := model.Fields[b.Field()]
	if !ok {
		field = ownField(model, b.Field())
		model.Fields[b.Field()] = field
	}
	field.Enum = b
	field.SetConstraint(b.inclusion())

	model.AddColumnDecorator(columnDecorator, r.mergeColumns)
	model.ResetColumns()
}

// ownField returns a field model can own for name: a copy of the column it
// inherits, or a new nullable enum field
func ownField(model *schema.ResourceSchema, name string) *schema.Field {
	inherited, ok := model.Column(name)
	if !ok {
		return &schema.Field{
			Name: name,
			Type: &schema.TypeSpec{BaseType: schema.TypeEnum, Nullable: true},
		}
	}

	field := *inherited
	field.Constraints = append([]schema.Constraint(nil), inherited.Constraints...)
	if inherited.Type != nil {
		typ := *inherited.Type
		field.Type = &typ
	}
	return &field
}

// mergeColumns re-applies the enum metadata visible to model onto a fresh
// column snapshot, so subtypes see ancestor declarations on columns they
// redefine
func (r *Registry) mergeColumns(model *schema.ResourceSchema, columns map[string]*schema.Field) {
	for name, col := range columns {
		b, ok := r.Lookup(model, name)
		if !ok {
			continue
		}
		col.Enum = b
		col.SetConstraint(b.inclusion())
	}
}

func (r *Registry) lookupEntry(model *schema.ResourceSchema, field string) (*entry, bool) {
	if model == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range model.Lineage() {
		if e, ok := r.entries[key{model: t.Name, field: field}]; ok {
			return e, true
		}
	}
	return nil, false
}

// Lookup returns the bundle for field on model, falling back to the
// nearest ancestor that declares it. Root types are never consulted for
// their subtypes.
func (r *Registry) Lookup(model *schema.ResourceSchema, field string) (*Bundle, bool) {
	e, ok := r.lookupEntry(model, field)
	if !ok {
		return nil, false
	}
	return e.bundle, true
}

// IsEnumField reports whether field on model is an enum, directly or
// through an ancestor
func (r *Registry) IsEnumField(model *schema.ResourceSchema, field string) bool {
	_, ok := r.lookupEntry(model, field)
	return ok
}

// Own returns the bundle model itself declares for field
func (r *Registry) Own(model *schema.ResourceSchema, field string) (*Bundle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[key{model: model.Name, field: field}]
	if !ok {
		return nil, false
	}
	return e.bundle, true
}

// Members returns the generated member names for field on model
func (r *Registry) Members(model *schema.ResourceSchema, field string) (*Members, bool) {
	e, ok := r.lookupEntry(model, field)
	if !ok {
		return nil, false
	}
	return e.members, true
}

// Fields returns the enum fields visible on model: its own in declaration
// order, then inherited ones nearest ancestor first
func (r *Registry) Fields(model *schema.ResourceSchema) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var fields []string
	for _, t := range model.Lineage() {
		for _, f := range r.order[t.Name] {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	return fields
}

// Declarations returns every entry sorted by resource name, fields in
// declaration order
func (r *Registry) Declarations() []Declared {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for name := range r.order {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Declared
	for _, name := range names {
		for _, f := range r.order[name] {
			e := r.entries[key{model: name, field: f}]
			out = append(out, Declared{Model: r.models[name], Bundle: e.bundle, Members: e.members})
		}
	}
	return out
}

// Column returns the column snapshot for field on model. A snapshot built
// before an ancestor (re)declared the field is rebuilt first.
func (r *Registry) Column(model *schema.ResourceSchema, field string) (*schema.Field, bool) {
	col, ok := model.Column(field)
	b, isEnum := r.Lookup(model, field)

	stale := false
	switch {
	case isEnum && (!ok || col.Enum != schema.EnumMetadata(b)):
		stale = true
	case !isEnum && ok && col.Enum != nil:
		stale = true
	}
	if stale {
		model.ResetColumns()
		col, ok = model.Column(field)
	}
	return col, ok
}

// Predicate evaluates a generated predicate such as "good_rank?" on rec.
// The result is nil when the field is unset.
func (r *Registry) Predicate(rec Reader, name string) (*bool, error) {
	model := rec.Model()
	for _, field := range r.Fields(model) {
		e, ok := r.lookupEntry(model, field)
		if !ok {
			continue
		}
		if i, ok := e.members.Predicates[name]; ok {
			return is(e.bundle, rec.Get(field), i), nil
		}
	}
	return nil, fmt.Errorf("%w: %s on %s", ErrUnknownMember, name, model.Name)
}

// is reports whether value sits at position i; nil stays nil
func is(b *Bundle, value interface{}, i int) *bool {
	if value == nil {
		return nil
	}
	result := b.Index(value) == i
	return &result
}
