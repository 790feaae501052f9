package enum

import (
	"database/sql"
	"fmt"

	"github.com/conduit-lang/enumtrait/internal/orm/query"
	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// Reader is a record whose attributes the generated accessors read
type Reader interface {
	Get(field string) interface{}
	Model() *schema.ResourceSchema
}

// TypedOption is a (label, value) pair with a typed value
type TypedOption[T any] struct {
	Label string
	Value T
}

// Trait is the typed accessor set for one enum field. Its bundle is read
// from the registry on every call, so a re-declaration is visible through
// existing traits.
type Trait[T any] struct {
	reg   *Registry
	model *schema.ResourceSchema
	field string
}

// Declare declares an enum trait on model and returns its typed accessors
func Declare[T any](reg *Registry, model *schema.ResourceSchema, field string, src Source[T], opts ...DeclareOption) (*Trait[T], error) {
	if _, err := reg.Declare(model, NewDeclaration(field, src, opts...)); err != nil {
		return nil, err
	}
	return &Trait[T]{reg: reg, model: model, field: field}, nil
}

// TraitOf returns the typed accessors for an enum field visible on model,
// including one inherited from an ancestor. Every value must be a T.
func TraitOf[T any](reg *Registry, model *schema.ResourceSchema, field string) (*Trait[T], error) {
	b, ok := reg.Lookup(model, field)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotEnumField, model.Name, field)
	}
	for _, v := range b.values {
		if _, ok := v.(T); !ok {
			var zero T
			return nil, fmt.Errorf("enum %s.%s holds %T values, not %T", model.Name, field, v, zero)
		}
	}
	return &Trait[T]{reg: reg, model: model, field: field}, nil
}

// Field returns the field name
func (t *Trait[T]) Field() string {
	return t.field
}

// Bundle returns the bundle currently visible for the field
func (t *Trait[T]) Bundle() *Bundle {
	b, _ := t.reg.Lookup(t.model, t.field)
	return b
}

// Members returns the generated member names
func (t *Trait[T]) Members() *Members {
	m, _ := t.reg.Members(t.model, t.field)
	return m
}

// Values returns the declared values
func (t *Trait[T]) Values() []T {
	b := t.Bundle()
	out := make([]T, b.Len())
	for i, v := range b.values {
		out[i], _ = v.(T)
	}
	return out
}

// Aliases returns the aliases
func (t *Trait[T]) Aliases() []string {
	return t.Bundle().Aliases()
}

// Labels returns the labels
func (t *Trait[T]) Labels() []string {
	return t.Bundle().Labels()
}

// Options returns the (label, value) pairs
func (t *Trait[T]) Options() []TypedOption[T] {
	b := t.Bundle()
	out := make([]TypedOption[T], b.Len())
	for i, v := range b.values {
		out[i].Label = b.labels[i]
		out[i].Value, _ = v.(T)
	}
	return out
}

// bundleFor returns the bundle visible on the record's own type
func (t *Trait[T]) bundleFor(rec Reader) *Bundle {
	if b, ok := t.reg.Lookup(rec.Model(), t.field); ok {
		return b
	}
	return t.Bundle()
}

// Value returns the record's current value; false when unset or not a T
func (t *Trait[T]) Value(rec Reader) (T, bool) {
	v, ok := rec.Get(t.field).(T)
	return v, ok
}

// Alias returns the alias of the record's current value; false when the
// field is unset or holds a non-member
func (t *Trait[T]) Alias(rec Reader) (string, bool) {
	return t.bundleFor(rec).AliasOf(rec.Get(t.field))
}

// Label returns the label of the record's current value
func (t *Trait[T]) Label(rec Reader) (string, bool) {
	return t.bundleFor(rec).LabelOf(rec.Get(t.field))
}

// Is reports whether the record's value is the one declared under alias.
// It returns nil when the field is unset or alias is unknown.
func (t *Trait[T]) Is(rec Reader, alias string) *bool {
	b := t.bundleFor(rec)
	i := b.IndexOfAlias(alias)
	if i < 0 {
		return nil
	}
	return is(b, rec.Get(t.field), i)
}

// Display returns the label for the record's current value: empty when
// unset, the value's own text when it is not a member
func (t *Trait[T]) Display(rec Reader) string {
	v := rec.Get(t.field)
	if v == nil {
		return ""
	}
	if label, ok := t.bundleFor(rec).LabelOf(v); ok {
		return label
	}
	return fmt.Sprint(v)
}

// Query returns a query builder filtered by the scope generated for alias
func (t *Trait[T]) Query(db *sql.DB, alias string) (*query.QueryBuilder, error) {
	if !t.model.Persistent {
		return nil, fmt.Errorf("%w: %s", ErrNotPersistent, t.model.Name)
	}

	b := t.Bundle()
	i := b.IndexOfAlias(alias)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s for %s.%s", ErrUnknownAlias, alias, t.model.Name, t.field)
	}
	return query.NewQueryBuilder(t.model, db).Scope(ScopeName(b.aliases[i], t.field))
}

// QueryAny returns a query builder for the rows whose field holds any of
// the values named by aliases. No aliases matches no rows.
func (t *Trait[T]) QueryAny(db *sql.DB, aliases ...string) (*query.QueryBuilder, error) {
	if !t.model.Persistent {
		return nil, fmt.Errorf("%w: %s", ErrNotPersistent, t.model.Name)
	}

	b := t.Bundle()
	values := make([]interface{}, 0, len(aliases))
	for _, alias := range aliases {
		i := b.IndexOfAlias(alias)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s for %s.%s", ErrUnknownAlias, alias, t.model.Name, t.field)
		}
		values = append(values, b.values[i])
	}
	return query.NewQueryBuilder(t.model, db).WhereIn(t.field, values), nil
}
