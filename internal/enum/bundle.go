package enum

import (
	"reflect"

	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// Option is a (label, value) pair
type Option struct {
	Label string
	Value interface{}
}

// Bundle is the resolved metadata of one enum declaration. It is immutable
// once built; accessors return copies.
type Bundle struct {
	owner    string
	field    string
	values   []interface{}
	aliases  []string
	labels   []string
	allowNil bool
}

// Owner returns the name of the declaring resource
func (b *Bundle) Owner() string { return b.owner }

// Field returns the declared field name
func (b *Bundle) Field() string { return b.field }

// Len returns the number of values
func (b *Bundle) Len() int { return len(b.values) }

// AllowNil reports whether an unset field passes validation
func (b *Bundle) AllowNil() bool { return b.allowNil }

// Exemplar returns the first declared value, which fixes the type written
// values are coerced to
func (b *Bundle) Exemplar() interface{} {
	if len(b.values) == 0 {
		return nil
	}
	return b.values[0]
}

// Values returns the canonical values in declaration order
func (b *Bundle) Values() []interface{} {
	return append([]interface{}(nil), b.values...)
}

// Aliases returns the aliases, positionally matching Values
func (b *Bundle) Aliases() []string {
	return append([]string(nil), b.aliases...)
}

// Labels returns the labels, positionally matching Values
func (b *Bundle) Labels() []string {
	return append([]string(nil), b.labels...)
}

// Options returns the (label, value) pairs
func (b *Bundle) Options() []Option {
	out := make([]Option, len(b.values))
	for i, v := range b.values {
		out[i] = Option{Label: b.labels[i], Value: v}
	}
	return out
}

// Index returns the position of v among the values, or -1. Values match
// only when both the dynamic type and the value are equal.
func (b *Bundle) Index(v interface{}) int {
	if v == nil || !reflect.TypeOf(v).Comparable() {
		return -1
	}
	for i, member := range b.values {
		if member == v {
			return i
		}
	}
	return -1
}

// Contains reports whether v is one of the values
func (b *Bundle) Contains(v interface{}) bool {
	return b.Index(v) >= 0
}

// IndexOfAlias returns the position of alias, or -1. Both the alias as
// declared and its underscored form are accepted.
func (b *Bundle) IndexOfAlias(alias string) int {
	for i, a := range b.aliases {
		if a == alias {
			return i
		}
	}
	for i, a := range b.aliases {
		if memberToken(a) == alias {
			return i
		}
	}
	return -1
}

// ValueOf returns the value declared under alias
func (b *Bundle) ValueOf(alias string) (interface{}, bool) {
	i := b.IndexOfAlias(alias)
	if i < 0 {
		return nil, false
	}
	return b.values[i], true
}

// AliasOf returns the alias of v
func (b *Bundle) AliasOf(v interface{}) (string, bool) {
	i := b.Index(v)
	if i < 0 {
		return "", false
	}
	return b.aliases[i], true
}

// LabelOf returns the label of v
func (b *Bundle) LabelOf(v interface{}) (string, bool) {
	i := b.Index(v)
	if i < 0 {
		return "", false
	}
	return b.labels[i], true
}

// EnumOptions implements schema.EnumMetadata
func (b *Bundle) EnumOptions() []schema.EnumOption {
	out := make([]schema.EnumOption, len(b.values))
	for i, v := range b.values {
		out[i] = schema.EnumOption{Label: b.labels[i], Value: v}
	}
	return out
}

// EnumValue implements schema.EnumMetadata: the value displayed as display
func (b *Bundle) EnumValue(display string) (interface{}, bool) {
	for i, label := range b.labels {
		if label == display {
			return b.values[i], true
		}
	}
	return nil, false
}

// EnumDisplay implements schema.EnumMetadata. Raw column values (text read
// back from a database, say) are coerced before the label is looked up.
func (b *Bundle) EnumDisplay(value interface{}) (string, bool) {
	return b.LabelOf(Coerce(b, value))
}

func (b *Bundle) inclusion() schema.Constraint {
	return schema.Constraint{
		Type:  schema.ConstraintInclusion,
		Value: schema.Inclusion{In: b.Values(), AllowNil: b.allowNil},
	}
}
