package enum

import (
	"sort"

	"github.com/conduit-lang/enumtrait/internal/orm/schema"
	strutil "github.com/conduit-lang/enumtrait/internal/util/strings"
)

// Members names the accessors generated for one enum field. Predicates and
// Scopes map a generated name to the value position it tests.
type Members struct {
	Field string

	Values  string
	Aliases string
	Labels  string
	Options string

	Alias   string
	Label   string
	Display string

	Predicates map[string]int
	Scopes     map[string]int
}

func memberToken(alias string) string {
	return strutil.Underscore(alias)
}

// PredicateName returns the predicate generated for alias on field
func PredicateName(alias, field string) string {
	return memberToken(alias) + "_" + field + "?"
}

// ScopeName returns the query scope generated for alias on field
func ScopeName(alias, field string) string {
	return memberToken(alias) + "_" + field + "s"
}

func buildMembers(b *Bundle, persistent bool) *Members {
	f := b.Field()
	m := &Members{
		Field:      f,
		Values:     strutil.Pluralize(f),
		Aliases:    f + "_aliases",
		Labels:     f + "_labels",
		Options:    f + "_options",
		Alias:      f + "_alias",
		Label:      f + "_label",
		Display:    f + "_display",
		Predicates: make(map[string]int, b.Len()),
		Scopes:     make(map[string]int),
	}

	for i, alias := range b.aliases {
		if _, exists := m.Predicates[PredicateName(alias, f)]; !exists {
			m.Predicates[PredicateName(alias, f)] = i
		}
		if persistent {
			if _, exists := m.Scopes[ScopeName(alias, f)]; !exists {
				m.Scopes[ScopeName(alias, f)] = i
			}
		}
	}
	return m
}

// PredicateNames returns the predicate names in value order
func (m *Members) PredicateNames() []string {
	return namesByIndex(m.Predicates)
}

// ScopeNames returns the scope names in value order
func (m *Members) ScopeNames() []string {
	return namesByIndex(m.Scopes)
}

func namesByIndex(names map[string]int) []string {
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		if names[out[i]] != names[out[j]] {
			return names[out[i]] < names[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

func scopeOwner(field string) string {
	return "enum:" + field
}

// installScopes replaces the scopes generated for the field on model
func installScopes(model *schema.ResourceSchema, b *Bundle, m *Members) {
	owner := scopeOwner(b.Field())
	model.RemoveScopes(owner)

	for name, i := range m.Scopes {
		model.Scopes[name] = &schema.Scope{
			Name:   name,
			Equals: map[string]interface{}{b.Field(): b.values[i]},
			Owner:  owner,
		}
	}
}
