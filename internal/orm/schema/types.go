// Package schema provides the type definitions the ORM uses to describe
// resources: their fields (columns), field constraints, named query scopes,
// attribute write hooks and single-parent inheritance.
package schema

import (
	"fmt"

	strutil "github.com/conduit-lang/enumtrait/internal/util/strings"
)

// PrimitiveType represents the built-in primitive types of a field
type PrimitiveType int

const (
	// Text types
	TypeString PrimitiveType = iota
	TypeText

	// Numeric types
	TypeInt
	TypeBigInt
	TypeFloat

	// Boolean
	TypeBool

	// Time types
	TypeTimestamp

	// Enum
	TypeEnum
)

// String returns the string representation of the primitive type
func (p PrimitiveType) String() string {
	switch p {
	case TypeString:
		return "string"
	case TypeText:
		return "text"
	case TypeInt:
		return "int"
	case TypeBigInt:
		return "bigint"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeTimestamp:
		return "timestamp"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ParsePrimitiveType converts a string to a PrimitiveType
func ParsePrimitiveType(s string) (PrimitiveType, error) {
	switch s {
	case "string":
		return TypeString, nil
	case "text":
		return TypeText, nil
	case "int":
		return TypeInt, nil
	case "bigint":
		return TypeBigInt, nil
	case "float":
		return TypeFloat, nil
	case "bool":
		return TypeBool, nil
	case "timestamp":
		return TypeTimestamp, nil
	case "enum":
		return TypeEnum, nil
	default:
		return 0, fmt.Errorf("unknown primitive type: %s", s)
	}
}

// TypeSpec represents a field type with nullability
type TypeSpec struct {
	BaseType PrimitiveType
	Nullable bool
	Default  interface{}
}

// String returns a string representation of the TypeSpec
func (t *TypeSpec) String() string {
	s := t.BaseType.String()
	if t.Nullable {
		return s + "?"
	}
	return s + "!"
}

// ConstraintType represents the type of constraint
type ConstraintType int

const (
	ConstraintMin ConstraintType = iota
	ConstraintMax
	ConstraintInclusion
)

// String returns the string representation of the constraint type
func (c ConstraintType) String() string {
	switch c {
	case ConstraintMin:
		return "min"
	case ConstraintMax:
		return "max"
	case ConstraintInclusion:
		return "inclusion"
	default:
		return "unknown"
	}
}

// Constraint represents a field constraint
type Constraint struct {
	Type         ConstraintType
	Value        interface{} // Constraint value (min, max, or an Inclusion)
	ErrorMessage string      // Custom error message
}

// Inclusion is the value of a ConstraintInclusion: the field must hold one of
// In, or nil when AllowNil is set.
type Inclusion struct {
	In       []interface{}
	AllowNil bool
}

// EnumOption is a selectable (label, value) pair
type EnumOption struct {
	Label string
	Value interface{}
}

// EnumMetadata is the enum annotation a column carries once an enum trait
// has been declared for it.
type EnumMetadata interface {
	EnumOptions() []EnumOption
	EnumValue(display string) (interface{}, bool)
	EnumDisplay(value interface{}) (string, bool)
}

// Field represents a field (column) in a resource schema
type Field struct {
	Name        string
	Type        *TypeSpec
	Constraints []Constraint

	// Enum is set when the field is declared as an enum trait
	Enum EnumMetadata
}

// IsEnum reports whether the column carries enum metadata
func (f *Field) IsEnum() bool {
	return f != nil && f.Enum != nil
}

// EnumOptions returns the column's (label, value) pairs, or nil for non-enum columns
func (f *Field) EnumOptions() []EnumOption {
	if !f.IsEnum() {
		return nil
	}
	return f.Enum.EnumOptions()
}

// EnumValue maps a display label back to its raw value
func (f *Field) EnumValue(display string) (interface{}, bool) {
	if !f.IsEnum() {
		return nil, false
	}
	return f.Enum.EnumValue(display)
}

// EnumDisplay maps a raw value to its display label
func (f *Field) EnumDisplay(value interface{}) (string, bool) {
	if !f.IsEnum() {
		return "", false
	}
	return f.Enum.EnumDisplay(value)
}

// SetConstraint adds c to the field, replacing any constraint of the same type
func (f *Field) SetConstraint(c Constraint) {
	for i := range f.Constraints {
		if f.Constraints[i].Type == c.Type {
			f.Constraints[i] = c
			return
		}
	}
	f.Constraints = append(f.Constraints, c)
}

// clone returns a shallow copy with its own constraint slice
func (f *Field) clone() *Field {
	c := *f
	c.Constraints = append([]Constraint(nil), f.Constraints...)
	return &c
}

// Scope represents a named query scope
type Scope struct {
	Name string

	// Equals holds fixed equality conditions (field -> value)
	Equals map[string]interface{}

	// Where holds parameterized conditions (field -> "= $arg")
	Where     map[string]interface{}
	Arguments []*ScopeArgument
	OrderBy   string
	Limit     *int
	Offset    *int

	// Owner records which declaration generated the scope, if any
	Owner string
}

// ScopeArgument represents an argument to a scope
type ScopeArgument struct {
	Name    string
	Type    *TypeSpec
	Default interface{}
}

// ResourceSchema represents the complete schema for a resource
type ResourceSchema struct {
	Name          string
	Documentation string

	// Parent is the supertype, nil for top-level resources
	Parent *ResourceSchema
	// Root marks a designated base type. Ancestor walks stop before it.
	Root bool
	// Persistent resources support named query scopes
	Persistent bool

	Fields map[string]*Field
	Scopes map[string]*Scope

	WriteHooks []*WriteHook

	TableName string

	columns    map[string]*Field
	decorators []namedDecorator
	children   []*ResourceSchema
}

// NewResourceSchema creates a new ResourceSchema
func NewResourceSchema(name string) *ResourceSchema {
	return &ResourceSchema{
		Name:      name,
		Fields:    make(map[string]*Field),
		Scopes:    make(map[string]*Scope),
		TableName: strutil.TableName(name),
	}
}

// Extend creates a subtype of r. The subtype shares r's table and
// persistence capability.
func (r *ResourceSchema) Extend(name string) *ResourceSchema {
	child := NewResourceSchema(name)
	child.Parent = r
	child.Persistent = r.Persistent
	if !r.Root {
		child.TableName = r.TableName
	}
	r.children = append(r.children, child)
	return child
}

// Ancestors returns the supertypes of r, nearest first, excluding any root type
func (r *ResourceSchema) Ancestors() []*ResourceSchema {
	var out []*ResourceSchema
	for p := r.Parent; p != nil && !p.Root; p = p.Parent {
		out = append(out, p)
	}
	return out
}

// Lineage returns r followed by its ancestors (see Ancestors)
func (r *ResourceSchema) Lineage() []*ResourceSchema {
	return append([]*ResourceSchema{r}, r.Ancestors()...)
}

// IsA reports whether r is other or descends from it
func (r *ResourceSchema) IsA(other *ResourceSchema) bool {
	for t := r; t != nil; t = t.Parent {
		if t == other {
			return true
		}
	}
	return false
}

// HasField returns true if the resource or one of its ancestors declares the field
func (r *ResourceSchema) HasField(name string) bool {
	for _, t := range r.Lineage() {
		if _, exists := t.Fields[name]; exists {
			return true
		}
	}
	return false
}

// LookupScope finds a named scope on the resource or its ancestors
func (r *ResourceSchema) LookupScope(name string) (*Scope, bool) {
	for _, t := range r.Lineage() {
		if scope, ok := t.Scopes[name]; ok {
			return scope, true
		}
	}
	return nil, false
}

// RemoveScopes deletes every scope generated by owner
func (r *ResourceSchema) RemoveScopes(owner string) {
	for name, scope := range r.Scopes {
		if scope.Owner == owner {
			delete(r.Scopes, name)
		}
	}
}
