package enum

// IntRange is an inclusive integer range
type IntRange struct {
	From int
	To   int
}

// Expand returns the range's integers in ascending order. An inverted range
// is empty.
func (r IntRange) Expand() []interface{} {
	if r.From > r.To {
		return nil
	}
	out := make([]interface{}, 0, r.To-r.From+1)
	for i := r.From; i <= r.To; i++ {
		out = append(out, i)
	}
	return out
}

// DisplayEntry maps a display label to a raw value
type DisplayEntry struct {
	Label string
	Value interface{}
}

// Options are the optional parts of a declaration. A nil Aliases or Labels
// means "derive"; a non-nil slice must match the number of values.
type Options struct {
	Aliases []string
	Labels  []string

	// AllowNil defaults to true
	AllowNil *bool

	// DisplayText holds inline display text keyed by raw value
	DisplayText map[interface{}]string
}

func (o Options) allowNil() bool {
	return o.AllowNil == nil || *o.AllowNil
}

// Declaration is the untyped form of an enum trait declaration. Exactly one
// of Values, Range and Display must be set.
type Declaration struct {
	Field string

	// Values is an explicit, ordered list of raw values
	Values []interface{}
	// Range declares a contiguous integer set
	Range *IntRange
	// Display declares values through display labels, in entry order
	Display []DisplayEntry

	Options
}

// Source is a typed value source for Declare. The typed method ties the
// source to T so callers never spell out type arguments.
type Source[T any] interface {
	apply(decl *Declaration)
	typed(T)
}

type valuesSource[T any] []T

func (s valuesSource[T]) apply(decl *Declaration) {
	decl.Values = make([]interface{}, len(s))
	for i, v := range s {
		decl.Values[i] = v
	}
}

func (valuesSource[T]) typed(T) {}

// Values declares an explicit value list
func Values[T any](values ...T) Source[T] {
	return valuesSource[T](values)
}

type rangeSource IntRange

func (s rangeSource) apply(decl *Declaration) {
	r := IntRange(s)
	decl.Range = &r
}

func (rangeSource) typed(int) {}

// Range declares the integers from..to inclusive
func Range(from, to int) Source[int] {
	return rangeSource{From: from, To: to}
}

// DisplayPair is one entry of a typed display map
type DisplayPair[T any] struct {
	Label string
	Value T
}

// Pair builds a DisplayPair
func Pair[T any](label string, value T) DisplayPair[T] {
	return DisplayPair[T]{Label: label, Value: value}
}

type displaySource[T any] []DisplayPair[T]

func (s displaySource[T]) apply(decl *Declaration) {
	decl.Display = make([]DisplayEntry, len(s))
	for i, p := range s {
		decl.Display[i] = DisplayEntry{Label: p.Label, Value: p.Value}
	}
}

func (displaySource[T]) typed(T) {}

// Display declares values through (label, value) pairs
func Display[T any](pairs ...DisplayPair[T]) Source[T] {
	return displaySource[T](pairs)
}

// DeclareOption configures the optional parts of a typed declaration
type DeclareOption func(*Options)

// WithAliases overrides the derived aliases
func WithAliases(aliases ...string) DeclareOption {
	return func(o *Options) {
		o.Aliases = append([]string{}, aliases...)
	}
}

// WithLabels overrides the derived labels
func WithLabels(labels ...string) DeclareOption {
	return func(o *Options) {
		o.Labels = append([]string{}, labels...)
	}
}

// AllowNil sets whether validation accepts an unset field
func AllowNil(allow bool) DeclareOption {
	return func(o *Options) {
		o.AllowNil = &allow
	}
}

// WithDisplayText supplies inline display text for some or all values
func WithDisplayText[T comparable](texts map[T]string) DeclareOption {
	return func(o *Options) {
		if o.DisplayText == nil {
			o.DisplayText = make(map[interface{}]string, len(texts))
		}
		for v, text := range texts {
			o.DisplayText[v] = text
		}
	}
}

// NewDeclaration builds an untyped declaration from a typed source
func NewDeclaration[T any](field string, src Source[T], opts ...DeclareOption) Declaration {
	decl := Declaration{Field: field}
	if src != nil {
		src.apply(&decl)
	}
	for _, opt := range opts {
		opt(&decl.Options)
	}
	return decl
}
