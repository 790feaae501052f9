package enum

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	strutil "github.com/conduit-lang/enumtrait/internal/util/strings"
)

// RegistryOption configures a Resolver or Registry
type RegistryOption func(*settings)

type settings struct {
	translator Translator
	logger     *zap.Logger
}

// WithTranslator sets the text-resource service used for default labels
func WithTranslator(t Translator) RegistryOption {
	return func(s *settings) {
		s.translator = t
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(s *settings) {
		s.logger = logger
	}
}

func newSettings(opts []RegistryOption) settings {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Resolver turns declarations into metadata bundles
type Resolver struct {
	lookup *LabelLookup
	logger *zap.Logger
}

// NewResolver creates a resolver
func NewResolver(opts ...RegistryOption) *Resolver {
	s := newSettings(opts)
	return &Resolver{
		lookup: NewLabelLookup(s.translator, s.logger),
		logger: s.logger,
	}
}

// Resolve builds the bundle for decl declared on the resource named owner
func (r *Resolver) Resolve(owner string, decl Declaration) (*Bundle, error) {
	if decl.Field == "" {
		return nil, declarationError(owner, decl.Field, "field name is required")
	}

	values, displayLabels, err := r.values(owner, decl)
	if err != nil {
		return nil, err
	}

	aliases, err := r.aliases(owner, decl, values)
	if err != nil {
		return nil, err
	}
	if err := checkMemberTokens(owner, decl.Field, aliases); err != nil {
		return nil, err
	}

	labels, err := r.labels(owner, decl, values, aliases, displayLabels)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		owner:    owner,
		field:    decl.Field,
		values:   values,
		aliases:  aliases,
		labels:   labels,
		allowNil: decl.allowNil(),
	}, nil
}

// values expands the declaration's value source. For the display form the
// entry labels are returned alongside.
func (r *Resolver) values(owner string, decl Declaration) ([]interface{}, []string, error) {
	sources := 0
	if decl.Values != nil {
		sources++
	}
	if decl.Range != nil {
		sources++
	}
	if decl.Display != nil {
		sources++
	}
	switch {
	case sources == 0:
		return nil, nil, declarationError(owner, decl.Field, "no values declared")
	case sources > 1:
		return nil, nil, declarationError(owner, decl.Field, "values, range and display are mutually exclusive")
	}

	var (
		values []interface{}
		labels []string
	)
	switch {
	case decl.Range != nil:
		if decl.Range.From > decl.Range.To {
			return nil, nil, declarationError(owner, decl.Field, "invalid range %d..%d", decl.Range.From, decl.Range.To)
		}
		values = decl.Range.Expand()
	case decl.Display != nil:
		if err := checkValues(owner, decl.Field, displayValues(decl.Display)); err != nil {
			return nil, nil, err
		}
		values, labels = r.collapse(owner, decl.Field, decl.Display)
	default:
		values = append([]interface{}(nil), decl.Values...)
	}

	if len(values) == 0 {
		return nil, nil, declarationError(owner, decl.Field, "no values declared")
	}
	if err := checkValues(owner, decl.Field, values); err != nil {
		return nil, nil, err
	}

	seen := make(map[interface{}]int, len(values))
	for i, v := range values {
		if j, dup := seen[v]; dup {
			return nil, nil, declarationError(owner, decl.Field, "duplicate value %v at positions %d and %d", v, j, i)
		}
		seen[v] = i
	}

	return values, labels, nil
}

// collapse extracts values and labels from display entries. A repeated
// label replaces the value at the label's first position; a repeated value
// keeps its first label.
func (r *Resolver) collapse(owner, field string, entries []DisplayEntry) ([]interface{}, []string) {
	var (
		labels  []string
		values  []interface{}
		byLabel = make(map[string]int)
	)
	for _, e := range entries {
		if i, ok := byLabel[e.Label]; ok {
			r.logger.Debug("display label repeated",
				zap.String("model", owner),
				zap.String("field", field),
				zap.String("label", e.Label))
			values[i] = e.Value
			continue
		}
		byLabel[e.Label] = len(labels)
		labels = append(labels, e.Label)
		values = append(values, e.Value)
	}

	seen := make(map[interface{}]bool, len(values))
	outValues := values[:0:0]
	outLabels := labels[:0:0]
	for i, v := range values {
		if seen[v] {
			r.logger.Debug("display value repeated",
				zap.String("model", owner),
				zap.String("field", field),
				zap.Any("value", v))
			continue
		}
		seen[v] = true
		outValues = append(outValues, v)
		outLabels = append(outLabels, labels[i])
	}
	return outValues, outLabels
}

func (r *Resolver) aliases(owner string, decl Declaration, values []interface{}) ([]string, error) {
	if decl.Aliases != nil {
		if len(decl.Aliases) != len(values) {
			return nil, declarationError(owner, decl.Field,
				"the aliases length %d doesn't equal the number of values %d", len(decl.Aliases), len(values))
		}
		return append([]string(nil), decl.Aliases...), nil
	}

	aliases := make([]string, len(values))
	for i, v := range values {
		aliases[i] = strutil.Underscore(fmt.Sprint(v))
	}
	return aliases, nil
}

// checkMemberTokens rejects aliases that would generate the same predicate
// and scope names
func checkMemberTokens(owner, field string, aliases []string) error {
	first := make(map[string]int, len(aliases))
	for i, alias := range aliases {
		token := memberToken(alias)
		if j, ok := first[token]; ok {
			return declarationError(owner, field,
				"aliases %q and %q both generate members named %q", aliases[j], alias, token)
		}
		first[token] = i
	}
	return nil
}

func (r *Resolver) labels(owner string, decl Declaration, values []interface{}, aliases, displayLabels []string) ([]string, error) {
	if decl.Labels != nil {
		if len(decl.Labels) != len(values) {
			return nil, declarationError(owner, decl.Field,
				"the labels length %d doesn't equal the number of values %d", len(decl.Labels), len(values))
		}
		return append([]string(nil), decl.Labels...), nil
	}

	scope := []string{strutil.Underscore(owner), decl.Field}
	labels := make([]string, len(values))
	for i, v := range values {
		if displayLabels != nil {
			labels[i] = displayLabels[i]
			continue
		}
		if text, ok := decl.DisplayText[v]; ok && text != "" {
			labels[i] = text
			continue
		}
		if label := r.lookup.Lookup(aliases[i], scope...); label.Found {
			labels[i] = label.Text
			continue
		}
		labels[i] = strutil.Humanize(aliases[i])
	}
	return labels, nil
}

func displayValues(entries []DisplayEntry) []interface{} {
	out := make([]interface{}, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}

// checkValues rejects values that cannot be compared for membership
func checkValues(owner, field string, values []interface{}) error {
	for i, v := range values {
		if v == nil {
			return declarationError(owner, field, "value %d is nil", i)
		}
		if !reflect.TypeOf(v).Comparable() {
			return declarationError(owner, field, "value %d (%T) is not comparable", i, v)
		}
	}
	return nil
}
