package manifest

import (
	"fmt"

	"github.com/conduit-lang/enumtrait/internal/enum"
)

// Declaration converts the entry into an enum declaration for owner
func (e Enum) Declaration(owner string) (enum.Declaration, error) {
	fail := func(format string, args ...interface{}) error {
		return &enum.DeclarationError{Owner: owner, Field: e.Field, Reason: fmt.Sprintf(format, args...)}
	}

	decl := enum.Declaration{Field: e.Field}

	switch {
	case e.Symbols != nil && e.Values != nil:
		return decl, fail("symbols and values are mutually exclusive")
	case e.Symbols != nil:
		decl.Values = make([]interface{}, len(e.Symbols))
		for i, s := range e.Symbols {
			decl.Values[i] = enum.Symbol(s)
		}
	case e.Values != nil:
		decl.Values = e.Values
	}

	if e.Range != nil {
		decl.Range = &enum.IntRange{From: e.Range.From, To: e.Range.To}
	}
	if e.Display != nil {
		decl.Display = make([]enum.DisplayEntry, len(e.Display))
		for i, d := range e.Display {
			decl.Display[i] = enum.DisplayEntry{Label: d.Label, Value: d.Value}
		}
	}

	var err error
	if decl.Aliases, err = stringList(owner, e.Field, "aliases", e.Aliases); err != nil {
		return decl, err
	}
	if decl.Labels, err = stringList(owner, e.Field, "labels", e.Labels); err != nil {
		return decl, err
	}
	decl.AllowNil = e.AllowNil

	if len(e.DisplayText) > 0 {
		decl.DisplayText = displayText(owner, decl, e.DisplayText)
	}
	return decl, nil
}

func stringList(owner, field, option string, v interface{}) ([]string, error) {
	out, err := enum.Strings(option, v)
	if de, ok := err.(*enum.DeclarationError); ok {
		de.Owner, de.Field = owner, field
		return nil, de
	}
	return out, err
}

// displayText keys YAML display text by the declared values: keys are
// text in the file and are coerced the way attribute writes are. When the
// value set itself is malformed the keys are kept as text and Declare
// reports the real problem.
func displayText(owner string, decl enum.Declaration, texts map[string]string) map[interface{}]string {
	out := make(map[interface{}]string, len(texts))

	values := enum.Declaration{Field: decl.Field, Values: decl.Values, Range: decl.Range, Display: decl.Display}
	b, err := enum.NewResolver().Resolve(owner, values)
	for key, text := range texts {
		if err != nil {
			out[key] = text
			continue
		}
		out[enum.Coerce(b, key)] = text
	}
	return out
}
