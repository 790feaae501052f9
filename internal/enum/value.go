package enum

import "database/sql/driver"

// Symbol is a symbolic token. It is distinct from free text: a field whose
// first declared value is a Symbol stores Symbols, and text written to it is
// converted.
type Symbol string

// String implements fmt.Stringer
func (s Symbol) String() string {
	return string(s)
}

// Value implements driver.Valuer; symbols are stored as text
func (s Symbol) Value() (driver.Value, error) {
	return string(s), nil
}

// Symbols is shorthand for a list of symbol values
func Symbols(names ...string) []Symbol {
	out := make([]Symbol, len(names))
	for i, name := range names {
		out[i] = Symbol(name)
	}
	return out
}
