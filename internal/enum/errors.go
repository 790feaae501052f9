package enum

import (
	"errors"
	"fmt"
)

var (
	// ErrDeclaration matches every *DeclarationError
	ErrDeclaration = errors.New("invalid enum declaration")

	// ErrNotEnumField is returned when a field has no enum declaration
	ErrNotEnumField = errors.New("not an enum field")

	// ErrUnknownAlias is returned when an alias is not part of a declaration
	ErrUnknownAlias = errors.New("unknown enum alias")

	// ErrUnknownMember is returned for generated member names that do not exist
	ErrUnknownMember = errors.New("unknown enum member")

	// ErrNotPersistent is returned when querying a resource without query support
	ErrNotPersistent = errors.New("resource does not support query scopes")
)

// DeclarationError describes a malformed enum declaration
type DeclarationError struct {
	Owner  string
	Field  string
	Reason string
}

// Error implements the error interface
func (e *DeclarationError) Error() string {
	if e.Owner == "" {
		return fmt.Sprintf("enum %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("enum %s.%s: %s", e.Owner, e.Field, e.Reason)
}

// Is reports whether target is ErrDeclaration
func (e *DeclarationError) Is(target error) bool {
	return target == ErrDeclaration
}

func declarationError(owner, field, format string, args ...interface{}) *DeclarationError {
	return &DeclarationError{
		Owner:  owner,
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

// Strings converts a dynamically typed option (decoded YAML, JSON) into a
// sequence of strings. Anything else is a DeclarationError naming option.
func Strings(option string, v interface{}) ([]string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), s...), nil
	case []interface{}:
		out := make([]string, len(s))
		for i, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, &DeclarationError{Reason: fmt.Sprintf("%s must be a sequence of strings, item %d is %T", option, i, item)}
			}
			out[i] = str
		}
		return out, nil
	default:
		return nil, &DeclarationError{Reason: fmt.Sprintf("%s must be a sequence of strings, got %T", option, v)}
	}
}
