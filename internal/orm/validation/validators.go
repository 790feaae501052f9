package validation

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// MessageNotIncluded is reported when a value is outside an inclusion set
const MessageNotIncluded = "is not included in the list"

// ErrNotIncluded is returned by InclusionValidator
var ErrNotIncluded = errors.New(MessageNotIncluded)

// Validator defines the interface for field validators
type Validator interface {
	Validate(value interface{}) error
}

// MinValidator validates minimum values for numeric types
type MinValidator struct {
	Min interface{}
}

// Validate implements the Validator interface
func (v *MinValidator) Validate(value interface{}) error {
	if value == nil {
		return nil // Nullable fields are validated separately
	}

	intVal, ok := toInt64(value)
	if !ok {
		return fmt.Errorf("expected integer value")
	}
	minVal, ok := toInt64(v.Min)
	if !ok {
		return fmt.Errorf("invalid min constraint")
	}
	if intVal < minVal {
		return fmt.Errorf("must be at least %d", minVal)
	}
	return nil
}

// MaxValidator validates maximum values for numeric types
type MaxValidator struct {
	Max interface{}
}

// Validate implements the Validator interface
func (v *MaxValidator) Validate(value interface{}) error {
	if value == nil {
		return nil
	}

	intVal, ok := toInt64(value)
	if !ok {
		return fmt.Errorf("expected integer value")
	}
	maxVal, ok := toInt64(v.Max)
	if !ok {
		return fmt.Errorf("invalid max constraint")
	}
	if intVal > maxVal {
		return fmt.Errorf("must be at most %d", maxVal)
	}
	return nil
}

// InclusionValidator checks membership in a fixed set. Members are compared
// with ==, so the value must have the same dynamic type as the member.
type InclusionValidator struct {
	In       []interface{}
	AllowNil bool
}

// Validate implements the Validator interface
func (v *InclusionValidator) Validate(value interface{}) error {
	if value == nil {
		if v.AllowNil {
			return nil
		}
		return ErrNotIncluded
	}

	if t := reflect.TypeOf(value); !t.Comparable() {
		return ErrNotIncluded
	}
	for _, member := range v.In {
		if member == value {
			return nil
		}
	}
	return ErrNotIncluded
}

// Helper functions for type conversion

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	default:
		return 0, false
	}
}

// validatorFor returns the runtime validator for a declared constraint, nil
// when the constraint has no runtime check
func validatorFor(constraint schema.Constraint) Validator {
	switch constraint.Type {
	case schema.ConstraintMin:
		return &MinValidator{Min: constraint.Value}
	case schema.ConstraintMax:
		return &MaxValidator{Max: constraint.Value}
	case schema.ConstraintInclusion:
		inc, ok := constraint.Value.(schema.Inclusion)
		if !ok {
			return nil
		}
		return &InclusionValidator{In: inc.In, AllowNil: inc.AllowNil}
	default:
		return nil
	}
}
