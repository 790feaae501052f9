package validation

import (
	"context"
	"sort"

	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// Subject is a record the engine can validate
type Subject interface {
	Model() *schema.ResourceSchema
	Attributes() map[string]interface{}
}

// Engine is the main validation engine that coordinates all validation layers
type Engine struct{}

// NewEngine creates a new validation engine
func NewEngine() *Engine {
	return &Engine{}
}

// Validate performs multi-layer validation on a record's attributes.
// Columns inherited from ancestor resources are validated too.
func (e *Engine) Validate(
	ctx context.Context,
	resource *schema.ResourceSchema,
	record map[string]interface{},
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	errors := NewValidationErrors()
	columns := resource.Columns()

	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	// Layer 1: Field-level constraints (min, max, inclusion)
	for _, name := range names {
		e.validateFieldConstraints(name, columns[name], record[name], errors)
	}

	// Layer 2: Nullability validation
	for _, name := range names {
		e.validateNullability(name, columns[name], record, errors)
	}

	if errors.HasErrors() {
		return errors
	}

	return nil
}

// ValidateRecord validates a record using its own resource type
func (e *Engine) ValidateRecord(ctx context.Context, subject Subject) error {
	return e.Validate(ctx, subject.Model(), subject.Attributes())
}

// validateFieldConstraints validates field-level constraints. Inclusion
// constraints see nil values so they can enforce AllowNil.
func (e *Engine) validateFieldConstraints(
	fieldName string,
	field *schema.Field,
	value interface{},
	errors *ValidationErrors,
) {
	for _, constraint := range field.Constraints {
		validator := validatorFor(constraint)
		if validator == nil {
			continue
		}
		if err := validator.Validate(value); err != nil {
			message := err.Error()
			if constraint.ErrorMessage != "" {
				message = constraint.ErrorMessage
			}
			errors.Add(fieldName, message)
		}
	}
}

// validateNullability validates that required fields are not null
func (e *Engine) validateNullability(
	fieldName string,
	field *schema.Field,
	record map[string]interface{},
	errors *ValidationErrors,
) {
	// Skip if field is nullable
	if field.Type == nil || field.Type.Nullable {
		return
	}

	// Inclusion constraints already report nil values
	for _, c := range field.Constraints {
		if c.Type == schema.ConstraintInclusion {
			return
		}
	}

	value, exists := record[fieldName]

	// Check if value is missing or nil
	if !exists || value == nil {
		errors.Add(fieldName, "is required")
	}
}

// ValidateField validates a single field value
// This is useful for partial validation or field-level feedback
func (e *Engine) ValidateField(
	fieldName string,
	value interface{},
	field *schema.Field,
) error {
	errors := NewValidationErrors()

	e.validateFieldConstraints(fieldName, field, value, errors)
	e.validateNullability(fieldName, field, map[string]interface{}{fieldName: value}, errors)

	if errors.HasErrors() {
		return errors
	}

	return nil
}
