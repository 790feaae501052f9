package enum

import "github.com/conduit-lang/enumtrait/internal/orm/schema"

// CoerceHook is the name of the write hook that coerces enum values
const CoerceHook = "enum.coerce"

// installWriteHook adds the coercion hook to model unless model or one of
// its ancestors already has it. It runs at StageStore, after every default
// stage hook.
func (r *Registry) installWriteHook(model *schema.ResourceSchema) bool {
	return model.AddWriteHook(&schema.WriteHook{
		Name:  CoerceHook,
		Stage: schema.StageStore,
		Fn:    r.coerceWrite,
	})
}

// coerceWrite coerces writes to enum fields of the record's own type;
// other fields pass through.
func (r *Registry) coerceWrite(model *schema.ResourceSchema, field string, value interface{}) (interface{}, error) {
	b, ok := r.Lookup(model, field)
	if !ok {
		return value, nil
	}
	return Coerce(b, value), nil
}
