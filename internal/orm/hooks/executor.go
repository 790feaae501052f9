// Package hooks runs attribute write hooks for resources.
package hooks

import (
	"fmt"

	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// Pipeline returns the write hooks that apply to model in execution order:
// StageDefault hooks from the outermost ancestor down to model, then
// StageStore hooks in the same order. A hook name is only run once.
func Pipeline(model *schema.ResourceSchema) []*schema.WriteHook {
	lineage := model.Lineage()
	seen := make(map[string]bool)
	var ordered []*schema.WriteHook

	for _, stage := range []schema.WriteStage{schema.StageDefault, schema.StageStore} {
		for i := len(lineage) - 1; i >= 0; i-- {
			for _, hook := range lineage[i].WriteHooks {
				if hook.Stage != stage || seen[hook.Name] {
					continue
				}
				seen[hook.Name] = true
				ordered = append(ordered, hook)
			}
		}
	}

	return ordered
}

// Executor applies write hooks before a value reaches attribute storage
type Executor struct{}

// NewExecutor creates a new write hook executor
func NewExecutor() *Executor {
	return &Executor{}
}

// ExecuteWrite passes value through every hook in model's pipeline and
// returns the value to store
func (e *Executor) ExecuteWrite(model *schema.ResourceSchema, field string, value interface{}) (interface{}, error) {
	for _, hook := range Pipeline(model) {
		next, err := hook.Fn(model, field, value)
		if err != nil {
			return nil, fmt.Errorf("write hook %s failed on %s.%s: %w", hook.Name, model.Name, field, err)
		}
		value = next
	}
	return value, nil
}
