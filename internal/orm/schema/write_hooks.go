package schema

// WriteStage orders attribute write hooks
type WriteStage int

const (
	// StageDefault hooks run first, in registration order
	StageDefault WriteStage = iota
	// StageStore hooks run after every StageDefault hook, immediately
	// before the value is stored
	StageStore
)

// String returns the string representation of the write stage
func (s WriteStage) String() string {
	switch s {
	case StageDefault:
		return "default"
	case StageStore:
		return "store"
	default:
		return "unknown"
	}
}

// WriteFunc transforms a value written to field on a record of type model
type WriteFunc func(model *ResourceSchema, field string, value interface{}) (interface{}, error)

// WriteHook is a named attribute write hook
type WriteHook struct {
	Name  string
	Stage WriteStage
	Fn    WriteFunc
}

// AddWriteHook installs hook on r unless a hook with the same name is
// already installed on r or one of its ancestors. It reports whether the hook
// was added.
func (r *ResourceSchema) AddWriteHook(hook *WriteHook) bool {
	if r.HasWriteHook(hook.Name) {
		return false
	}
	r.WriteHooks = append(r.WriteHooks, hook)
	return true
}

// HasWriteHook reports whether a hook named name applies to r
func (r *ResourceSchema) HasWriteHook(name string) bool {
	for _, t := range r.Lineage() {
		for _, h := range t.WriteHooks {
			if h.Name == name {
				return true
			}
		}
	}
	return false
}
