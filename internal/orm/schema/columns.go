package schema

// ColumnDecorator adjusts a freshly built column snapshot for model. It runs
// for the type it was registered on and for every subtype.
type ColumnDecorator func(model *ResourceSchema, columns map[string]*Field)

type namedDecorator struct {
	name string
	fn   ColumnDecorator
}

// Columns returns the merged column snapshot: ancestor fields overlaid with
// the resource's own fields. The snapshot is built on first use and reused
// until ResetColumns is called.
func (r *ResourceSchema) Columns() map[string]*Field {
	if r.columns != nil {
		return r.columns
	}

	columns := make(map[string]*Field)
	lineage := r.Lineage()
	for i := len(lineage) - 1; i >= 0; i-- {
		for name, field := range lineage[i].Fields {
			columns[name] = field.clone()
		}
	}

	for i := len(lineage) - 1; i >= 0; i-- {
		for _, d := range lineage[i].decorators {
			d.fn(r, columns)
		}
	}

	r.columns = columns
	return columns
}

// Column returns a single column from the snapshot
func (r *ResourceSchema) Column(name string) (*Field, bool) {
	field, ok := r.Columns()[name]
	return field, ok
}

// ResetColumns drops the column snapshot of r and of every subtype created
// with Extend, so the next read rebuilds them
func (r *ResourceSchema) ResetColumns() {
	r.columns = nil
	for _, child := range r.children {
		child.ResetColumns()
	}
}

// AddColumnDecorator registers fn under name. A name already registered on
// r or one of its ancestors is not added again; the return value reports
// whether fn was added.
func (r *ResourceSchema) AddColumnDecorator(name string, fn ColumnDecorator) bool {
	for _, t := range r.Lineage() {
		for _, d := range t.decorators {
			if d.name == name {
				return false
			}
		}
	}
	r.decorators = append(r.decorators, namedDecorator{name: name, fn: fn})
	r.ResetColumns()
	return true
}
