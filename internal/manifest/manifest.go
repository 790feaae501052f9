// Package manifest loads model and enum declarations from YAML and applies
// them to a schema registry and an enum registry.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/enumtrait/internal/enum"
	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// Manifest is a set of model declarations
type Manifest struct {
	Models []Model `yaml:"models"`
}

// Model declares one resource type
type Model struct {
	Name       string  `yaml:"name"`
	Parent     string  `yaml:"parent"`
	Root       bool    `yaml:"root"`
	Persistent bool    `yaml:"persistent"`
	Table      string  `yaml:"table"`
	Fields     []Field `yaml:"fields"`
	Enums      []Enum  `yaml:"enums"`
}

// Field declares a plain column
type Field struct {
	Name     string      `yaml:"name"`
	Type     string      `yaml:"type"`
	Nullable bool        `yaml:"nullable"`
	Default  interface{} `yaml:"default"`
	Min      *int        `yaml:"min"`
	Max      *int        `yaml:"max"`
}

// Range is an inclusive integer range
type Range struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// DisplayEntry is one (label, value) pair of a display declaration
type DisplayEntry struct {
	Label string      `yaml:"label"`
	Value interface{} `yaml:"value"`
}

// Enum declares an enum trait. Exactly one of Symbols, Values, Range and
// Display must be set. Aliases and Labels are kept loosely typed so a
// malformed manifest surfaces as a declaration error.
type Enum struct {
	Field       string            `yaml:"field"`
	Symbols     []string          `yaml:"symbols"`
	Values      []interface{}     `yaml:"values"`
	Range       *Range            `yaml:"range"`
	Display     []DisplayEntry    `yaml:"display"`
	Aliases     interface{}       `yaml:"aliases"`
	Labels      interface{}       `yaml:"labels"`
	AllowNil    *bool             `yaml:"allow_nil"`
	DisplayText map[string]string `yaml:"display_text"`
}

// Load decodes a manifest
func Load(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// LoadFile decodes the manifest stored at path
func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ordered returns the models with every parent ahead of its subtypes.
// Declaration order is kept otherwise.
func (m *Manifest) ordered() ([]Model, error) {
	byName := make(map[string]Model, len(m.Models))
	for _, model := range m.Models {
		if model.Name == "" {
			return nil, fmt.Errorf("model name is required")
		}
		if _, dup := byName[model.Name]; dup {
			return nil, fmt.Errorf("model %s is declared twice", model.Name)
		}
		byName[model.Name] = model
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(m.Models))
	out := make([]Model, 0, len(m.Models))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("model %s inherits from itself", name)
		}
		state[name] = visiting

		model := byName[name]
		if model.Parent != "" {
			if _, ok := byName[model.Parent]; !ok {
				return fmt.Errorf("model %s extends unknown model %s", name, model.Parent)
			}
			if err := visit(model.Parent); err != nil {
				return err
			}
		}

		state[name] = done
		out = append(out, model)
		return nil
	}

	for _, model := range m.Models {
		if err := visit(model.Name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Apply registers every model in schemas and declares its enums in reg.
// Models are built parent first, and enums are declared once every model
// exists.
func (m *Manifest) Apply(schemas *schema.Registry, reg *enum.Registry) error {
	models, err := m.ordered()
	if err != nil {
		return err
	}

	built := make([]*schema.ResourceSchema, len(models))
	for i, model := range models {
		rs, err := build(schemas, model)
		if err != nil {
			return fmt.Errorf("model %s: %w", model.Name, err)
		}
		if err := schemas.Register(rs); err != nil {
			return err
		}
		built[i] = rs
	}

	for i, model := range models {
		for _, e := range model.Enums {
			decl, err := e.Declaration(model.Name)
			if err != nil {
				return err
			}
			if _, err := reg.Declare(built[i], decl); err != nil {
				return err
			}
		}
	}
	return nil
}

func build(schemas *schema.Registry, model Model) (*schema.ResourceSchema, error) {
	var rs *schema.ResourceSchema
	if model.Parent != "" {
		parent, ok := schemas.Get(model.Parent)
		if !ok {
			return nil, fmt.Errorf("parent %s is not registered", model.Parent)
		}
		rs = parent.Extend(model.Name)
	} else {
		rs = schema.NewResourceSchema(model.Name)
	}

	rs.Root = model.Root
	rs.Persistent = rs.Persistent || model.Persistent
	if model.Table != "" {
		rs.TableName = model.Table
	}

	for _, f := range model.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field name is required")
		}
		typ := f.Type
		if typ == "" {
			typ = "string"
		}
		base, err := schema.ParsePrimitiveType(typ)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		field := &schema.Field{
			Name: f.Name,
			Type: &schema.TypeSpec{BaseType: base, Nullable: f.Nullable, Default: f.Default},
		}
		if f.Min != nil || f.Max != nil {
			if base != schema.TypeInt && base != schema.TypeBigInt {
				return nil, fmt.Errorf("field %s: min and max need an integer type, got %s", f.Name, typ)
			}
			if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
				return nil, fmt.Errorf("field %s: min %d is greater than max %d", f.Name, *f.Min, *f.Max)
			}
		}
		if f.Min != nil {
			field.SetConstraint(schema.Constraint{Type: schema.ConstraintMin, Value: *f.Min})
		}
		if f.Max != nil {
			field.SetConstraint(schema.Constraint{Type: schema.ConstraintMax, Value: *f.Max})
		}
		rs.Fields[f.Name] = field
	}
	return rs, nil
}
