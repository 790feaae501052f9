// Package codegen generates table DDL for persistent resources, including a
// CHECK constraint for every enum column.
package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// DDLGenerator generates CREATE TABLE statements from resource schemas
type DDLGenerator struct {
	typeMapper *TypeMapper
}

// NewDDLGenerator creates a new DDL generator
func NewDDLGenerator(dialect Dialect) *DDLGenerator {
	return &DDLGenerator{
		typeMapper: NewTypeMapper(dialect),
	}
}

// column is one merged column of a table shared by several resources
type column struct {
	name     string
	base     schema.PrimitiveType
	notNull  bool
	def      interface{}
	enum     bool
	values   []interface{}
	seen     map[string]bool
	declared int
}

// GenerateSchema generates one CREATE TABLE statement per table used by the
// persistent resources, ordered by table name. Resources sharing a table
// are merged: a column missing from any of them is nullable, and enum
// columns accept the union of the declared values.
func (g *DDLGenerator) GenerateSchema(resources []*schema.ResourceSchema) ([]string, error) {
	tables := make(map[string][]*schema.ResourceSchema)
	for _, r := range resources {
		if r == nil || !r.Persistent {
			continue
		}
		tables[r.TableName] = append(tables[r.TableName], r)
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	stmts := make([]string, 0, len(names))
	for _, name := range names {
		stmt, err := g.GenerateCreateTable(tables[name]...)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// GenerateCreateTable generates a CREATE TABLE statement for resources that
// share one table
func (g *DDLGenerator) GenerateCreateTable(resources ...*schema.ResourceSchema) (string, error) {
	if len(resources) == 0 || resources[0] == nil {
		return "", fmt.Errorf("resource cannot be nil")
	}

	tableName := resources[0].TableName
	if tableName == "" {
		return "", fmt.Errorf("resource %s has no table", resources[0].Name)
	}

	columns, err := g.mergeColumns(resources)
	if err != nil {
		return "", err
	}

	columnDefs := make([]string, 0, len(columns)+1)
	if _, ok := columns["id"]; !ok {
		columnDefs = append(columnDefs, QuoteIdentifier("id")+" "+g.typeMapper.PrimaryKey())
	}

	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := columns[name]
		if c.declared < len(resources) {
			c.notNull = false
		}
		def, err := g.generateColumnDefinition(c)
		if err != nil {
			return "", fmt.Errorf("%s.%s: %w", tableName, name, err)
		}
		columnDefs = append(columnDefs, def)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n", QuoteIdentifier(tableName)))
	for i, def := range columnDefs {
		b.WriteString("  ")
		b.WriteString(def)
		if i < len(columnDefs)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(");")

	return b.String(), nil
}

func (g *DDLGenerator) mergeColumns(resources []*schema.ResourceSchema) (map[string]*column, error) {
	merged := make(map[string]*column)

	for _, r := range resources {
		if r.TableName != resources[0].TableName {
			return nil, fmt.Errorf("resources %s and %s use different tables", resources[0].Name, r.Name)
		}

		for name, field := range r.Columns() {
			c, exists := merged[name]
			if !exists {
				c = &column{name: name, notNull: true, seen: make(map[string]bool)}
				merged[name] = c
			}
			c.declared++

			notNull := field.Type != nil && !field.Type.Nullable
			base := schema.TypeString
			if field.Type != nil {
				base = field.Type.BaseType
				if c.def == nil {
					c.def = field.Type.Default
				}
			}

			if inclusion, ok := inclusionOf(field); ok {
				c.enum = true
				notNull = !inclusion.AllowNil
				for _, v := range inclusion.In {
					lit, err := g.typeMapper.Literal(v)
					if err != nil {
						return nil, fmt.Errorf("%s.%s: %w", r.Name, name, err)
					}
					if !c.seen[lit] {
						c.seen[lit] = true
						c.values = append(c.values, v)
					}
				}
			}

			if !exists || c.base == schema.TypeEnum {
				c.base = base
			}
			c.notNull = c.notNull && notNull
		}
	}

	for _, c := range merged {
		if c.base == schema.TypeEnum {
			c.base = EnumType(c.values)
		}
	}
	return merged, nil
}

// generateColumnDefinition generates a column definition for a merged column
func (g *DDLGenerator) generateColumnDefinition(c *column) (string, error) {
	parts := []string{QuoteIdentifier(c.name)}

	columnType, err := g.typeMapper.MapType(c.base)
	if err != nil {
		return "", fmt.Errorf("mapping type: %w", err)
	}
	parts = append(parts, columnType)

	if c.notNull {
		parts = append(parts, "NOT NULL")
	} else {
		parts = append(parts, "NULL")
	}

	if c.def != nil {
		lit, err := g.typeMapper.Literal(c.def)
		if err != nil {
			return "", fmt.Errorf("mapping default value: %w", err)
		}
		parts = append(parts, "DEFAULT "+lit)
	}

	if c.enum && len(c.values) > 0 {
		check, err := g.generateCheck(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, check)
	}

	return strings.Join(parts, " "), nil
}

// generateCheck restricts the column to its declared values. NULL passes a
// CHECK, so nullability is left to the NOT NULL clause.
func (g *DDLGenerator) generateCheck(c *column) (string, error) {
	literals := make([]string, 0, len(c.values))
	for _, v := range c.values {
		lit, err := g.typeMapper.Literal(v)
		if err != nil {
			return "", err
		}
		literals = append(literals, lit)
	}
	return fmt.Sprintf("CHECK (%s IN (%s))", QuoteIdentifier(c.name), strings.Join(literals, ", ")), nil
}

func inclusionOf(field *schema.Field) (schema.Inclusion, bool) {
	for _, c := range field.Constraints {
		if c.Type != schema.ConstraintInclusion {
			continue
		}
		switch in := c.Value.(type) {
		case schema.Inclusion:
			return in, true
		case *schema.Inclusion:
			if in != nil {
				return *in, true
			}
		}
	}
	return schema.Inclusion{}, false
}
