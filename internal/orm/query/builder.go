// Package query provides query building functionality for resources
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// QueryBuilder provides a fluent API for building SQL queries
type QueryBuilder struct {
	resource *schema.ResourceSchema
	db       *sql.DB

	conditions []*Condition
	orderBy    []string
	limit      *int
	offset     *int
	scopeNames []string // Applied scope names

	// For building SQL
	paramCounter int
	args         []interface{}
}

// NewQueryBuilder creates a new query builder for the given resource
func NewQueryBuilder(resource *schema.ResourceSchema, db *sql.DB) *QueryBuilder {
	return &QueryBuilder{
		resource:     resource,
		db:           db,
		conditions:   make([]*Condition, 0),
		orderBy:      make([]string, 0),
		scopeNames:   make([]string, 0),
		paramCounter: 1,
		args:         make([]interface{}, 0),
	}
}

// Resource returns the resource the builder queries
func (qb *QueryBuilder) Resource() *schema.ResourceSchema {
	return qb.resource
}

// ScopeNames returns the names of the scopes applied so far
func (qb *QueryBuilder) ScopeNames() []string {
	return append([]string(nil), qb.scopeNames...)
}

// Where adds a WHERE condition to the query
func (qb *QueryBuilder) Where(field string, op Operator, value interface{}) *QueryBuilder {
	qb.mustHaveField(field)

	qb.conditions = append(qb.conditions, &Condition{
		Field:    field,
		Operator: op,
		Value:    value,
	})
	return qb
}

// WhereIn adds a WHERE IN condition
func (qb *QueryBuilder) WhereIn(field string, values []interface{}) *QueryBuilder {
	return qb.Where(field, OpIn, values)
}

// WhereNull adds a WHERE IS NULL condition
func (qb *QueryBuilder) WhereNull(field string) *QueryBuilder {
	return qb.Where(field, OpIsNull, nil)
}

// WhereNotNull adds a WHERE IS NOT NULL condition
func (qb *QueryBuilder) WhereNotNull(field string) *QueryBuilder {
	return qb.Where(field, OpIsNotNull, nil)
}

// Limit sets the LIMIT clause
func (qb *QueryBuilder) Limit(n int) *QueryBuilder {
	qb.limit = &n
	return qb
}

// mustHaveField panics when field is not a column of the resource or one of
// its ancestors
func (qb *QueryBuilder) mustHaveField(field string) {
	if qb.resource != nil && !qb.resource.HasField(field) {
		panic(fmt.Sprintf("field %s does not exist on resource %s", field, qb.resource.Name))
	}
}

// ToSQL generates the SQL query and parameter bindings
func (qb *QueryBuilder) ToSQL() (string, []interface{}, error) {
	var sql strings.Builder
	qb.args = make([]interface{}, 0)
	qb.paramCounter = 1

	validateIdentifier(qb.resource.TableName)
	sql.WriteString(fmt.Sprintf("SELECT * FROM %s", qb.resource.TableName))

	// WHERE clauses
	if len(qb.conditions) > 0 {
		sql.WriteString(" WHERE ")
		for i, cond := range qb.conditions {
			if i > 0 {
				sql.WriteString(" AND ")
			}
			condSQL, err := qb.conditionToSQL(cond)
			if err != nil {
				return "", nil, fmt.Errorf("failed to build condition: %w", err)
			}
			sql.WriteString(condSQL)
		}
	}

	// ORDER BY
	if len(qb.orderBy) > 0 {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(qb.orderBy, ", "))
	}

	// LIMIT
	if qb.limit != nil {
		sql.WriteString(fmt.Sprintf(" LIMIT $%d", qb.paramCounter))
		qb.args = append(qb.args, *qb.limit)
		qb.paramCounter++
	}

	// OFFSET
	if qb.offset != nil {
		sql.WriteString(fmt.Sprintf(" OFFSET $%d", qb.paramCounter))
		qb.args = append(qb.args, *qb.offset)
		qb.paramCounter++
	}

	return sql.String(), qb.args, nil
}

// conditionToSQL converts a condition to SQL
func (qb *QueryBuilder) conditionToSQL(cond *Condition) (string, error) {
	return conditionToSQL(cond, &qb.paramCounter, &qb.args)
}

// All executes the query and returns all matching rows
func (qb *QueryBuilder) All(ctx context.Context) ([]map[string]interface{}, error) {
	sql, args, err := qb.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to generate SQL: %w", err)
	}

	rows, err := qb.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	results, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan rows: %w", err)
	}

	return results, nil
}

// First executes the query and returns the first matching row. The
// receiver is left without the limit.
func (qb *QueryBuilder) First(ctx context.Context) (map[string]interface{}, error) {
	results, err := qb.Clone().Limit(1).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, sql.ErrNoRows
	}
	return results[0], nil
}

// Count executes the query and returns the count
func (qb *QueryBuilder) Count(ctx context.Context) (int, error) {
	sqlStr, args, err := qb.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to generate SQL: %w", err)
	}

	// Replace SELECT * with SELECT COUNT(*)
	sqlStr = strings.Replace(sqlStr, "SELECT *", "SELECT COUNT(*)", 1)

	var count int
	err = qb.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to execute count query: %w", err)
	}

	return count, nil
}

// Exists checks if any rows match the query
func (qb *QueryBuilder) Exists(ctx context.Context) (bool, error) {
	count, err := qb.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Clone creates a copy of the query builder
func (qb *QueryBuilder) Clone() *QueryBuilder {
	clone := &QueryBuilder{
		resource:     qb.resource,
		db:           qb.db,
		conditions:   make([]*Condition, len(qb.conditions)),
		orderBy:      make([]string, len(qb.orderBy)),
		scopeNames:   make([]string, len(qb.scopeNames)),
		paramCounter: 1,
		args:         make([]interface{}, 0),
	}

	copy(clone.conditions, qb.conditions)
	copy(clone.orderBy, qb.orderBy)
	copy(clone.scopeNames, qb.scopeNames)

	if qb.limit != nil {
		limit := *qb.limit
		clone.limit = &limit
	}

	if qb.offset != nil {
		offset := *qb.offset
		clone.offset = &offset
	}

	return clone
}

// scanRows scans SQL rows into a slice of maps
func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(map[string]interface{})
		for i, col := range columns {
			record[col] = values[i]
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// validateIdentifier validates that an identifier only contains safe characters
// (letters, digits, underscore, and dot for qualified names).
// Panics if invalid characters are found.
func validateIdentifier(identifier string) {
	if identifier == "" {
		panic("invalid identifier: empty")
	}
	for _, char := range identifier {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_' || char == '.') {
			panic(fmt.Sprintf("invalid identifier: %s (contains invalid character: %c)", identifier, char))
		}
	}
}
