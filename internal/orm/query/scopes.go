package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// Scope applies a named scope to the query. Scopes declared on ancestor
// resources apply to subtypes.
func (qb *QueryBuilder) Scope(scopeName string, args ...interface{}) (*QueryBuilder, error) {
	scope, ok := qb.resource.LookupScope(scopeName)
	if !ok {
		return nil, fmt.Errorf("unknown scope: %s", scopeName)
	}

	// Bind and apply the scope
	if err := qb.applyScope(scope, args); err != nil {
		return nil, err
	}

	qb.scopeNames = append(qb.scopeNames, scopeName)
	return qb, nil
}

// applyScope applies a scope to the query builder
func (qb *QueryBuilder) applyScope(scope *schema.Scope, args []interface{}) error {
	// Validate argument count
	if len(args) != len(scope.Arguments) {
		return fmt.Errorf("scope %s expects %d arguments, got %d",
			scope.Name, len(scope.Arguments), len(args))
	}

	// Fixed equality conditions
	for _, field := range sortedKeys(scope.Equals) {
		value := scope.Equals[field]
		if value == nil {
			qb.conditions = append(qb.conditions, &Condition{Field: field, Operator: OpIsNull})
			continue
		}
		qb.conditions = append(qb.conditions, &Condition{Field: field, Operator: OpEqual, Value: value})
	}

	// Build argument map for substitution
	argMap := make(map[string]interface{})
	for i, argDef := range scope.Arguments {
		argMap[argDef.Name] = args[i]
	}

	// Parameterized conditions: "= $arg_name", "> 100", "IN $categories"
	for _, field := range sortedKeys(scope.Where) {
		exprStr, ok := scope.Where[field].(string)
		if !ok {
			return fmt.Errorf("scope condition must be a string, got %T", scope.Where[field])
		}
		cond, err := parseScopeCondition(field, exprStr, argMap)
		if err != nil {
			return fmt.Errorf("failed to parse scope condition: %w", err)
		}
		qb.conditions = append(qb.conditions, cond)
	}

	if scope.OrderBy != "" {
		qb.orderBy = append(qb.orderBy, scope.OrderBy)
	}

	if scope.Limit != nil {
		qb.limit = scope.Limit
	}

	if scope.Offset != nil {
		qb.offset = scope.Offset
	}

	return nil
}

// parseScopeCondition parses a scope condition expression into a Condition
func parseScopeCondition(field string, expr string, args map[string]interface{}) (*Condition, error) {
	expr = strings.TrimSpace(expr)

	upper := strings.ToUpper(expr)
	switch upper {
	case "IS NULL":
		return &Condition{Field: field, Operator: OpIsNull}, nil
	case "IS NOT NULL":
		return &Condition{Field: field, Operator: OpIsNotNull}, nil
	}

	parts := strings.SplitN(expr, " ", 2)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid scope condition format: %s", expr)
	}

	opStr := strings.TrimSpace(parts[0])
	valueStr := strings.TrimSpace(parts[1])

	if strings.EqualFold(opStr, "NOT") {
		rest := strings.SplitN(valueStr, " ", 2)
		if len(rest) < 2 || !strings.EqualFold(rest[0], "IN") {
			return nil, fmt.Errorf("invalid scope condition format: %s", expr)
		}
		opStr = "NOT IN"
		valueStr = strings.TrimSpace(rest[1])
	}

	op, err := parseOperatorString(opStr)
	if err != nil {
		return nil, err
	}

	// Parse value (could be literal or argument reference)
	var value interface{}
	if strings.HasPrefix(valueStr, "$") {
		argName := strings.TrimPrefix(valueStr, "$")
		var ok bool
		value, ok = args[argName]
		if !ok {
			return nil, fmt.Errorf("unknown argument: %s", argName)
		}
	} else {
		value = parseLiteralValue(valueStr)
	}

	return &Condition{
		Field:    field,
		Operator: op,
		Value:    value,
	}, nil
}

// parseOperatorString converts an operator string to an Operator type
func parseOperatorString(opStr string) (Operator, error) {
	switch strings.ToUpper(opStr) {
	case "=", "==":
		return OpEqual, nil
	case "!=", "<>":
		return OpNotEqual, nil
	case "<":
		return OpLessThan, nil
	case "<=":
		return OpLessThanOrEqual, nil
	case ">":
		return OpGreaterThan, nil
	case ">=":
		return OpGreaterThanOrEqual, nil
	case "IN":
		return OpIn, nil
	case "NOT IN":
		return OpNotIn, nil
	default:
		return OpEqual, fmt.Errorf("unknown operator: %s", opStr)
	}
}

// parseLiteralValue parses a literal value from a string
func parseLiteralValue(valueStr string) interface{} {
	// Remove quotes if present
	valueStr = strings.Trim(valueStr, "'\"")

	switch valueStr {
	case "true":
		return true
	case "false":
		return false
	}

	if i, err := strconv.Atoi(valueStr); err == nil {
		return i
	}

	if strings.Contains(valueStr, ".") {
		if f, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return f
		}
	}

	return valueStr
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
