package query

import (
	"fmt"
	"strings"
)

// Operator represents a comparison operator
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
	OpIn
	OpNotIn
	OpIsNull
	OpIsNotNull
)

// String returns the string representation of the operator
func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpGreaterThan:
		return ">"
	case OpGreaterThanOrEqual:
		return ">="
	case OpLessThan:
		return "<"
	case OpLessThanOrEqual:
		return "<="
	case OpIn:
		return "IN"
	case OpNotIn:
		return "NOT IN"
	case OpIsNull:
		return "IS NULL"
	case OpIsNotNull:
		return "IS NOT NULL"
	default:
		return "UNKNOWN"
	}
}

// Condition represents a WHERE condition
type Condition struct {
	Field    string
	Operator Operator
	Value    interface{}
}

// conditionToSQL converts a condition to SQL with parameterized values
func conditionToSQL(cond *Condition, paramCounter *int, args *[]interface{}) (string, error) {
	switch cond.Operator {
	case OpEqual, OpNotEqual, OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		*args = append(*args, cond.Value)
		sql := fmt.Sprintf("%s %s $%d", cond.Field, cond.Operator, *paramCounter)
		*paramCounter++
		return sql, nil

	case OpIn, OpNotIn:
		values, ok := cond.Value.([]interface{})
		if !ok {
			return "", fmt.Errorf("%s operator requires []interface{} value", cond.Operator)
		}
		if len(values) == 0 {
			// IN with empty array always returns false, NOT IN always true
			if cond.Operator == OpIn {
				return "1 = 0", nil
			}
			return "1 = 1", nil
		}

		placeholders := make([]string, len(values))
		for i, v := range values {
			*args = append(*args, v)
			placeholders[i] = fmt.Sprintf("$%d", *paramCounter)
			*paramCounter++
		}
		return fmt.Sprintf("%s %s (%s)", cond.Field, cond.Operator, strings.Join(placeholders, ", ")), nil

	case OpIsNull:
		return fmt.Sprintf("%s IS NULL", cond.Field), nil

	case OpIsNotNull:
		return fmt.Sprintf("%s IS NOT NULL", cond.Field), nil

	default:
		return "", fmt.Errorf("unsupported operator: %v", cond.Operator)
	}
}
