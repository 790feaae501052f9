package codegen

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// Dialect names the SQL flavor DDL is generated for. Values match the
// database/sql driver names.
type Dialect string

const (
	DialectPostgres Dialect = "pgx"
	DialectSQLite   Dialect = "sqlite3"
)

// ParseDialect converts a driver name to a Dialect
func ParseDialect(driverName string) (Dialect, error) {
	switch Dialect(driverName) {
	case DialectPostgres, DialectSQLite:
		return Dialect(driverName), nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	case "sqlite":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported dialect: %s", driverName)
	}
}

// TypeMapper maps field types and values to SQL for one dialect
type TypeMapper struct {
	dialect Dialect
}

// NewTypeMapper creates a new type mapper
func NewTypeMapper(dialect Dialect) *TypeMapper {
	return &TypeMapper{dialect: dialect}
}

// PrimaryKey returns the definition of the implicit id column
func (tm *TypeMapper) PrimaryKey() string {
	if tm.dialect == DialectSQLite {
		return "INTEGER PRIMARY KEY"
	}
	return "BIGSERIAL PRIMARY KEY"
}

// MapType maps a primitive type to a SQL column type
func (tm *TypeMapper) MapType(base schema.PrimitiveType) (string, error) {
	sqlite := tm.dialect == DialectSQLite
	switch base {
	case schema.TypeString, schema.TypeEnum:
		if sqlite {
			return "TEXT", nil
		}
		return "VARCHAR(255)", nil
	case schema.TypeText:
		return "TEXT", nil
	case schema.TypeInt:
		return "INTEGER", nil
	case schema.TypeBigInt:
		if sqlite {
			return "INTEGER", nil
		}
		return "BIGINT", nil
	case schema.TypeFloat:
		if sqlite {
			return "REAL", nil
		}
		return "DOUBLE PRECISION", nil
	case schema.TypeBool:
		return "BOOLEAN", nil
	case schema.TypeTimestamp:
		if sqlite {
			return "DATETIME", nil
		}
		return "TIMESTAMP WITH TIME ZONE", nil
	default:
		return "", fmt.Errorf("unsupported type: %s", base)
	}
}

// EnumType infers the primitive type of an enum column from its values
func EnumType(values []interface{}) schema.PrimitiveType {
	if len(values) == 0 {
		return schema.TypeString
	}

	kind := schema.TypeEnum
	for _, v := range values {
		var k schema.PrimitiveType
		switch storedValue(v).(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			k = schema.TypeInt
		case float32, float64:
			k = schema.TypeFloat
		case bool:
			k = schema.TypeBool
		default:
			return schema.TypeString
		}
		switch {
		case kind == schema.TypeEnum:
			kind = k
		case kind == schema.TypeInt && k == schema.TypeFloat, kind == schema.TypeFloat && k == schema.TypeInt:
			kind = schema.TypeFloat
		case kind != k:
			return schema.TypeString
		}
	}
	return kind
}

// Literal formats a value as a SQL literal
func (tm *TypeMapper) Literal(value interface{}) (string, error) {
	switch v := storedValue(value).(type) {
	case nil:
		return "NULL", nil
	case string:
		return quoteString(v), nil
	case []byte:
		return quoteString(string(v)), nil
	case bool:
		if tm.dialect == DialectSQLite {
			if v {
				return "1", nil
			}
			return "0", nil
		}
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return strconv.Itoa(v), nil
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", v), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case fmt.Stringer:
		return quoteString(v.String()), nil
	default:
		return "", fmt.Errorf("unsupported literal type %T", value)
	}
}

// storedValue unwraps driver.Valuer values to the form written to the column
func storedValue(v interface{}) interface{} {
	if valuer, ok := v.(driver.Valuer); ok {
		if stored, err := valuer.Value(); err == nil {
			return stored
		}
	}
	return v
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteIdentifier quotes a table or column name
func QuoteIdentifier(identifier string) string {
	escaped := strings.ReplaceAll(identifier, `"`, `""`)
	return fmt.Sprintf(`"%s"`, escaped)
}
