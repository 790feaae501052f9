package query

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// Execer is satisfied by *sql.DB and *sql.Tx
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// InsertSQL builds an INSERT for the given attributes. Columns are emitted
// in name order; every column must exist on the resource.
func InsertSQL(resource *schema.ResourceSchema, attrs map[string]interface{}) (string, []interface{}, error) {
	if len(attrs) == 0 {
		return "", nil, fmt.Errorf("insert into %s: no attributes", resource.TableName)
	}
	validateIdentifier(resource.TableName)

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		if !resource.HasField(name) {
			return "", nil, fmt.Errorf("insert into %s: unknown column %s", resource.TableName, name)
		}
		validateIdentifier(name)
		names = append(names, name)
	}
	sort.Strings(names)

	placeholders := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, name := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = attrs[name]
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		resource.TableName, strings.Join(names, ", "), strings.Join(placeholders, ", "))
	return stmt, args, nil
}

// Insert writes one row through exec
func Insert(ctx context.Context, exec Execer, resource *schema.ResourceSchema, attrs map[string]interface{}) error {
	stmt, args, err := InsertSQL(resource, attrs)
	if err != nil {
		return err
	}
	if _, err := exec.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", resource.TableName, err)
	}
	return nil
}
