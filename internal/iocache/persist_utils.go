package iocache

import (
	"fmt"
	"regexp"

	"github.com/codelinehq/codeline/schema"
)

// tableNamePattern matches valid SQL identifiers.
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName checks that the table name is a safe SQL identifier.
func validateTableName(tableName string) error {
	if tableName == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(tableName) {
		return fmt.Errorf("invalid table name %q: must start with a letter or underscore and contain only letters, digits, and underscores", tableName)
	}
	return nil
}

// quoteTableName quotes a table name for the given backend.
func quoteTableName(tableName string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", tableName)
	default: // PostgreSQL and SQLite
		return fmt.Sprintf("%q", tableName)
	}
}
