package persistence

import (
	"context"
	"database/sql"
	"strings"
)

// Executor abstracts *sql.DB and *sql.Tx so repository writes can run either
// standalone or inside a caller-managed transaction.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// MySQL/TiDB duplicate-key error code is 1062. The unique constraints on
// (org_id, api_name) and (object_id, api_name) are the authoritative source
// of api-name conflicts; services map this to a ConflictError.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "1062")
}
