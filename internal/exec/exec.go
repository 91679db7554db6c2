// Package exec executes parameterized statements against a target connection
// with structured diagnostic logging around every attempt.
//
// Every attempt is logged at debug level before execution, so a statement
// that hangs or crashes the process is still visible in the trail. Failures
// are logged at error level with the exact SQL and bound parameters, then
// returned to the caller wrapped — never swallowed. That dual behavior is
// the whole point: an opaque mid-batch failure becomes one that can be
// reproduced outside the batch.
package exec

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Conn is the subset of connection behavior the executor needs. *sql.DB,
// *sql.Conn, and *sql.Tx all satisfy it. The connection is borrowed and
// never closed here; the prepared statement is closed on every path.
type Conn interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// StatementExecutionError reports a failed target statement with enough
// context to reproduce it: the SQL text and the positionally bound
// parameters. Unwrap yields the underlying driver error.
type StatementExecutionError struct {
	SQL    string
	Params []any
	Err    error
}

func (e *StatementExecutionError) Error() string {
	return fmt.Sprintf("execute %q params=%v: %v", e.SQL, e.Params, e.Err)
}

func (e *StatementExecutionError) Unwrap() error { return e.Err }

// Executor binds ordered parameters to a statement and runs it against a
// borrowed target connection.
type Executor struct {
	conn Conn
	log  *slog.Logger
}

// New returns an Executor writing diagnostics to log. A nil log falls back
// to slog.Default().
func New(conn Conn, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{conn: conn, log: log}
}

// Exec prepares sqlText, binds params in strict positional order (value i to
// placeholder i), and executes. Arity mismatches are the caller's error and
// fail through the driver rather than being truncated or padded.
//
// On failure the returned error is *StatementExecutionError wrapping the
// original driver error unchanged.
func (e *Executor) Exec(ctx context.Context, sqlText string, params ...any) error {
	e.log.DebugContext(ctx, "executing statement", "sql", sqlText, "params", params)

	stmt, err := e.conn.PrepareContext(ctx, sqlText)
	if err != nil {
		return e.fail(ctx, sqlText, params, fmt.Errorf("prepare: %w", err))
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, params...); err != nil {
		return e.fail(ctx, sqlText, params, err)
	}
	return nil
}

func (e *Executor) fail(ctx context.Context, sqlText string, params []any, err error) error {
	e.log.ErrorContext(ctx, "statement failed", "sql", sqlText, "params", params, "err", err)
	return &StatementExecutionError{SQL: sqlText, Params: params, Err: err}
}
