// Package cursor wraps a single executed query as a lazy, forward-only
// sequence of rows. Memory use is O(1) in the number of rows: one driver row
// is buffered at a time and the scan buffer is reused across fetches.
//
// The sequence is not restartable. Once consumed it is exhausted; re-running
// the same query through Open yields a fresh sequence, not a rewind.
package cursor

import (
	"context"
	"database/sql"
	"fmt"

	"dbmover/internal/row"
)

// Querier is the subset of connection behavior the cursor needs. *sql.DB,
// *sql.Conn, and *sql.Tx all satisfy it. The connection is borrowed: the
// cursor closes its own statement and result set but never the connection.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// QueryExecutionError reports that the source query could not be prepared or
// executed. It carries the SQL text so a failed batch run can be reproduced
// outside the job.
type QueryExecutionError struct {
	SQL string
	Err error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("execute query %q: %v", e.SQL, e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

// Cursor iterates the rows of one executed query. It holds one open result
// set on the borrowed connection for its lifetime; Close releases it and is
// idempotent.
type Cursor struct {
	rows   *sql.Rows
	schema *row.Schema
	scan   []any // pointers into buf, reused every fetch
	buf    []any
	cur    *row.Row
	err    error
	closed bool
}

// Open executes querySQL against q and returns a cursor over its rows. On
// preparation or execution failure it returns *QueryExecutionError and no
// cursor; there is nothing to close.
func Open(ctx context.Context, q Querier, querySQL string) (*Cursor, error) {
	rows, err := q.QueryContext(ctx, querySQL)
	if err != nil {
		return nil, &QueryExecutionError{SQL: querySQL, Err: err}
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, &QueryExecutionError{SQL: querySQL, Err: err}
	}

	c := &Cursor{
		rows:   rows,
		schema: row.NewSchema(cols),
		scan:   make([]any, len(cols)),
		buf:    make([]any, len(cols)),
	}
	for i := range c.buf {
		c.scan[i] = &c.buf[i]
	}
	return c, nil
}

// Columns returns the ordered column names of the result set.
func (c *Cursor) Columns() []string { return c.schema.Columns() }

// Next advances to the next row. It returns false at exhaustion or on error;
// check Err afterwards to distinguish. Each successful Next invalidates
// nothing: the previously returned Row is an independent copy, but holding
// rows defeats the streaming contract and is the caller's choice.
func (c *Cursor) Next() bool {
	if c.closed || c.err != nil {
		return false
	}
	if !c.rows.Next() {
		c.err = c.rows.Err()
		return false
	}
	if err := c.rows.Scan(c.scan...); err != nil {
		c.err = fmt.Errorf("scan row: %w", err)
		return false
	}
	vals := make([]row.Value, len(c.buf))
	for i, v := range c.buf {
		vals[i] = row.FromAny(v)
	}
	r, err := c.schema.Row(vals)
	if err != nil {
		c.err = err
		return false
	}
	c.cur = r
	return true
}

// Row returns the row produced by the last successful Next.
func (c *Cursor) Row() *row.Row { return c.cur }

// Err returns the first error encountered during iteration, if any.
func (c *Cursor) Err() error { return c.err }

// Close releases the underlying result set. Safe to call more than once.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.cur = nil
	return c.rows.Close()
}
