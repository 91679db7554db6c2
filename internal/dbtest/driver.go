// Package dbtest provides an in-memory database/sql driver for hermetic
// tests. A Store holds canned result sets keyed by query text and records
// every statement executed against it, including bound arguments, row
// fetches, and cursor lifecycle, so tests can assert on streaming behavior
// without a live database.
//
// The driver registers itself under the name "dbtest"; the DSN selects the
// Store:
//
//	st := dbtest.NewStore("my-test")
//	st.AddQuery("SELECT id FROM t", []string{"id"}, [][]any{{1}, {2}})
//	db, _ := sql.Open("dbtest", "my-test")
package dbtest

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sync"
	"time"
)

func init() {
	sql.Register("dbtest", drv{})
}

var (
	storesMu sync.Mutex
	stores   = map[string]*Store{}
)

// NewStore registers (or replaces) the fixture store behind dsn and returns it.
func NewStore(dsn string) *Store {
	st := &Store{
		queries:  map[string]*fixture{},
		queryErr: map[string]error{},
		execErr:  map[string]error{},
		fetched:  map[string]int{},
	}
	storesMu.Lock()
	stores[dsn] = st
	storesMu.Unlock()
	return st
}

func lookupStore(dsn string) *Store {
	storesMu.Lock()
	defer storesMu.Unlock()
	return stores[dsn]
}

// Statement is one recorded execution attempt with its positionally bound
// arguments, in bind order.
type Statement struct {
	SQL  string
	Args []any
}

type fixture struct {
	cols []string
	rows [][]driver.Value
}

// Store is the shared state behind every connection opened with its DSN.
type Store struct {
	mu sync.Mutex

	queries  map[string]*fixture
	queryErr map[string]error
	execErr  map[string]error

	execs         []Statement
	fetched       map[string]int
	openCursors   int
	cursorsClosed int
	stmtsClosed   int

	begun      int
	committed  int
	rolledBack int
}

// AddQuery installs a result fixture for the exact query text.
func (s *Store) AddQuery(sqlText string, cols []string, rows [][]any) {
	fx := &fixture{cols: cols}
	for _, r := range rows {
		dr := make([]driver.Value, len(r))
		for i, v := range r {
			dr[i] = toDriverValue(v)
		}
		fx.rows = append(fx.rows, dr)
	}
	s.mu.Lock()
	s.queries[sqlText] = fx
	s.mu.Unlock()
}

// FailQuery makes the exact query text fail with err at execution time.
func (s *Store) FailQuery(sqlText string, err error) {
	s.mu.Lock()
	s.queryErr[sqlText] = err
	s.mu.Unlock()
}

// FailExec makes the exact statement text fail with err at execution time.
func (s *Store) FailExec(sqlText string, err error) {
	s.mu.Lock()
	s.execErr[sqlText] = err
	s.mu.Unlock()
}

// Execs returns a copy of all recorded execution attempts in order.
func (s *Store) Execs() []Statement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Statement, len(s.execs))
	copy(out, s.execs)
	return out
}

// Fetched returns how many rows have been pulled from the fixture for the
// given query text across all cursors.
func (s *Store) Fetched(sqlText string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetched[sqlText]
}

// OpenCursors returns the number of currently open result cursors.
func (s *Store) OpenCursors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openCursors
}

// CursorsClosed returns how many result cursors have been closed.
func (s *Store) CursorsClosed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursorsClosed
}

// StmtsClosed returns how many prepared statements have been closed.
func (s *Store) StmtsClosed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stmtsClosed
}

// TxCounts returns (begun, committed, rolledBack) transaction counters.
func (s *Store) TxCounts() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begun, s.committed, s.rolledBack
}

func toDriverValue(v any) driver.Value {
	switch t := v.(type) {
	case nil, int64, float64, bool, string, time.Time:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case []byte:
		return append([]byte(nil), t...)
	default:
		return fmt.Sprint(t)
	}
}

type drv struct{}

func (drv) Open(dsn string) (driver.Conn, error) {
	st := lookupStore(dsn)
	if st == nil {
		return nil, fmt.Errorf("dbtest: no store registered for dsn %q", dsn)
	}
	return &conn{st: st}, nil
}

type conn struct{ st *Store }

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return &stmt{st: c.st, sql: query}, nil
}

func (c *conn) Close() error { return nil }

func (c *conn) Begin() (driver.Tx, error) {
	c.st.mu.Lock()
	c.st.begun++
	c.st.mu.Unlock()
	return &tx{st: c.st}, nil
}

type tx struct{ st *Store }

func (t *tx) Commit() error {
	t.st.mu.Lock()
	t.st.committed++
	t.st.mu.Unlock()
	return nil
}

func (t *tx) Rollback() error {
	t.st.mu.Lock()
	t.st.rolledBack++
	t.st.mu.Unlock()
	return nil
}

type stmt struct {
	st     *Store
	sql    string
	closed bool
}

func (s *stmt) Close() error {
	if !s.closed {
		s.closed = true
		s.st.mu.Lock()
		s.st.stmtsClosed++
		s.st.mu.Unlock()
	}
	return nil
}

// NumInput returns -1: the fake does not know its placeholder count, so
// database/sql skips arity validation (real drivers enforce it).
func (s *stmt) NumInput() int { return -1 }

func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	rec := Statement{SQL: s.sql, Args: make([]any, len(args))}
	for i, a := range args {
		rec.Args[i] = a
	}
	s.st.mu.Lock()
	s.st.execs = append(s.st.execs, rec)
	err := s.st.execErr[s.sql]
	s.st.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return driver.RowsAffected(1), nil
}

func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	s.st.mu.Lock()
	if err := s.st.queryErr[s.sql]; err != nil {
		s.st.mu.Unlock()
		return nil, err
	}
	fx, ok := s.st.queries[s.sql]
	if !ok {
		s.st.mu.Unlock()
		return nil, fmt.Errorf("dbtest: no fixture for query %q", s.sql)
	}
	s.st.openCursors++
	s.st.mu.Unlock()
	return &rows{st: s.st, sql: s.sql, fx: fx}, nil
}

type rows struct {
	st     *Store
	sql    string
	fx     *fixture
	i      int
	closed bool
}

func (r *rows) Columns() []string { return r.fx.cols }

func (r *rows) Close() error {
	if !r.closed {
		r.closed = true
		r.st.mu.Lock()
		r.st.openCursors--
		r.st.cursorsClosed++
		r.st.mu.Unlock()
	}
	return nil
}

func (r *rows) Next(dest []driver.Value) error {
	if r.i >= len(r.fx.rows) {
		return io.EOF
	}
	copy(dest, r.fx.rows[r.i])
	r.i++
	r.st.mu.Lock()
	r.st.fetched[r.sql]++
	r.st.mu.Unlock()
	return nil
}
