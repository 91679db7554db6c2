// Package etl assembles a configured transfer job: it opens the source and
// target connections, loads the job's domain-value maps, builds the per-row
// insert action from the column specs, and drives the streaming transfer
// loop.
package etl

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dbmover/internal/config"
	"dbmover/internal/dbconn"
	"dbmover/internal/dvm"
	"dbmover/internal/exec"
	"dbmover/internal/metrics"
	"dbmover/internal/row"
	"dbmover/internal/transfer"
)

// Summary reports the outcome of one job run.
type Summary struct {
	Job      string
	Rows     int64
	Duration time.Duration
}

// Run executes one transfer job end to end. Connections are opened here and
// closed before Run returns; the transfer core only borrows them.
//
// When job.Runtime.Transactional is set the whole run is wrapped in one
// target transaction, committed at the job boundary and rolled back on any
// failure. Without it every insert is its own implicit transaction.
func Run(ctx context.Context, job config.Job, log *slog.Logger) (Summary, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("job", job.Name)
	start := time.Now()
	sum := Summary{Job: job.Name}

	src, closeSrc, err := dbconn.Open(ctx, dbconn.Config{Driver: job.Source.Driver, DSN: job.Source.DSN})
	if err != nil {
		return sum, fmt.Errorf("source: %w", err)
	}
	defer closeSrc()

	tgt, closeTgt, err := dbconn.Open(ctx, dbconn.Config{Driver: job.Target.Driver, DSN: job.Target.DSN})
	if err != nil {
		return sum, fmt.Errorf("target: %w", err)
	}
	defer closeTgt()

	tables := make(map[string]*dvm.Table, len(job.DVMs))
	for _, d := range job.DVMs {
		recs := make([]dvm.Record, len(d.Records))
		for i, r := range d.Records {
			recs[i] = dvm.Record(r)
		}
		tables[d.Name] = &dvm.Table{Name: d.Name, Records: recs}
	}

	insertSQL := buildInsert(job.Target.Driver, job.Table, job.Columns)

	var execConn exec.Conn = tgt
	var tx *sql.Tx
	if job.Runtime.Transactional {
		tx, err = tgt.BeginTx(ctx, nil)
		if err != nil {
			return sum, fmt.Errorf("begin target tx: %w", err)
		}
		// Rollback after a successful commit is a no-op.
		defer tx.Rollback()
		execConn = tx
	}
	ex := exec.New(execConn, log)

	fn := func(r *row.Row) error {
		params := make([]any, len(job.Columns))
		for i, col := range job.Columns {
			v, err := columnValue(r, col, tables, job.Name)
			if err != nil {
				return err
			}
			params[i] = v
		}
		return ex.Exec(ctx, insertSQL, params...)
	}

	n, err := transfer.Run(ctx, src, job.Query, fn, transfer.Options{
		Log:           log,
		Job:           job.Name,
		ProgressEvery: job.Runtime.ProgressEvery,
	})
	sum.Rows = n
	sum.Duration = time.Since(start)
	if err != nil {
		return sum, err
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return sum, fmt.Errorf("commit target tx: %w", err)
		}
	}
	metrics.RecordRow(job.Name, "inserted", n)
	return sum, nil
}

// columnValue produces the bind value for one target column from the current
// source row.
//
// Null source values pass through DVM columns untranslated: a missing value
// is not a mapping miss. Jobs that must reject nulls add a NOT NULL
// constraint on the target or a WHERE clause on the source.
func columnValue(r *row.Row, col config.ColumnSpec, tables map[string]*dvm.Table, jobName string) (any, error) {
	if col.Const != nil {
		return *col.Const, nil
	}
	v, err := r.Field(col.SourceColumn())
	if err != nil {
		return nil, err
	}
	if col.DVM == "" {
		return v.Any(), nil
	}
	if v.IsNull() {
		return nil, nil
	}
	t, ok := tables[col.DVM]
	if !ok {
		return nil, fmt.Errorf("column %q: dvm %q is not defined", col.Name, col.DVM)
	}
	mapped, err := t.Resolve(col.DVMFrom, col.DVMTo, v.String())
	if err != nil {
		metrics.RecordRow(jobName, "dvm_miss", 1)
		return nil, fmt.Errorf("column %q: %w", col.Name, err)
	}
	return mapped, nil
}

// buildInsert renders the parameterized insert for the target driver's
// placeholder style.
func buildInsert(driver, table string, cols []config.ColumnSpec) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(names, ", "),
		dbconn.Placeholders(driver, len(cols)),
	)
}
