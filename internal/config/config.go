// Package config defines the canonical, JSON-serializable configuration
// model for transfer jobs. It is intentionally small, explicit, and
// dependency-free so that job files can be loaded from disk (or other
// sources) and passed through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in job files.
//  3. Minimalism: No third-party config libraries; decoding is performed by
//     the standard library.
//
// Example (trimmed):
//
//	{
//	  "jobs": [{
//	    "name":   "people",
//	    "source": { "driver": "pgx", "dsn": "env:SRC_DSN" },
//	    "target": { "driver": "sqlite", "dsn": "out.db" },
//	    "query":  "SELECT id, name, active FROM people ORDER BY id",
//	    "table":  "people",
//	    "columns": [
//	      { "name": "id" },
//	      { "name": "name" },
//	      { "name": "status", "from": "active", "dvm": "active_status",
//	        "dvm_from": "src", "dvm_to": "dst" }
//	    ],
//	    "dvms": [{
//	      "name": "active_status",
//	      "records": [ { "src": "true", "dst": "A" }, { "src": "false", "dst": "I" } ]
//	    }]
//	  }]
//	}
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// File is the top-level object decoded from a job file. One file may carry
// several independent jobs; each job owns its connections, so jobs can run
// concurrently.
type File struct {
	Jobs []Job `json:"jobs"`
}

// Job describes one source-to-target transfer.
type Job struct {
	// Name identifies the job in logs and metrics.
	Name string `json:"name"`

	// Source is the connection the rows are read from.
	Source DBConfig `json:"source"`

	// Target is the connection the rows are written to.
	Target DBConfig `json:"target"`

	// Query is the source SQL, executed once per run. It must not contain
	// embedded parameters.
	Query string `json:"query"`

	// Table is the target table name.
	Table string `json:"table"`

	// Columns enumerates the target columns in insert order and how each is
	// produced from the source row.
	Columns []ColumnSpec `json:"columns"`

	// DVMs are the domain-value maps available to column specs, loaded once
	// and read-only for the life of the job.
	DVMs []DVMTable `json:"dvms,omitempty"`

	// Runtime tunes execution behavior.
	Runtime RuntimeConfig `json:"runtime"`
}

// DBConfig identifies a database connection.
type DBConfig struct {
	// Driver is the database/sql driver name: "pgx", "mysql", "sqlserver",
	// or "sqlite".
	Driver string `json:"driver"`

	// DSN is the driver connection string; "env:NAME" resolves from the
	// environment at open time.
	DSN string `json:"dsn"`
}

// ColumnSpec describes how one target column is produced.
//
// Exactly one production rule applies: a constant (Const), a DVM-translated
// source column (DVM + DVMFrom + DVMTo), or a source column copied as-is
// (the default). From defaults to Name when empty.
type ColumnSpec struct {
	// Name is the target column name.
	Name string `json:"name"`

	// From is the source column to read; defaults to Name.
	From string `json:"from,omitempty"`

	// DVM names the table used to translate the source value. When set,
	// DVMFrom and DVMTo select the lookup and result domains.
	DVM     string `json:"dvm,omitempty"`
	DVMFrom string `json:"dvm_from,omitempty"`
	DVMTo   string `json:"dvm_to,omitempty"`

	// Const, when non-nil, binds this literal instead of reading the source.
	Const *string `json:"const,omitempty"`
}

// SourceColumn returns the source column this spec reads.
func (c ColumnSpec) SourceColumn() string {
	if c.From != "" {
		return c.From
	}
	return c.Name
}

// DVMTable is an inline domain-value map definition.
type DVMTable struct {
	Name    string              `json:"name"`
	Records []map[string]string `json:"records"`
}

// RuntimeConfig controls execution behavior of a job.
type RuntimeConfig struct {
	// Transactional wraps the whole job in one target transaction, committed
	// at the job boundary. The transfer core itself imposes no transaction;
	// this is the externally-managed scope.
	Transactional bool `json:"transactional"`

	// ProgressEvery emits a progress log line every N rows; 0 uses the
	// default.
	ProgressEvery int64 `json:"progress_every"`
}

// Load decodes a job file from disk.
func Load(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes a job file from r.
func Decode(r io.Reader) (File, error) {
	var file File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return File{}, fmt.Errorf("decode config: %w", err)
	}
	return file, nil
}
