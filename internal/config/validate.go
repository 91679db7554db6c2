// Package config provides configuration models and helpers for transfer jobs.
//
// This file adds a lightweight linter/validator for job files. It performs
// static checks over a decoded File and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the config (e.g. "jobs[0].source.driver",
// "jobs[2].columns[1].dvm"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasError reports whether any issue in the list is of error severity.
func HasError(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// knownDrivers are the driver names the standard binary registers. Unknown
// names are warnings, not errors, so custom builds with extra drivers keep
// working.
var knownDrivers = map[string]struct{}{
	"pgx":       {},
	"mysql":     {},
	"sqlserver": {},
	"sqlite":    {},
}

// ValidateFile performs static validation / linting of a decoded job file.
//
// It does not mutate the file. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func ValidateFile(f File) []Issue {
	var issues []Issue

	if len(f.Jobs) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "jobs",
			Message:  "at least one job is required",
		})
	}
	seen := map[string]struct{}{}
	for i, job := range f.Jobs {
		prefix := fmt.Sprintf("jobs[%d]", i)
		if _, dup := seen[job.Name]; dup && job.Name != "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     prefix + ".name",
				Message:  fmt.Sprintf("duplicate job name %q", job.Name),
			})
		}
		seen[job.Name] = struct{}{}
		issues = append(issues, ValidateJob(job, prefix)...)
	}
	return issues
}

// ValidateJob validates a single job. prefix is prepended to issue paths.
func ValidateJob(job Job, prefix string) []Issue {
	var issues []Issue

	if strings.TrimSpace(job.Name) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     prefix + ".name",
			Message:  "name must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateDB(job.Source, prefix+".source")...)
	issues = append(issues, validateDB(job.Target, prefix+".target")...)

	if strings.TrimSpace(job.Query) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     prefix + ".query",
			Message:  "query must not be empty",
		})
	}
	if strings.TrimSpace(job.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     prefix + ".table",
			Message:  "table must not be empty",
		})
	}
	if job.Runtime.ProgressEvery < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     prefix + ".runtime.progress_every",
			Message:  "progress_every must not be negative",
		})
	}

	dvms := map[string]DVMTable{}
	for j, d := range job.DVMs {
		path := fmt.Sprintf("%s.dvms[%d]", prefix, j)
		if strings.TrimSpace(d.Name) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  "dvm name must not be empty",
			})
			continue
		}
		if _, dup := dvms[d.Name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("duplicate dvm name %q", d.Name),
			})
		}
		dvms[d.Name] = d
		issues = append(issues, validateDVM(d, path)...)
	}

	if len(job.Columns) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     prefix + ".columns",
			Message:  "at least one column is required",
		})
	}
	for j, col := range job.Columns {
		path := fmt.Sprintf("%s.columns[%d]", prefix, j)
		issues = append(issues, validateColumn(col, dvms, path)...)
	}

	return issues
}

// validateDB validates a connection config.
func validateDB(db DBConfig, path string) []Issue {
	var issues []Issue

	if strings.TrimSpace(db.Driver) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".driver",
			Message:  "driver must not be empty",
		})
	} else if _, ok := knownDrivers[db.Driver]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     path + ".driver",
			Message:  fmt.Sprintf("unknown driver %q; ensure the binary registers it", db.Driver),
		})
	}
	if strings.TrimSpace(db.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".dsn",
			Message:  "dsn must not be empty",
		})
	}
	return issues
}

// validateColumn validates one column spec against the declared DVMs.
func validateColumn(col ColumnSpec, dvms map[string]DVMTable, path string) []Issue {
	var issues []Issue

	if strings.TrimSpace(col.Name) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".name",
			Message:  "column name must not be empty",
		})
	}
	if col.Const != nil && col.DVM != "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path,
			Message:  "const and dvm are mutually exclusive",
		})
	}
	if col.DVM != "" {
		if _, ok := dvms[col.DVM]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".dvm",
				Message:  fmt.Sprintf("dvm %q is not defined for this job", col.DVM),
			})
		}
		if col.DVMFrom == "" || col.DVMTo == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "dvm columns require both dvm_from and dvm_to",
			})
		}
	}
	return issues
}

// validateDVM checks the structural invariants of a DVM definition:
// every record covers the same domain set, and no (domain, value) lookup key
// appears in more than one record. A violation of the second invariant would
// make every lookup through that key ambiguous at run time, so it is
// rejected up front.
func validateDVM(d DVMTable, path string) []Issue {
	var issues []Issue

	if len(d.Records) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     path + ".records",
			Message:  "dvm has no records; every lookup will fail",
		})
		return issues
	}

	domains := make([]string, 0, len(d.Records[0]))
	for dom := range d.Records[0] {
		domains = append(domains, dom)
	}
	for i, rec := range d.Records {
		if len(rec) != len(domains) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("%s.records[%d]", path, i),
				Message:  "record domain set differs from the first record",
			})
			continue
		}
		for _, dom := range domains {
			if _, ok := rec[dom]; !ok {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     fmt.Sprintf("%s.records[%d]", path, i),
					Message:  fmt.Sprintf("record is missing domain %q", dom),
				})
			}
		}
	}

	for _, dom := range domains {
		counts := map[string]int{}
		for _, rec := range d.Records {
			if v, ok := rec[dom]; ok {
				counts[v]++
			}
		}
		for v, n := range counts {
			if n > 1 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".records",
					Message:  fmt.Sprintf("value %q appears %d times in domain %q; lookups through it would be ambiguous", v, n, dom),
				})
			}
		}
	}
	return issues
}
