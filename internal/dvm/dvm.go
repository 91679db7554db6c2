// Package dvm implements domain-value maps: static lookup tables that
// translate a value's representation in one system's domain into its
// representation in another's.
//
// A Table is loaded once per job and is read-only afterwards, so it is safe
// to share across concurrently running transfer jobs.
package dvm

import "fmt"

// Record maps domain names to values. Every record in one table covers the
// same set of domain names.
type Record map[string]string

// Table is an ordered sequence of mapping records.
type Table struct {
	Name    string
	Records []Record
}

// NoMatchError reports a lookup value with no matching record. It is a
// data-quality error: the source carries a value the map does not cover.
type NoMatchError struct {
	Table  string
	Domain string
	Value  string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("dvm %q: no record with %s=%q", e.Table, e.Domain, e.Value)
}

// AmbiguousMatchError reports a lookup value matched by more than one record,
// which means the table violates the uniqueness invariant for that domain.
type AmbiguousMatchError struct {
	Table  string
	Domain string
	Value  string
	Count  int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("dvm %q: %d records with %s=%q, want exactly one", e.Table, e.Count, e.Domain, e.Value)
}

// Resolve translates value from fromDomain into toDomain.
//
// Exactly one record whose fromDomain field equals value must exist: zero
// matches yield *NoMatchError, two or more yield *AmbiguousMatchError. The
// lookup is a pure read and may run concurrently with other lookups.
func (t *Table) Resolve(fromDomain, toDomain, value string) (string, error) {
	found := -1
	count := 0
	for i, rec := range t.Records {
		if v, ok := rec[fromDomain]; ok && v == value {
			count++
			if found < 0 {
				found = i
			}
		}
	}
	switch {
	case count == 0:
		return "", &NoMatchError{Table: t.Name, Domain: fromDomain, Value: value}
	case count > 1:
		return "", &AmbiguousMatchError{Table: t.Name, Domain: fromDomain, Value: value, Count: count}
	}
	out, ok := t.Records[found][toDomain]
	if !ok {
		return "", fmt.Errorf("dvm %q: record has no domain %q", t.Name, toDomain)
	}
	return out, nil
}
