package dvm

import (
	"errors"
	"testing"
)

func yesNo() *Table {
	return &Table{
		Name: "yes_no",
		Records: []Record{
			{"a": "Y", "b": "J"},
			{"a": "N", "b": "N"},
		},
	}
}

func TestResolveUniqueMatch(t *testing.T) {
	t.Parallel()

	got, err := yesNo().Resolve("a", "b", "Y")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "J" {
		t.Fatalf("Resolve = %q; want J", got)
	}

	// Reverse direction works over the same table.
	got, err = yesNo().Resolve("b", "a", "N")
	if err != nil {
		t.Fatalf("Resolve reverse: %v", err)
	}
	if got != "N" {
		t.Fatalf("Resolve reverse = %q; want N", got)
	}
}

func TestResolveNoMatch(t *testing.T) {
	t.Parallel()

	_, err := yesNo().Resolve("a", "b", "X")
	var nme *NoMatchError
	if !errors.As(err, &nme) {
		t.Fatalf("err = %v; want *NoMatchError", err)
	}
	if nme.Table != "yes_no" || nme.Domain != "a" || nme.Value != "X" {
		t.Fatalf("NoMatchError = %+v", nme)
	}
}

func TestResolveAmbiguousMatch(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Name: "dup",
		Records: []Record{
			{"a": "Y", "b": "J"},
			{"a": "Y", "b": "K"},
		},
	}
	_, err := tbl.Resolve("a", "b", "Y")
	var ame *AmbiguousMatchError
	if !errors.As(err, &ame) {
		t.Fatalf("err = %v; want *AmbiguousMatchError", err)
	}
	if ame.Count != 2 {
		t.Fatalf("AmbiguousMatchError.Count = %d; want 2", ame.Count)
	}
}

func TestResolveAmbiguousManyMatches(t *testing.T) {
	t.Parallel()

	// Three matches must still be ambiguous, not just exactly two.
	tbl := &Table{
		Name: "trip",
		Records: []Record{
			{"a": "Y", "b": "1"},
			{"a": "Y", "b": "2"},
			{"a": "Y", "b": "3"},
		},
	}
	_, err := tbl.Resolve("a", "b", "Y")
	var ame *AmbiguousMatchError
	if !errors.As(err, &ame) {
		t.Fatalf("err = %v; want *AmbiguousMatchError", err)
	}
	if ame.Count != 3 {
		t.Fatalf("Count = %d; want 3", ame.Count)
	}
}

func TestResolveUnknownToDomain(t *testing.T) {
	t.Parallel()

	if _, err := yesNo().Resolve("a", "zz", "Y"); err == nil {
		t.Fatal("expected error for unknown target domain")
	}
}

func TestResolveMissingFromDomainIsNoMatch(t *testing.T) {
	t.Parallel()

	// A record without the lookup domain never matches, even against "".
	tbl := &Table{
		Name:    "sparse",
		Records: []Record{{"b": "only"}},
	}
	_, err := tbl.Resolve("a", "b", "")
	var nme *NoMatchError
	if !errors.As(err, &nme) {
		t.Fatalf("err = %v; want *NoMatchError", err)
	}
}
