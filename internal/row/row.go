// Package row defines the dynamically typed row record produced by a source
// cursor and consumed by per-row transfer handlers.
//
// A Row is an ordered column-name → Value mapping, immutable once produced.
// Cell values are represented as a tagged union (Value) rather than bare
// interface values so that handlers convert explicitly instead of guessing
// at driver types.
package row

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies the concrete type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindText
	KindBool
	KindTime
)

// String returns a short human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a single cell value: one of null, int64, float64, text, bool, or
// time.Time. The zero Value is null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
	t    time.Time
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Int wraps an int64.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float wraps a float64.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Text wraps a string.
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Bool wraps a bool.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Time wraps a time.Time.
func Time(v time.Time) Value { return Value{kind: KindTime, t: v} }

// FromAny converts a value scanned out of database/sql into a Value.
// Driver scan values are nil, int64, float64, bool, []byte, string, or
// time.Time; a handful of extra integer widths are accepted for convenience.
// Anything else is formatted as text.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case int64:
		return Int(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case float64:
		return Float(t)
	case float32:
		return Float(float64(t))
	case bool:
		return Bool(t)
	case string:
		return Text(t)
	case []byte:
		return Text(string(t))
	case time.Time:
		return Time(t)
	default:
		return Text(fmt.Sprint(t))
	}
}

// Kind returns the kind tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int64 returns the integer value; ok is false for any other kind.
func (v Value) Int64() (int64, bool) { return v.i, v.kind == KindInt }

// Float64 returns the float value; ok is false for any other kind.
func (v Value) Float64() (float64, bool) { return v.f, v.kind == KindFloat }

// Text returns the text value; ok is false for any other kind.
func (v Value) Text() (string, bool) { return v.s, v.kind == KindText }

// Bool returns the bool value; ok is false for any other kind.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Time returns the time value; ok is false for any other kind.
func (v Value) Time() (time.Time, bool) { return v.t, v.kind == KindTime }

// Any unwraps the value for positional binding: nil, int64, float64, string,
// bool, or time.Time.
func (v Value) Any() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	default:
		return nil
	}
}

// String renders the value for logs and DVM lookups. Null renders empty.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindText:
		return v.s
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	default:
		return ""
	}
}

// UnknownColumnError reports a Field lookup against a column the row does not
// have. It is a programming error in the per-row handler and is fatal to the
// transfer.
type UnknownColumnError struct {
	Column  string
	Columns []string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q (have: %s)", e.Column, strings.Join(e.Columns, ", "))
}

// Schema holds the ordered column names of a result set. One Schema is shared
// by every Row a cursor yields, so per-row cost stays at one values slice.
type Schema struct {
	cols  []string
	index map[string]int
}

// NewSchema builds a Schema from ordered column names.
func NewSchema(cols []string) *Schema {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}
	return &Schema{cols: cols, index: idx}
}

// Columns returns the ordered column names.
func (s *Schema) Columns() []string { return s.cols }

// Row binds one ordered values slice to the schema. len(values) must equal
// the column count.
func (s *Schema) Row(values []Value) (*Row, error) {
	if len(values) != len(s.cols) {
		return nil, fmt.Errorf("row has %d values for %d columns", len(values), len(s.cols))
	}
	return &Row{schema: s, values: values}, nil
}

// Row is a single result record. It is immutable once produced and lives only
// until the handler that received it returns; handlers that need to keep data
// must copy values out explicitly.
type Row struct {
	schema *Schema
	values []Value
}

// Columns returns the ordered column names of the row.
func (r *Row) Columns() []string { return r.schema.cols }

// Len returns the number of columns.
func (r *Row) Len() int { return len(r.values) }

// Field returns the value of the named column, or *UnknownColumnError if the
// row has no such column.
func (r *Row) Field(name string) (Value, error) {
	i, ok := r.schema.index[name]
	if !ok {
		return Value{}, &UnknownColumnError{Column: name, Columns: r.schema.cols}
	}
	return r.values[i], nil
}

// At returns the value at position i in column order.
func (r *Row) At(i int) Value { return r.values[i] }

// TextOf returns the named column as text; it fails on a missing column or a
// non-text, non-null kind. Null yields "".
func (r *Row) TextOf(name string) (string, error) {
	v, err := r.Field(name)
	if err != nil {
		return "", err
	}
	if v.IsNull() {
		return "", nil
	}
	s, ok := v.Text()
	if !ok {
		return "", fmt.Errorf("column %q: kind %s is not text", name, v.Kind())
	}
	return s, nil
}

// Int64Of returns the named column as int64; it fails on a missing column or
// a non-int kind.
func (r *Row) Int64Of(name string) (int64, error) {
	v, err := r.Field(name)
	if err != nil {
		return 0, err
	}
	n, ok := v.Int64()
	if !ok {
		return 0, fmt.Errorf("column %q: kind %s is not int", name, v.Kind())
	}
	return n, nil
}

// BoolOf returns the named column as bool; it fails on a missing column or a
// non-bool kind.
func (r *Row) BoolOf(name string) (bool, error) {
	v, err := r.Field(name)
	if err != nil {
		return false, err
	}
	b, ok := v.Bool()
	if !ok {
		return false, fmt.Errorf("column %q: kind %s is not bool", name, v.Kind())
	}
	return b, nil
}

// TimeOf returns the named column as time.Time; it fails on a missing column
// or a non-time kind.
func (r *Row) TimeOf(name string) (time.Time, error) {
	v, err := r.Field(name)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := v.Time()
	if !ok {
		return time.Time{}, fmt.Errorf("column %q: kind %s is not time", name, v.Kind())
	}
	return t, nil
}
