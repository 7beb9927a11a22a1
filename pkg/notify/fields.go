// Package notify composes optional notification extensions into a single JSON
// object whose field count is fixed before the first field is written.
//
// Every optional part implements Fields: FieldCount reports how many named
// fields it will contribute, WriteFields writes exactly that many. A parent
// sums the counts of its parts with its own fixed fields, opens an object
// declaring the total and then lets every part write in a fixed order.
// ObjectWriter rejects any part that writes more or fewer fields than it
// promised.
package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrFieldOverflow  = errors.New("more fields written than declared")
	ErrFieldUnderflow = errors.New("fewer fields written than declared")
	ErrCountMismatch  = errors.New("written fields do not match field count")
	ErrInvalidUTF8    = errors.New("text is not valid utf-8")
)

// Fields is an optional sub-document. A zero count means nothing to say and
// WriteFields must then write nothing.
type Fields interface {
	FieldCount() int
	WriteFields(w *ObjectWriter) error
}

// Count returns the field count of f, zero for nil.
func Count(f Fields) int {
	if f == nil {
		return 0
	}
	return f.FieldCount()
}

// Write lets f write its fields into w and checks it kept its promise.
func Write(w *ObjectWriter, f Fields) error {
	if f == nil {
		return nil
	}

	want := f.FieldCount()
	before := w.written
	if err := f.WriteFields(w); err != nil {
		return err
	}
	if got := w.written - before; got != want {
		return fmt.Errorf("%w: %T promised %d, wrote %d", ErrCountMismatch, f, want, got)
	}
	return nil
}

// Encode serializes f as a standalone JSON object. Nothing is returned unless
// the whole document was written.
func Encode(f Fields) ([]byte, error) {
	var buf bytes.Buffer

	w := newObjectWriter(&buf, Count(f))
	if err := Write(w, f); err != nil {
		return nil, err
	}
	if err := w.close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ObjectWriter writes the fields of one JSON object that declared its field
// count up front.
type ObjectWriter struct {
	buf      *bytes.Buffer
	declared int
	written  int
}

func newObjectWriter(buf *bytes.Buffer, declared int) *ObjectWriter {
	buf.WriteByte('{')
	return &ObjectWriter{buf: buf, declared: declared}
}

// Declared returns the number of fields the object was opened with.
func (w *ObjectWriter) Declared() int { return w.declared }

// Written returns the number of fields written so far.
func (w *ObjectWriter) Written() int { return w.written }

// Field writes one named field holding the JSON encoding of value.
func (w *ObjectWriter) Field(name string, value any) error {
	if err := w.reserve(name); err != nil {
		return err
	}

	if err := checkText(value); err != nil {
		return fmt.Errorf("failed encode field %q: %w", name, err)
	}
	raw, err := marshal(value)
	if err != nil {
		return fmt.Errorf("failed encode field %q: %w", name, err)
	}

	w.key(name)
	w.buf.Write(raw)
	w.written++
	return nil
}

// Object writes one named field holding a nested object of count fields
// written by fn.
func (w *ObjectWriter) Object(name string, count int, fn func(*ObjectWriter) error) error {
	if err := w.reserve(name); err != nil {
		return err
	}

	w.key(name)
	child := newObjectWriter(w.buf, count)
	if err := fn(child); err != nil {
		return err
	}
	if err := child.close(); err != nil {
		return fmt.Errorf("object %q: %w", name, err)
	}
	w.written++
	return nil
}

// Nested writes f as a named object field. The object is written even when f
// has nothing to say.
func (w *ObjectWriter) Nested(name string, f Fields) error {
	return w.Object(name, Count(f), func(child *ObjectWriter) error {
		return Write(child, f)
	})
}

func (w *ObjectWriter) reserve(name string) error {
	if w.written >= w.declared {
		return fmt.Errorf("%w: field %q exceeds %d", ErrFieldOverflow, name, w.declared)
	}
	return nil
}

func (w *ObjectWriter) key(name string) {
	if w.written > 0 {
		w.buf.WriteByte(',')
	}
	// a string always marshals
	raw, _ := marshal(name)
	w.buf.Write(raw)
	w.buf.WriteByte(':')
}

func (w *ObjectWriter) close() error {
	if w.written != w.declared {
		return fmt.Errorf("%w: declared %d, wrote %d", ErrFieldUnderflow, w.declared, w.written)
	}
	w.buf.WriteByte('}')
	return nil
}

// checkText rejects text that encoding/json would silently coerce to U+FFFD.
func checkText(v any) error {
	switch v := v.(type) {
	case string:
		if !utf8.ValidString(v) {
			return ErrInvalidUTF8
		}
	case []string:
		for _, s := range v {
			if !utf8.ValidString(s) {
				return ErrInvalidUTF8
			}
		}
	}
	return nil
}

// marshal encodes v without HTML escaping, so URLs reach the gateway verbatim.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// KV is a single named field.
type KV struct {
	Name  string
	Value any
}

func (kv KV) FieldCount() int { return 1 }

func (kv KV) WriteFields(w *ObjectWriter) error {
	return w.Field(kv.Name, kv.Value)
}

// Join concatenates parts into one Fields, written in order. Nil parts are
// skipped.
func Join(parts ...Fields) Fields {
	out := make(joined, 0, len(parts))
	for _, p := range parts {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

type joined []Fields

func (j joined) FieldCount() int {
	n := 0
	for _, p := range j {
		n += p.FieldCount()
	}
	return n
}

func (j joined) WriteFields(w *ObjectWriter) error {
	for _, p := range j {
		if err := Write(w, p); err != nil {
			return err
		}
	}
	return nil
}
