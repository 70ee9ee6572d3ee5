package models

import (
	"bytes"
	"encoding/json"
)

type fieldState uint8

const (
	fieldAbsent fieldState = iota
	fieldNull
	fieldSet
)

// Field is a value in a partial update. The zero value is absent. A field
// can also be explicitly null or set to a value, and the three states are
// kept apart across JSON encoding.
//
// Use it with the omitzero struct tag so absent fields are not written.
type Field[T any] struct {
	value T
	state fieldState
}

func Set[T any](v T) Field[T] {
	return Field[T]{value: v, state: fieldSet}
}

func Null[T any]() Field[T] {
	return Field[T]{state: fieldNull}
}

// SetOrNull maps a nil pointer to an explicit null.
func SetOrNull[T any](v *T) Field[T] {
	if v == nil {
		return Null[T]()
	}
	return Set(*v)
}

// IsZero reports whether the field is absent. encoding/json uses it for omitzero.
func (f Field[T]) IsZero() bool { return f.state == fieldAbsent }
func (f Field[T]) IsNull() bool { return f.state == fieldNull }
func (f Field[T]) IsSet() bool  { return f.state == fieldSet }

func (f Field[T]) Value() T { return f.value }

func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == fieldSet
}

// Ptr returns nil for an absent or null field.
func (f Field[T]) Ptr() *T {
	if f.state != fieldSet {
		return nil
	}
	v := f.value
	return &v
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != fieldSet {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// UnmarshalJSON only runs when the key is present, so the field becomes
// either null or set here. Absent keys leave it untouched.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.value = zero
		f.state = fieldNull
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.value = v
	f.state = fieldSet
	return nil
}
