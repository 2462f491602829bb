package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNullValue is returned when a partial update sends null for a field that
// cannot be cleared.
var ErrNullValue = errors.New("null is not allowed for this field")

// MaybeSet carries one field of a partial update. An absent JSON key leaves
// Set false. A present key sets it.
//
// Optional columns use a pointer T, so {"comments": null} clears the value
// while omitting "comments" leaves it alone. For any other T null is rejected.
type MaybeSet[T any] struct {
	Set   bool
	Value T
}

func Set[T any](v T) MaybeSet[T] {
	return MaybeSet[T]{Set: true, Value: v}
}

func NoChange[T any]() MaybeSet[T] {
	return MaybeSet[T]{}
}

func (m MaybeSet[T]) Get() (T, bool) {
	return m.Value, m.Set
}

// Apply copies the value into dst when set.
func (m MaybeSet[T]) Apply(dst *T) {
	if m.Set {
		*dst = m.Value
	}
}

func (m MaybeSet[T]) IsZero() bool {
	return !m.Set
}

func (m MaybeSet[T]) MarshalJSON() ([]byte, error) {
	if !m.Set {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *MaybeSet[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) && !nullable[T]() {
		return ErrNullValue
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.Set = true
	m.Value = v
	return nil
}

func nullable[T any]() bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	}
	return false
}

// ValidationValue returns the value the validator should see. Unset fields
// and explicit nulls come back as typed nil pointers so omitnil skips them,
// while a set zero value is still checked.
func (m MaybeSet[T]) ValidationValue() any {
	if !m.Set {
		return (*T)(nil)
	}
	rv := reflect.ValueOf(m.Value)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return m.Value
}

// Maybe is an optional value; nil is absent.
type Maybe[T any] = *T

type (
	MaybeString   = MaybeSet[Maybe[string]]
	MaybeF64      = MaybeSet[Maybe[float64]]
	MaybeI32      = MaybeSet[Maybe[int]]
	MaybeDecimal  = MaybeSet[Maybe[decimal.Decimal]]
	MaybeDateTime = MaybeSet[Maybe[time.Time]]
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
