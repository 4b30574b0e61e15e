package model

import "encoding/json"

// Nullable distinguishes three states of a JSON field: absent (Set is
// false), explicit null (Set and Null) and a value.
type Nullable[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Value[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: v}
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true, Null: true}
}

// Ptr returns nil for a null field and a pointer to the value otherwise.
func (n Nullable[T]) Ptr() *T {
	if !n.Set || n.Null {
		return nil
	}
	v := n.Value
	return &v
}

func (n Nullable[T]) IsZero() bool {
	return !n.Set
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Set || n.Null {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Null = true
		var zero T
		n.Value = zero
		return nil
	}
	n.Null = false
	return json.Unmarshal(data, &n.Value)
}
