package models

import "encoding/json"

// Optional is a patch field for a value that may be cleared. A key that is
// absent leaves Set false; a JSON null sets Set with a nil Value.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns an Optional that clears the field
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// Cleared reports whether the patch removes the value
func (o Optional[T]) Cleared() bool {
	return o.Set && o.Value == nil
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
