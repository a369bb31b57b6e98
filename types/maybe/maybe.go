// Package maybe provides a minimal option type.
package maybe

// Maybe holds a value that may be absent. The zero value is absent.
type Maybe[T any] struct {
	value T
	valid bool
}

func Some[T any](value T) Maybe[T] {
	return Maybe[T]{value: value, valid: true}
}

func None[T any]() Maybe[T] {
	return Maybe[T]{}
}

// From wraps a comma-ok pair, so lookups that may come up empty can be
// carried as one value.
func From[T any](value T, ok bool) Maybe[T] {
	return Maybe[T]{value: value, valid: ok}
}

func (m Maybe[T]) IsValid() bool {
	return m.valid
}

func (m Maybe[T]) Value() T {
	return m.value
}
