package resolver

// result carries one fallible stage outcome through the card-resolution
// pipeline. Stages compose with orElse, which always unwraps to a value, so
// "never fail past per-card resolution" is enforced by the types rather than
// by convention.
type result[T any] struct {
	value T
	err   error
}

// attempt runs one stage and captures its outcome.
func attempt[T any](fn func() (T, error)) result[T] {
	v, err := fn()
	return result[T]{value: v, err: err}
}

// ok reports whether the stage succeeded.
func (r result[T]) ok() bool {
	return r.err == nil
}

// orElse returns the stage value, or derives the fallback from the error.
func (r result[T]) orElse(fallback func(error) T) T {
	if r.err != nil {
		return fallback(r.err)
	}
	return r.value
}
