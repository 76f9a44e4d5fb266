package menu

// Prop holds either a constant value or a function evaluated on every render.
// The zero value is the constant zero value of T.
type Prop[T comparable] struct {
	value   T
	compute func() T
}

// Constant wraps a fixed value.
func Constant[T comparable](v T) Prop[T] {
	return Prop[T]{value: v}
}

// Computed wraps a function that is invoked each time the value is needed.
func Computed[T comparable](fn func() T) Prop[T] {
	return Prop[T]{compute: fn}
}

// Get returns the current value, invoking the function for computed props.
func (p Prop[T]) Get() T {
	if p.compute != nil {
		return p.compute()
	}
	return p.value
}

// IsComputed reports whether the prop is function-valued.
func (p Prop[T]) IsComputed() bool {
	return p.compute != nil
}
