package pipeline

import (
	"context"
)

// Map transforms each value using fn. fn runs once per upstream value, in pull order.
func Map[I, O any](fn func(context.Context, I) (O, error)) Transform[I, O] {
	return func(source Cursor[I]) Cursor[O] {
		return &mapCursor[I, O]{source: source, fn: fn}
	}
}

// Filter keeps only values that satisfy the predicate. The predicate runs
// once for every upstream value examined, including discarded ones.
func Filter[T any](fn func(T) bool) Transform[T, T] {
	return func(source Cursor[T]) Cursor[T] {
		return &filterCursor[T]{source: source, fn: fn}
	}
}

// Take yields at most n values. It never pulls more than n values upstream,
// and for n <= 0 it never pulls at all.
func Take[T any](n int) Transform[T, T] {
	return func(source Cursor[T]) Cursor[T] {
		return &takeCursor[T]{source: source, remaining: max(n, 0)}
	}
}

// Drop discards the first n values. The discards happen on the first Next,
// not when the transform is applied. A shorter upstream is not an error.
func Drop[T any](n int) Transform[T, T] {
	return func(source Cursor[T]) Cursor[T] {
		return &dropCursor[T]{source: source, pending: max(n, 0)}
	}
}

// Tail drops the first value.
func Tail[T any]() Transform[T, T] {
	return Drop[T](1)
}

// Append yields every upstream value, then v once.
func Append[T any](v T) Transform[T, T] {
	return func(source Cursor[T]) Cursor[T] {
		return &appendCursor[T]{source: source, value: v}
	}
}

// Prepend yields v before pulling upstream, then every upstream value.
func Prepend[T any](v T) Transform[T, T] {
	return func(source Cursor[T]) Cursor[T] {
		return &prependCursor[T]{source: source, value: v}
	}
}

// FlatMap expands each value into the sequence returned by fn, normalized
// with Normalize. Each inner sequence is drained before the next upstream pull.
// A nil or non-iterable result fails the pull with INVALID_ARGUMENT.
func FlatMap[I, O any](fn func(context.Context, I) (any, error)) Transform[I, O] {
	return func(source Cursor[I]) Cursor[O] {
		return &flatMapCursor[I, O]{source: source, fn: fn}
	}
}

// Tap calls fn as a side-effect for each value, then passes the value through unchanged.
func Tap[T any](fn func(context.Context, T) error) Transform[T, T] {
	return func(source Cursor[T]) Cursor[T] {
		return &tapCursor[T]{source: source, fn: fn}
	}
}

// --- Cursor implementations ---

type mapCursor[I, O any] struct {
	source Cursor[I]
	fn     func(context.Context, I) (O, error)
}

func (c *mapCursor[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	val, ok, err := c.source.Next(ctx)
	if err != nil || !ok {
		var zero O
		return zero, false, err
	}
	out, err := c.fn(ctx, val)
	if err != nil {
		var zero O
		return zero, false, err
	}
	return out, true, nil
}

func (c *mapCursor[I, O]) Close() error { return c.source.Close() }

type filterCursor[T any] struct {
	source Cursor[T]
	fn     func(T) bool
}

func (c *filterCursor[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for {
		val, ok, err := c.source.Next(ctx)
		if err != nil || !ok {
			var zero T
			return zero, false, err
		}
		if c.fn(val) {
			return val, true, nil
		}
	}
}

func (c *filterCursor[T]) Close() error { return c.source.Close() }

type takeCursor[T any] struct {
	source    Cursor[T]
	remaining int
}

func (c *takeCursor[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	if c.remaining <= 0 {
		return result, false, nil
	}
	val, ok, err := c.source.Next(ctx)
	if err != nil {
		return result, false, err
	}
	if !ok {
		c.remaining = 0
		return result, false, nil
	}
	c.remaining--
	return val, true, nil
}

func (c *takeCursor[T]) Close() error { return c.source.Close() }

type dropCursor[T any] struct {
	source  Cursor[T]
	pending int
}

func (c *dropCursor[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for c.pending > 0 {
		c.pending--
		_, ok, err := c.source.Next(ctx)
		if err != nil {
			return result, false, err
		}
		if !ok {
			c.pending = 0
			return result, false, nil
		}
	}
	return c.source.Next(ctx)
}

func (c *dropCursor[T]) Close() error { return c.source.Close() }

type appendCursor[T any] struct {
	source  Cursor[T]
	value   T
	emitted bool
}

func (c *appendCursor[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	if c.emitted {
		return result, false, nil
	}
	val, ok, err := c.source.Next(ctx)
	if err != nil {
		return result, false, err
	}
	if ok {
		return val, true, nil
	}
	c.emitted = true
	return c.value, true, nil
}

func (c *appendCursor[T]) Close() error { return c.source.Close() }

type prependCursor[T any] struct {
	source  Cursor[T]
	value   T
	emitted bool
}

func (c *prependCursor[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	if !c.emitted {
		c.emitted = true
		return c.value, true, nil
	}
	return c.source.Next(ctx)
}

func (c *prependCursor[T]) Close() error { return c.source.Close() }

type flatMapCursor[I, O any] struct {
	source  Cursor[I]
	fn      func(context.Context, I) (any, error)
	current Cursor[O]
	done    bool
}

func (c *flatMapCursor[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	for {
		if c.current != nil {
			val, ok, err := c.current.Next(ctx)
			if err != nil {
				return result, false, err
			}
			if ok {
				return val, true, nil
			}
			_ = c.current.Close()
			c.current = nil
		}
		if c.done {
			return result, false, nil
		}
		in, ok, err := c.source.Next(ctx)
		if err != nil {
			return result, false, err
		}
		if !ok {
			c.done = true
			return result, false, nil
		}
		coll, err := c.fn(ctx, in)
		if err != nil {
			return result, false, err
		}
		inner, err := Normalize[O](coll)
		if err != nil {
			return result, false, err
		}
		c.current = inner
	}
}

func (c *flatMapCursor[I, O]) Close() error {
	if c.current != nil {
		_ = c.current.Close()
	}
	return c.source.Close()
}

type tapCursor[T any] struct {
	source Cursor[T]
	fn     func(context.Context, T) error
}

func (c *tapCursor[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	val, ok, err := c.source.Next(ctx)
	if err != nil || !ok {
		return result, false, err
	}
	if err := c.fn(ctx, val); err != nil {
		return result, false, err
	}
	return val, true, nil
}

func (c *tapCursor[T]) Close() error { return c.source.Close() }
