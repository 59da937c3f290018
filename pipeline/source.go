package pipeline

import (
	"context"
	"iter"
	"reflect"
	"unicode/utf8"

	"github.com/kbukum/lazyseq/errors"
)

// Iterable is implemented by any source that can hand out a fresh Cursor.
type Iterable[T any] interface {
	Cursor() Cursor[T]
}

// Normalize converts value into a Cursor without reading from it.
//
// Supported values, in dispatch order: a Cursor[T], an Iterable[T], a []T, an
// iter.Seq[T], and a string when T accepts a one-rune string or a rune.
// nil, including a nil pointer or func of a supported type, fails with
// "value is nil", anything else with "not iterable"; both are
// INVALID_ARGUMENT errors.
func Normalize[T any](value any) (Cursor[T], error) {
	if value == nil {
		return nil, errors.NilValue()
	}
	switch v := value.(type) {
	case Cursor[T]:
		if isNilRef(v) {
			return nil, errors.NilValue()
		}
		return fuse(v), nil
	case Iterable[T]:
		if isNilRef(v) {
			return nil, errors.NilValue()
		}
		return fuse(v.Cursor()), nil
	case []T:
		return &sliceCursor[T]{items: v}, nil
	case iter.Seq[T]:
		if v == nil {
			return nil, errors.NilValue()
		}
		return &seqCursor[T]{seq: v}, nil
	case func(yield func(T) bool):
		if v == nil {
			return nil, errors.NilValue()
		}
		return &seqCursor[T]{seq: v}, nil
	case string:
		if c, ok := runesAs[T](v); ok {
			return c, nil
		}
	}
	return nil, errors.NotIterable(value)
}

// isNilRef reports whether v wraps a nil pointer or a nil func, such as a nil
// *Set or a nil CursorFunc. A nil slice is an empty source, not nil.
func isNilRef(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// --- Built-in sources ---

// Slice is a slice that satisfies Iterable.
type Slice[T any] []T

// Cursor returns a cursor over the slice elements in index order.
func (s Slice[T]) Cursor() Cursor[T] { return &sliceCursor[T]{items: s} }

// FromSlice returns items as an Iterable.
func FromSlice[T any](items []T) Iterable[T] { return Slice[T](items) }

// FromSeq returns seq as an Iterable; each cursor runs seq from the start.
func FromSeq[T any](seq iter.Seq[T]) Iterable[T] { return seqSource[T](seq) }

type seqSource[T any] iter.Seq[T]

func (s seqSource[T]) Cursor() Cursor[T] { return &seqCursor[T]{seq: iter.Seq[T](s)} }

// Runes returns the runes of s as an Iterable.
func Runes(s string) Iterable[rune] { return runeSource(s) }

type runeSource string

func (s runeSource) Cursor() Cursor[rune] {
	return &runeCursor[rune]{s: string(s), convert: func(r rune) rune { return r }}
}

// Set is an insertion-ordered set. Cursors iterate in insertion order over
// the members present when the cursor was created.
type Set[T comparable] struct {
	items []T
	index map[T]struct{}
}

// NewSet returns a set holding items, duplicates dropped.
func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{index: make(map[T]struct{}, len(items))}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add inserts v and reports whether it was absent.
func (s *Set[T]) Add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]struct{})
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Has reports whether v is a member.
func (s *Set[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of members.
func (s *Set[T]) Len() int { return len(s.items) }

// Cursor returns a cursor over the members in insertion order.
func (s *Set[T]) Cursor() Cursor[T] {
	return &sliceCursor[T]{items: s.items[:len(s.items):len(s.items)]}
}

// --- Cursor implementations ---

type sliceCursor[T any] struct {
	items []T
	index int
}

func (c *sliceCursor[T]) Next(_ context.Context) (T, bool, error) {
	if c.index >= len(c.items) {
		var zero T
		return zero, false, nil
	}
	val := c.items[c.index]
	c.index++
	return val, true, nil
}

func (c *sliceCursor[T]) Close() error { return nil }

// seqCursor pulls from an iter.Seq. The sequence is only started on the first
// Next, and Close stops it early.
type seqCursor[T any] struct {
	seq  iter.Seq[T]
	next func() (T, bool)
	stop func()
	done bool
}

func (c *seqCursor[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	if c.done {
		return zero, false, nil
	}
	if c.next == nil {
		c.next, c.stop = iter.Pull(c.seq)
	}
	val, ok := c.next()
	if !ok {
		c.finish()
		return zero, false, nil
	}
	return val, true, nil
}

func (c *seqCursor[T]) Close() error {
	c.finish()
	return nil
}

func (c *seqCursor[T]) finish() {
	c.done = true
	if c.stop != nil {
		c.stop()
	}
}

type runeCursor[T any] struct {
	s       string
	offset  int
	convert func(rune) T
}

func (c *runeCursor[T]) Next(_ context.Context) (T, bool, error) {
	if c.offset >= len(c.s) {
		var zero T
		return zero, false, nil
	}
	r, size := utf8.DecodeRuneInString(c.s[c.offset:])
	c.offset += size
	return c.convert(r), true, nil
}

func (c *runeCursor[T]) Close() error { return nil }

// runesAs yields a string's characters as T. One-rune strings are preferred so
// that a Cursor[any] sees "a", not 'a'.
func runesAs[T any](s string) (Cursor[T], bool) {
	if _, ok := any("").(T); ok {
		return &runeCursor[T]{s: s, convert: func(r rune) T { return any(string(r)).(T) }}, true
	}
	if _, ok := any(rune(0)).(T); ok {
		return &runeCursor[T]{s: s, convert: func(r rune) T { return any(r).(T) }}, true
	}
	return nil, false
}

// fusedCursor keeps a foreign cursor finished once it has reported finished.
type fusedCursor[T any] struct {
	source Cursor[T]
	done   bool
}

func fuse[T any](c Cursor[T]) Cursor[T] {
	if f, ok := c.(*fusedCursor[T]); ok {
		return f
	}
	return &fusedCursor[T]{source: c}
}

func (c *fusedCursor[T]) Next(ctx context.Context) (T, bool, error) {
	if c.done {
		var zero T
		return zero, false, nil
	}
	val, ok, err := c.source.Next(ctx)
	if err != nil || !ok {
		c.done = true
		var zero T
		return zero, false, err
	}
	return val, true, nil
}

func (c *fusedCursor[T]) Close() error { return c.source.Close() }
