package pipeline

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/logger"
)

// Cursor provides pull-based sequential access to a stream of values.
type Cursor[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when finished and
	// keeps doing so on every later call.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the cursor chain.
	Close() error
}

// CursorFunc adapts a function into a Cursor with a no-op Close.
type CursorFunc[T any] func(ctx context.Context) (T, bool, error)

func (f CursorFunc[T]) Next(ctx context.Context) (T, bool, error) { return f(ctx) }

func (f CursorFunc[T]) Close() error { return nil }

// Transform wraps an upstream cursor in a new cursor. Applying a transform
// must not pull from upstream.
type Transform[I, O any] func(Cursor[I]) Cursor[O]

// Chain folds transforms left to right into one. An empty chain is the identity.
func Chain[T any](transforms ...Transform[T, T]) Transform[T, T] {
	stages := slices.Clone(transforms)
	return func(c Cursor[T]) Cursor[T] {
		for _, t := range stages {
			c = t(c)
		}
		return c
	}
}

// Compose applies first, then second.
func Compose[A, B, C any](first Transform[A, B], second Transform[B, C]) Transform[A, C] {
	return func(c Cursor[A]) Cursor[C] {
		return second(first(c))
	}
}

// RunInfo describes one invocation of a Pipeline.
type RunInfo struct {
	ID      string
	Stages  int
	Started time.Time
}

// Observer is notified around every Pipeline run.
type Observer interface {
	RunStarted(ctx context.Context, info RunInfo) context.Context
	RunFinished(ctx context.Context, info RunInfo, yielded int, err error)
}

// Pipeline is an immutable transform chain that can be run any number of times.
// Each run builds a fresh cursor chain, so runs never share state.
type Pipeline[I, O any] struct {
	transform Transform[I, O]
	stages    int
	log       *logger.Logger
	observer  Observer
}

// New wraps a single transform, typically built with Compose. t must not be nil.
func New[I, O any](t Transform[I, O]) *Pipeline[I, O] {
	return &Pipeline[I, O]{transform: t, stages: 1}
}

// Pipe builds a pipeline from one or more same-typed transforms, applied left
// to right. It fails with INVALID_ARGUMENT when no transform is given.
func Pipe[T any](transforms ...Transform[T, T]) (*Pipeline[T, T], error) {
	if len(transforms) == 0 {
		return nil, errors.NoTransforms()
	}
	return &Pipeline[T, T]{transform: Chain(transforms...), stages: len(transforms)}, nil
}

// WithLogger returns a copy of p that logs each run at debug level.
func (p *Pipeline[I, O]) WithLogger(l *logger.Logger) *Pipeline[I, O] {
	cp := *p
	cp.log = l
	return &cp
}

// WithObserver returns a copy of p that reports runs to o.
func (p *Pipeline[I, O]) WithObserver(o Observer) *Pipeline[I, O] {
	cp := *p
	cp.observer = o
	return &cp
}

// Stages returns the number of transforms the pipeline was built from.
func (p *Pipeline[I, O]) Stages() int { return p.stages }

// Func returns Run as a plain function value.
func (p *Pipeline[I, O]) Func() func(context.Context, any) ([]O, error) {
	return p.Run
}

// Run normalizes input, threads it through the transforms and drains the
// result. Errors from caller-supplied functions are returned unmodified and
// no partial result is returned.
func (p *Pipeline[I, O]) Run(ctx context.Context, input any) ([]O, error) {
	if p.log == nil && p.observer == nil {
		return p.run(ctx, input)
	}

	info := RunInfo{ID: uuid.NewString(), Stages: p.stages, Started: time.Now()}
	if p.observer != nil {
		ctx = p.observer.RunStarted(ctx, info)
	}
	out, err := p.run(ctx, input)
	if p.observer != nil {
		p.observer.RunFinished(ctx, info, len(out), err)
	}
	if p.log != nil {
		fields := logger.Fields(
			logger.FieldRunID, info.ID,
			logger.FieldStages, info.Stages,
			logger.FieldYielded, len(out),
		)
		fields = logger.MergeWithDuration(fields, time.Since(info.Started))
		if err != nil {
			p.log.Debug("pipeline run failed", logger.MergeWithError(fields, err))
		} else {
			p.log.Debug("pipeline run finished", fields)
		}
	}
	return out, err
}

func (p *Pipeline[I, O]) run(ctx context.Context, input any) ([]O, error) {
	source, err := Normalize[I](input)
	if err != nil {
		return nil, err
	}
	return Drain(ctx, p.transform(source))
}

// Drain pulls c until it is finished and returns the values in order, then
// closes c. The result is never nil on success.
func Drain[T any](ctx context.Context, c Cursor[T]) ([]T, error) {
	defer func() { _ = c.Close() }()
	result := make([]T, 0)
	for {
		val, ok, err := c.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, val)
	}
}
