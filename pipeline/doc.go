// Package pipeline provides composable, lazy, pull-based sequence transforms.
//
// Every stage is a Cursor: a single-pass accessor whose Next either yields the
// next element or reports that the sequence is finished. A Transform wraps one
// cursor in another without pulling anything; elements only move when the
// outermost cursor is pulled, one element at a time, upstream through the chain.
//
// # Operators
//
//   - Map: transform each value
//   - Filter: keep values matching a predicate
//   - Take: stop after n values, never pulling more than n upstream
//   - Drop / Tail: skip the first n (or one) values, lazily
//   - Append / Prepend: add one value after or before the sequence
//   - FlatMap: expand each value into an inner sequence, depth one
//   - Tap: side effect per value, value passes through
//
// # Sources
//
// Normalize turns a value into a Cursor: slices, Set, strings, iter.Seq,
// existing cursors and anything implementing Iterable. nil and unsupported
// values fail with an INVALID_ARGUMENT error.
//
// # Usage
//
//	p, err := pipeline.Pipe(
//	    pipeline.Map(func(_ context.Context, n int) (int, error) { return n + 1, nil }),
//	    pipeline.Take[int](2),
//	)
//	if err != nil {
//	    return err
//	}
//	out, err := p.Run(ctx, []int{1, 2, 3}) // [2 3]
//
// Type-changing chains are built with Compose and run through New:
//
//	toStrings := pipeline.Compose(
//	    pipeline.Filter(func(n int) bool { return n%2 == 0 }),
//	    pipeline.Map(func(_ context.Context, n int) (string, error) { return strconv.Itoa(n), nil }),
//	)
//	out, err := pipeline.New(toStrings).Run(ctx, []int{1, 2, 3, 4}) // ["2" "4"]
package pipeline
