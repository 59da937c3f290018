package main

import (
	"bufio"
	"context"
	"io"

	"github.com/kbukum/lazyseq/pipeline"
)

const maxLineSize = 1 << 20

// lineSource yields the lines of r without their line endings. r is read
// on demand, so a pipeline that takes a few lines reads little of it. The
// caller owns r.
type lineSource struct {
	r io.Reader
}

var _ pipeline.Iterable[string] = lineSource{}

func (s lineSource) Cursor() pipeline.Cursor[string] {
	sc := bufio.NewScanner(s.r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineCursor{scanner: sc}
}

type lineCursor struct {
	scanner *bufio.Scanner
	done    bool
}

func (c *lineCursor) Next(ctx context.Context) (string, bool, error) {
	if c.done {
		return "", false, nil
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if c.scanner.Scan() {
		return c.scanner.Text(), true, nil
	}
	c.done = true
	return "", false, c.scanner.Err()
}

func (c *lineCursor) Close() error {
	c.done = true
	return nil
}
