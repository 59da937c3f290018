package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	apperrors "github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/logger"
)

func double(_ context.Context, n int) (int, error) { return n * 2, nil }

func TestPipe_RequiresTransforms(t *testing.T) {
	p, err := Pipe[int]()
	if p != nil {
		t.Error("expected nil pipeline")
	}
	if !apperrors.IsInvalidArgument(err) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
	if !strings.Contains(err.Error(), "You must pass at least one transform") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestRun_InvalidInput(t *testing.T) {
	p, err := Pipe(Take[int](1))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name  string
		input any
		msg   string
	}{
		{"nil", nil, "value is nil"},
		{"number", 5, "not iterable"},
		{"wrong slice type", []string{"a"}, "not iterable"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.Run(context.Background(), tc.input)
			if got != nil {
				t.Errorf("expected no result, got %v", got)
			}
			appErr, ok := apperrors.AsAppError(err)
			if !ok || appErr.Code != apperrors.ErrCodeInvalidArgument {
				t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
			}
			if appErr.Message != tc.msg {
				t.Errorf("expected %q, got %q", tc.msg, appErr.Message)
			}
		})
	}
}

func TestRun_Scenarios(t *testing.T) {
	inc := Map(func(_ context.Context, n int) (int, error) { return n + 1, nil })
	odd := Filter(func(n int) bool { return n%2 == 1 })

	tests := []struct {
		name       string
		transforms []Transform[int, int]
		input      []int
		want       []int
	}{
		{"map then take", []Transform[int, int]{inc, Take[int](2)}, []int{1, 2, 3}, []int{2, 3}},
		{"filter", []Transform[int, int]{odd}, []int{1, 2, 3}, []int{1, 3}},
		{"take zero", []Transform[int, int]{Take[int](0)}, []int{1, 2}, []int{}},
		{"empty input", []Transform[int, int]{inc}, []int{}, []int{}},
		{"drop then append", []Transform[int, int]{Drop[int](1), Append(9)}, []int{1, 2}, []int{2, 9}},
		{"prepend then tail", []Transform[int, int]{Prepend(0), Tail[int]()}, []int{1, 2}, []int{1, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Pipe(tc.transforms...)
			if err != nil {
				t.Fatal(err)
			}
			got, err := p.Run(context.Background(), tc.input)
			if err != nil {
				t.Fatal(err)
			}
			if got == nil || !slices.Equal(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRun_TakeZeroNeverPulls(t *testing.T) {
	p, _ := Pipe(Take[int](0))
	src := naturals()
	got, err := p.Run(context.Background(), Cursor[int](src))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 || src.pulls != 0 {
		t.Errorf("got %v after %d pulls", got, src.pulls)
	}
}

func TestRun_FlatMapMixed(t *testing.T) {
	p, _ := Pipe(FlatMap[any, any](func(_ context.Context, x any) (any, error) {
		return []any{x, "foo"}, nil
	}))
	got, err := p.Run(context.Background(), []any{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []any{1, "foo", 2, "foo"}) {
		t.Errorf("got %v", got)
	}
}

func TestRun_StringInput(t *testing.T) {
	upper := Map(func(_ context.Context, s string) (string, error) { return strings.ToUpper(s), nil })
	p, _ := Pipe(upper, Take[string](2))
	got, err := p.Run(context.Background(), "abc")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("got %q", got)
	}
}

// Each transform is applied exactly once per run, and runs are independent.
func TestRun_TransformsAppliedOncePerRun(t *testing.T) {
	calls := make([]int, 3)
	spy := func(i int) Transform[int, int] {
		return func(c Cursor[int]) Cursor[int] {
			calls[i]++
			return c
		}
	}
	p, _ := Pipe(spy(0), spy(1), spy(2))
	if p.Stages() != 3 {
		t.Errorf("expected 3 stages, got %d", p.Stages())
	}
	if !slices.Equal(calls, []int{0, 0, 0}) {
		t.Fatalf("transforms applied at build time: %v", calls)
	}

	for run := 1; run <= 2; run++ {
		got, err := p.Run(context.Background(), []int{1, 2, 3})
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(got, []int{1, 2, 3}) {
			t.Errorf("run %d: got %v", run, got)
		}
		if !slices.Equal(calls, []int{run, run, run}) {
			t.Errorf("run %d: calls %v", run, calls)
		}
	}
}

func TestRun_ReusableAcrossInputs(t *testing.T) {
	p, _ := Pipe(Map(double), Take[int](2))
	a, _ := p.Run(context.Background(), []int{1, 2, 3})
	b, _ := p.Run(context.Background(), NewSet(5, 6, 7))
	if !slices.Equal(a, []int{2, 4}) || !slices.Equal(b, []int{10, 12}) {
		t.Errorf("got %v and %v", a, b)
	}
}

func TestRun_ErrorReturnsNoPartialResult(t *testing.T) {
	boom := errors.New("boom")
	p, _ := Pipe(Map(func(_ context.Context, n int) (int, error) {
		if n == 3 {
			return 0, boom
		}
		return n, nil
	}))
	src := counted(1, 2, 3, 4)
	got, err := p.Run(context.Background(), Cursor[int](src))
	if err != boom {
		t.Fatalf("expected the original error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial result, got %v", got)
	}
	if src.pulls != 3 {
		t.Errorf("expected pulling to stop at the failure, got %d pulls", src.pulls)
	}
	if !src.closed {
		t.Error("expected the chain to be closed after a failure")
	}
}

func TestNew_Compose(t *testing.T) {
	toLen := Map(func(_ context.Context, s string) (int, error) { return len(s), nil })
	p := New(Compose(Compose(Filter(func(s string) bool { return s != "" }), toLen), Map(double)))
	got, err := p.Run(context.Background(), []string{"a", "", "abc"})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{2, 6}) {
		t.Errorf("got %v, want [2 6]", got)
	}
	if p.Stages() != 1 {
		t.Errorf("expected 1 stage, got %d", p.Stages())
	}
}

func TestChain_EmptyIsIdentity(t *testing.T) {
	got := collect(t, Chain[int]()(counted(1, 2)))
	if !slices.Equal(got, []int{1, 2}) {
		t.Errorf("got %v", got)
	}
}

func TestFunc(t *testing.T) {
	p, _ := Pipe(Map(double))
	run := p.Func()
	got, err := run(context.Background(), []int{4})
	if err != nil || !slices.Equal(got, []int{8}) {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestDrain_EmptyIsNonNil(t *testing.T) {
	got, err := Drain[int](context.Background(), &sliceCursor[int]{})
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Error("expected empty, non-nil result")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)

	base, _ := Pipe(Map(double))
	p := base.WithLogger(log)

	if _, err := p.Run(context.Background(), []int{1, 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(context.Background(), 7); err == nil {
		t.Fatal("expected error")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var ok, failed map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &ok); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &failed); err != nil {
		t.Fatal(err)
	}
	if ok["message"] != "pipeline run finished" || ok["yielded"] != float64(2) || ok["stages"] != float64(1) {
		t.Errorf("unexpected success entry: %v", ok)
	}
	if ok["run_id"] == "" || ok["run_id"] == failed["run_id"] {
		t.Errorf("expected distinct run ids: %v, %v", ok["run_id"], failed["run_id"])
	}
	if failed["message"] != "pipeline run failed" || failed["error"] == nil {
		t.Errorf("unexpected failure entry: %v", failed)
	}

	buf.Reset()
	if _, err := base.Run(context.Background(), []int{1}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Error("WithLogger must not modify the original pipeline")
	}
}

type recordingObserver struct {
	started  []RunInfo
	yielded  []int
	errs     []error
	finished int
}

type ctxKey struct{}

func (o *recordingObserver) RunStarted(ctx context.Context, info RunInfo) context.Context {
	o.started = append(o.started, info)
	return context.WithValue(ctx, ctxKey{}, info.ID)
}

func (o *recordingObserver) RunFinished(ctx context.Context, info RunInfo, yielded int, err error) {
	if ctx.Value(ctxKey{}) != info.ID {
		panic("RunFinished must receive the context returned by RunStarted")
	}
	o.finished++
	o.yielded = append(o.yielded, yielded)
	o.errs = append(o.errs, err)
}

func TestWithObserver(t *testing.T) {
	obs := &recordingObserver{}
	var seen []any
	p, _ := Pipe(Tap(func(ctx context.Context, _ int) error {
		seen = append(seen, ctx.Value(ctxKey{}))
		return nil
	}), Take[int](2))
	p = p.WithObserver(obs)

	if _, err := p.Run(context.Background(), []int{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}

	if len(obs.started) != 2 || obs.finished != 2 {
		t.Fatalf("expected 2 runs, got %d started, %d finished", len(obs.started), obs.finished)
	}
	if obs.started[0].Stages != 2 || obs.started[0].ID == obs.started[1].ID {
		t.Errorf("unexpected run info: %+v", obs.started)
	}
	if !slices.Equal(obs.yielded, []int{2, 0}) {
		t.Errorf("yielded %v", obs.yielded)
	}
	if obs.errs[0] != nil || !apperrors.IsInvalidArgument(obs.errs[1]) {
		t.Errorf("errors %v", obs.errs)
	}
	if len(seen) != 2 || seen[0] != obs.started[0].ID {
		t.Errorf("transforms should see the observer context, got %v", seen)
	}
}
