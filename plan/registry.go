package plan

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/kbukum/lazyseq/pipeline"
)

// Func builds the transform for a named map, filter or flat_map step.
type Func struct {
	// ArgRequired makes a blank Arg a validation error.
	ArgRequired bool
	// CheckArg rejects bad arguments during validation. Optional.
	CheckArg func(arg string) error
	Build    func(arg string) (pipeline.Transform[string, string], error)
}

// Registry maps an op and a function name to a Func.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]map[string]Func
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]map[string]Func)}
}

// Register adds or replaces the function name for op.
func (r *Registry) Register(op, name string, f Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.funcs[op] == nil {
		r.funcs[op] = make(map[string]Func)
	}
	r.funcs[op][name] = f
}

// Get looks up a function.
func (r *Registry) Get(op, name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs[op][name]
	return f, ok
}

// List returns the sorted function names registered for op.
func (r *Registry) List(op string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs[op]))
	for name := range r.funcs[op] {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultRegistry holds the built-in functions.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()

	mapper := func(fn func(s, arg string) string, argRequired bool) Func {
		return Func{
			ArgRequired: argRequired,
			Build: func(arg string) (pipeline.Transform[string, string], error) {
				return pipeline.Map(func(_ context.Context, s string) (string, error) {
					return fn(s, arg), nil
				}), nil
			},
		}
	}
	r.Register(OpMap, "upper", mapper(func(s, _ string) string { return strings.ToUpper(s) }, false))
	r.Register(OpMap, "lower", mapper(func(s, _ string) string { return strings.ToLower(s) }, false))
	r.Register(OpMap, "trim", mapper(func(s, cutset string) string {
		if cutset == "" {
			return strings.TrimSpace(s)
		}
		return strings.Trim(s, cutset)
	}, false))
	r.Register(OpMap, "reverse", mapper(func(s, _ string) string {
		runes := []rune(s)
		slices.Reverse(runes)
		return string(runes)
	}, false))
	r.Register(OpMap, "prefix", mapper(func(s, arg string) string { return arg + s }, true))
	r.Register(OpMap, "suffix", mapper(func(s, arg string) string { return s + arg }, true))

	predicate := func(fn func(s, arg string) bool, argRequired bool) Func {
		return Func{
			ArgRequired: argRequired,
			Build: func(arg string) (pipeline.Transform[string, string], error) {
				return pipeline.Filter(func(s string) bool { return fn(s, arg) }), nil
			},
		}
	}
	r.Register(OpFilter, "not_empty", predicate(func(s, _ string) bool { return s != "" }, false))
	r.Register(OpFilter, "contains", predicate(strings.Contains, true))
	r.Register(OpFilter, "has_prefix", predicate(strings.HasPrefix, true))
	r.Register(OpFilter, "has_suffix", predicate(strings.HasSuffix, true))
	r.Register(OpFilter, "match", Func{
		ArgRequired: true,
		CheckArg: func(arg string) error {
			_, err := regexp.Compile(arg)
			return err
		},
		Build: func(arg string) (pipeline.Transform[string, string], error) {
			re, err := regexp.Compile(arg)
			if err != nil {
				return nil, fmt.Errorf("compiling %q: %w", arg, err)
			}
			return pipeline.Filter(re.MatchString), nil
		},
	})

	expander := func(fn func(s, arg string) any, argRequired bool) Func {
		return Func{
			ArgRequired: argRequired,
			Build: func(arg string) (pipeline.Transform[string, string], error) {
				return pipeline.FlatMap[string, string](func(_ context.Context, s string) (any, error) {
					return fn(s, arg), nil
				}), nil
			},
		}
	}
	r.Register(OpFlatMap, "split", expander(func(s, sep string) any { return strings.Split(s, sep) }, true))
	r.Register(OpFlatMap, "fields", expander(func(s, _ string) any { return strings.Fields(s) }, false))
	// A string is iterated as one-rune strings.
	r.Register(OpFlatMap, "chars", expander(func(s, _ string) any { return s }, false))

	return r
}
