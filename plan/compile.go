package plan

import (
	"fmt"

	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/pipeline"
	"github.com/kbukum/lazyseq/validation"
)

// Compiler turns plans into pipelines.
type Compiler struct {
	registry *Registry
	loader   Loader
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithRegistry replaces DefaultRegistry.
func WithRegistry(r *Registry) CompilerOption {
	return func(c *Compiler) { c.registry = r }
}

// WithLoader enables includes, resolved through l.
func WithLoader(l Loader) CompilerOption {
	return func(c *Compiler) { c.loader = l }
}

// NewCompiler creates a Compiler.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{registry: DefaultRegistry}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles p with the built-in functions and no include support.
func Compile(p *Plan) (*pipeline.Pipeline[string, string], error) {
	return NewCompiler().Compile(p)
}

// Validate checks p against the built-in functions.
func Validate(p *Plan) error {
	return NewCompiler().Validate(p)
}

// Compile resolves includes, validates the result and builds one transform
// per step. The plan is checked in full before anything is built.
func (c *Compiler) Compile(p *Plan) (*pipeline.Pipeline[string, string], error) {
	if p == nil {
		return nil, errors.NilValue()
	}
	resolved, err := Resolve(p, c.loader)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(resolved); err != nil {
		return nil, err
	}

	transforms := make([]pipeline.Transform[string, string], 0, len(resolved.Steps))
	for i, step := range resolved.Steps {
		t, err := c.build(step)
		if err != nil {
			return nil, errors.Validation(fmt.Sprintf("steps[%d]: %v", i, err)).WithCause(err)
		}
		transforms = append(transforms, t)
	}
	return pipeline.Pipe(transforms...)
}

// Validate checks the struct shape of p, then the fields each step's op needs.
// Includes are not followed.
func (c *Compiler) Validate(p *Plan) error {
	if p == nil {
		return errors.NilValue()
	}
	if err := validation.Validate(p); err != nil {
		return err
	}

	v := validation.New()
	v.Custom(len(p.Steps) > 0 || len(p.Includes) > 0, "steps", "must have at least one step or include")
	for i, step := range p.Steps {
		c.validateStep(v.At(fmt.Sprintf("steps[%d]", i)), step)
	}
	return v.Err()
}

func (c *Compiler) validateStep(v *validation.Validator, s Step) {
	switch s.Op {
	case OpMap, OpFilter, OpFlatMap:
		v.Required("func", s.Func)
		v.OneOf("func", s.Func, c.registry.List(s.Op))
		v.Custom(s.N == nil, "n", "is not allowed here")
		v.Custom(s.Value == nil, "value", "is not allowed here")
		f, ok := c.registry.Get(s.Op, s.Func)
		if !ok {
			return
		}
		if f.ArgRequired {
			v.Custom(s.Arg != "", "arg", "is required")
		}
		if f.CheckArg != nil && s.Arg != "" {
			if err := f.CheckArg(s.Arg); err != nil {
				v.AddError("arg", "is invalid: "+err.Error())
			}
		}
	case OpTake, OpDrop:
		v.Custom(s.N != nil, "n", "is required")
		c.noArgs(v, s, false)
	case OpTail:
		v.Custom(s.N == nil, "n", "is not allowed here")
		c.noArgs(v, s, false)
	case OpAppend, OpPrepend:
		v.Custom(s.Value != nil, "value", "is required")
		v.Custom(s.N == nil, "n", "is not allowed here")
		c.noArgs(v, s, true)
	}
}

func (c *Compiler) noArgs(v *validation.Validator, s Step, valueAllowed bool) {
	v.Empty("func", s.Func)
	v.Empty("arg", s.Arg)
	if !valueAllowed {
		v.Custom(s.Value == nil, "value", "is not allowed here")
	}
}

func (c *Compiler) build(s Step) (pipeline.Transform[string, string], error) {
	switch s.Op {
	case OpMap, OpFilter, OpFlatMap:
		f, ok := c.registry.Get(s.Op, s.Func)
		if !ok {
			return nil, fmt.Errorf("unknown %s func %q", s.Op, s.Func)
		}
		return f.Build(s.Arg)
	case OpTake:
		return pipeline.Take[string](*s.N), nil
	case OpDrop:
		return pipeline.Drop[string](*s.N), nil
	case OpTail:
		return pipeline.Tail[string](), nil
	case OpAppend:
		return pipeline.Append(*s.Value), nil
	case OpPrepend:
		return pipeline.Prepend(*s.Value), nil
	}
	return nil, fmt.Errorf("unknown op %q", s.Op)
}
