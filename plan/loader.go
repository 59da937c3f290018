package plan

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/lazyseq/errors"
)

// Loader loads plans by name, for resolving includes.
type Loader interface {
	Load(name string) (*Plan, error)
}

// FileLoader looks up {name}.yaml and {name}.yml in its directories, in order.
type FileLoader struct {
	dirs []string
}

// NewFileLoader creates a loader over dirs.
func NewFileLoader(dirs ...string) *FileLoader {
	return &FileLoader{dirs: dirs}
}

// Load returns the first plan file found for name, or a NOT_FOUND error.
func (l *FileLoader) Load(name string) (*Plan, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			return Load(path)
		}
	}
	return nil, errors.NotFound("plan", name).WithDetail("dirs", l.dirs)
}

// Load reads and parses a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan: reading %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("plan: parsing %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes one YAML plan. Unknown keys are rejected so that typos in
// step fields do not pass silently.
func Parse(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.Validation("plan is empty")
		}
		return nil, errors.Validation("invalid plan document").WithCause(err)
	}
	return &p, nil
}

// Resolve returns a copy of p with the steps of its includes, resolved
// recursively, placed before its own. Each included plan is expanded at most
// once; an include cycle is an error.
//
// Includes are keyed by the name they are loaded under. The root plan is not
// loaded by name, so its own name field never collides with an include.
func Resolve(p *Plan, loader Loader) (*Plan, error) {
	steps, err := resolveSteps(rootKey, p, loader, map[string]bool{}, map[string]bool{})
	if err != nil {
		return nil, err
	}
	out := *p
	out.Includes = nil
	out.Steps = steps
	return &out, nil
}

// rootKey marks the root plan; include names are never empty.
const rootKey = ""

// resolveSteps expands p, known as key to the plans that include it.
func resolveSteps(key string, p *Plan, loader Loader, stack, expanded map[string]bool) ([]Step, error) {
	if stack[key] {
		return nil, errors.Validation(fmt.Sprintf("circular include of plan %q", key))
	}
	stack[key] = true
	defer delete(stack, key)

	var steps []Step
	for _, name := range p.Includes {
		if expanded[name] {
			continue
		}
		if loader == nil {
			return nil, errors.Validation(fmt.Sprintf("plan %q includes %q but no loader is configured", p.Name, name))
		}
		sub, err := loader.Load(name)
		if err != nil {
			return nil, fmt.Errorf("plan: loading include %q: %w", name, err)
		}
		subSteps, err := resolveSteps(name, sub, loader, stack, expanded)
		if err != nil {
			return nil, err
		}
		steps = append(steps, subSteps...)
	}

	expanded[key] = true
	return append(steps, p.Steps...), nil
}
