package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/lazyseq/config"
	"github.com/kbukum/lazyseq/pipeline"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

const cleanPlan = `
name: clean
steps:
  - op: map
    func: trim
  - op: filter
    func: not_empty
`

const shoutPlan = `
name: shout
includes: [clean]
steps:
  - op: map
    func: upper
  - op: take
    n: 2
`

// setup writes a config pointing at a shout plan that includes clean.
func setup(t *testing.T, extraConfig string) (configPath, dir string) {
	t.Helper()
	dir = t.TempDir()
	writeFile(t, dir, "clean.yml", cleanPlan)
	shout := writeFile(t, dir, "shout.yml", shoutPlan)
	configPath = writeFile(t, dir, "config.yml", "plan: "+shout+"\nlogging:\n  level: debug\n  format: json\n"+extraConfig)
	return configPath, dir
}

func TestRun_Plan(t *testing.T) {
	configPath, _ := setup(t, "")

	code, stdout, stderr := runCLI(t, "  alpha \n\n beta\ngamma\n", "-config", configPath)
	if code != exitOK {
		t.Fatalf("exit code %d, stderr: %s", code, stderr)
	}
	if stdout != "ALPHA\nBETA\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	if !strings.Contains(stderr, "pipeline run finished") {
		t.Errorf("expected the pipeline debug log on stderr, got %s", stderr)
	}
	if !strings.Contains(stderr, `"component":"pipeline"`) {
		t.Errorf("expected the pipeline component logger, got %s", stderr)
	}
}

func TestRun_InputFileAndPlanOverride(t *testing.T) {
	configPath, dir := setup(t, "")
	reverse := writeFile(t, dir, "reverse.yml", `
name: reverse
steps:
  - op: map
    func: reverse
  - op: append
    value: end
`)
	input := writeFile(t, dir, "input.txt", "abc\nxyz\n")

	code, stdout, stderr := runCLI(t, "ignored\n", "-config", configPath, "-plan", reverse, "-input", input)
	if code != exitOK {
		t.Fatalf("exit code %d, stderr: %s", code, stderr)
	}
	if stdout != "cba\nzyx\nend\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestRun_PlanDirs(t *testing.T) {
	shared := t.TempDir()
	writeFile(t, shared, "clean.yaml", cleanPlan)

	dir := t.TempDir()
	shout := writeFile(t, dir, "shout.yml", shoutPlan)
	configPath := writeFile(t, dir, "config.yml", "plan: "+shout+"\nplan_dirs:\n  - "+shared+"\n")

	code, stdout, stderr := runCLI(t, "x\n \ny\nz\n", "-config", configPath)
	if code != exitOK {
		t.Fatalf("exit code %d, stderr: %s", code, stderr)
	}
	if stdout != "X\nY\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name   string
		plan   string
		args   func(dir string) []string
		code   int
		stderr string
	}{
		{
			name:   "no plan configured",
			args:   func(dir string) []string { return nil },
			code:   exitError,
			stderr: "MISSING_FIELD",
		},
		{
			name:   "missing plan file",
			args:   func(dir string) []string { return []string{"-plan", filepath.Join(dir, "nope.yml")} },
			code:   exitError,
			stderr: "nope.yml",
		},
		{
			name:   "invalid plan",
			plan:   "name: bad\nsteps:\n  - op: take\n  - op: map\n    func: shout\n",
			args:   func(dir string) []string { return []string{"-plan", filepath.Join(dir, "plan.yml")} },
			code:   exitError,
			stderr: "steps[0].n: is required",
		},
		{
			name:   "unknown include",
			plan:   "name: bad\nincludes: [missing]\n",
			args:   func(dir string) []string { return []string{"-plan", filepath.Join(dir, "plan.yml")} },
			code:   exitError,
			stderr: "NOT_FOUND",
		},
		{
			name:   "missing input file",
			plan:   "name: ok\nsteps:\n  - op: tail\n",
			args:   func(dir string) []string { return []string{"-plan", filepath.Join(dir, "plan.yml"), "-input", filepath.Join(dir, "none.txt")} },
			code:   exitError,
			stderr: "opening input",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			configPath := writeFile(t, dir, "config.yml", "logging:\n  format: json\n")
			if tc.plan != "" {
				writeFile(t, dir, "plan.yml", tc.plan)
			}
			args := append([]string{"-config", configPath}, tc.args(dir)...)

			code, stdout, stderr := runCLI(t, "a\n", args...)
			if code != tc.code {
				t.Errorf("exit code %d, want %d", code, tc.code)
			}
			if stdout != "" {
				t.Errorf("expected no output, got %q", stdout)
			}
			if !strings.Contains(stderr, tc.stderr) {
				t.Errorf("expected %q in stderr, got %s", tc.stderr, stderr)
			}
		})
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", "environment: moon\n")

	code, _, stderr := runCLI(t, "", "-config", configPath)
	if code != exitError {
		t.Errorf("exit code %d, want %d", code, exitError)
	}
	if !strings.Contains(stderr, "config.environment") {
		t.Errorf("expected environment error, got %s", stderr)
	}
}

func TestRun_Flags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stdout string
	}{
		{name: "version", args: []string{"-version"}, code: exitOK, stdout: "dev"},
		{name: "help", args: []string{"-h"}, code: exitOK},
		{name: "unknown flag", args: []string{"-nope"}, code: exitUsage},
		{name: "positional arguments", args: []string{"extra"}, code: exitUsage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, stdout, _ := runCLI(t, "", tc.args...)
			if code != tc.code {
				t.Errorf("exit code %d, want %d", code, tc.code)
			}
			if !strings.Contains(stdout, tc.stdout) {
				t.Errorf("expected %q in stdout, got %q", tc.stdout, stdout)
			}
		})
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := AppConfig{}
	cfg.ApplyDefaults()

	if cfg.Name != serviceName {
		t.Errorf("expected name %q, got %q", serviceName, cfg.Name)
	}
	if cfg.Version == "" {
		t.Error("expected a version")
	}
	if cfg.Tracing.ServiceName != serviceName || cfg.Metrics.ServiceName != serviceName {
		t.Error("expected the service name copied into telemetry config")
	}
	if cfg.Tracing.Environment != "development" {
		t.Errorf("expected environment copied, got %q", cfg.Tracing.Environment)
	}
	if cfg.Tracing.Endpoint != "localhost:4318" || cfg.Metrics.Endpoint != "localhost:4318" {
		t.Error("expected default endpoints")
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1, got %v", cfg.Tracing.SampleRate)
	}
	if cfg.telemetryEnabled() {
		t.Error("telemetry should be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestAppConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "sample rate", mutate: func(c *AppConfig) { c.Tracing.SampleRate = 1.5 }, wantErr: "tracing.sample_rate"},
		{name: "interval", mutate: func(c *AppConfig) { c.Metrics.Interval = -time.Second }, wantErr: "metrics.interval"},
		{name: "blank plan dir", mutate: func(c *AppConfig) { c.PlanDirs = []string{"plans", " "} }, wantErr: "plan_dirs[1]"},
		{name: "service", mutate: func(c *AppConfig) { c.Environment = "moon" }, wantErr: "config.environment"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := AppConfig{ServiceConfig: config.ServiceConfig{Name: "seqpipe"}}
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

// countingReader counts Read calls.
type countingReader struct {
	r     io.Reader
	reads int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	return c.r.Read(p)
}

func TestLineSource(t *testing.T) {
	got, err := pipeline.Drain(context.Background(), lineSource{r: strings.NewReader("a\r\nb\n\nc")}.Cursor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "b", "", "c"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLineSource_Lazy(t *testing.T) {
	r := &countingReader{r: strings.NewReader("x\ny\n")}
	src := lineSource{r: r}
	if r.reads != 0 {
		t.Fatal("constructing the source should not read")
	}

	p, err := pipeline.Pipe(pipeline.Take[string](0))
	if err != nil {
		t.Fatal(err)
	}
	out, err := p.Run(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 || r.reads != 0 {
		t.Errorf("take 0 should not read, got %v after %d reads", out, r.reads)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestLineSource_ReadError(t *testing.T) {
	c := lineSource{r: failingReader{}}.Cursor()
	if _, ok, err := c.Next(context.Background()); ok || err == nil {
		t.Fatalf("expected read error, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := c.Next(context.Background()); ok || err != nil {
		t.Errorf("cursor should be finished after an error, got ok=%v err=%v", ok, err)
	}
}

func TestLineSource_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := lineSource{r: strings.NewReader("a\n")}.Cursor().Next(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
