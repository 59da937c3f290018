// Command seqpipe runs a plan over the lines of a file or stdin and prints
// the result, one element per line.
//
//	seqpipe -plan plans/shout.yml -input words.txt
//
// Exit status is 0 on success, 1 when loading or running fails and 2 on a
// usage error.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kbukum/lazyseq/bootstrap"
	"github.com/kbukum/lazyseq/config"
	apperrors "github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/observability"
	"github.com/kbukum/lazyseq/pipeline"
	"github.com/kbukum/lazyseq/plan"
	"github.com/kbukum/lazyseq/version"
)

const serviceName = "seqpipe"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	configFile  string
	planFile    string
	inputFile   string
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configFile, "config", "", "config file (default: config.yml in the usual places)")
	fs.StringVar(&o.planFile, "plan", "", "plan file, overrides the configured plan")
	fs.StringVar(&o.inputFile, "input", "", "input file, one element per line (default: stdin)")
	fs.BoolVar(&o.showVersion, "version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("unexpected arguments: %v", fs.Args())
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return o, err
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return exitUsage
	}
	if opts.showVersion {
		fmt.Fprintln(stdout, version.Get())
		return exitOK
	}

	var cfg AppConfig
	var loadOpts []config.LoaderOption
	if opts.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(opts.configFile))
	}
	if err := config.LoadConfig(serviceName, &cfg, loadOpts...); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		return exitError
	}
	if opts.planFile != "" {
		cfg.Plan = opts.planFile
	}

	// stdout carries the output, so logs always go to stderr.
	cfg.ApplyDefaults()
	app, err := bootstrap.NewApp(&cfg, bootstrap.WithLogger(logger.NewWithWriter(&cfg.Logging, cfg.Name, stderr)))
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		return exitError
	}
	logger.RegisterDefaults("pipeline", "plan")

	if err := setupTelemetry(ctx, app); err != nil {
		app.Logger.Error("telemetry setup failed", logger.Fields(logger.FieldError, err.Error()))
		return exitError
	}

	err = app.RunTask(ctx, func(ctx context.Context) error {
		return execute(ctx, &cfg, opts.inputFile, stdin, stdout)
	})
	if err != nil {
		app.Logger.Error("run failed", errorFields(err))
		return exitError
	}
	return exitOK
}

// setupTelemetry installs the configured exporters and registers their
// shutdown, which flushes pending spans and metrics.
func setupTelemetry(ctx context.Context, app *bootstrap.App[*AppConfig]) error {
	if app.Cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, app.Cfg.Tracing)
		if err != nil {
			return err
		}
		app.OnStop(tp.Shutdown)
	}
	if app.Cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, app.Cfg.Metrics)
		if err != nil {
			return err
		}
		app.OnStop(mp.Shutdown)
	}
	return nil
}

func execute(ctx context.Context, cfg *AppConfig, inputFile string, stdin io.Reader, stdout io.Writer) error {
	p, err := compilePlan(cfg)
	if err != nil {
		return err
	}

	if cfg.telemetryEnabled() {
		obs, err := observability.NewPipelineObserver(observability.WithPlanName(p.name))
		if err != nil {
			return err
		}
		p.pipeline = p.pipeline.WithObserver(obs)
	}

	in := stdin
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}

	out, err := p.pipeline.Run(ctx, lineSource{r: in})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(stdout)
	for _, line := range out {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return w.Flush()
}

type compiledPlan struct {
	name     string
	pipeline *pipeline.Pipeline[string, string]
}

// compilePlan loads cfg.Plan and compiles it. Includes are looked up next to
// the plan first, then in cfg.PlanDirs.
func compilePlan(cfg *AppConfig) (*compiledPlan, error) {
	if cfg.Plan == "" {
		return nil, apperrors.MissingField("plan")
	}
	p, err := plan.Load(cfg.Plan)
	if err != nil {
		return nil, err
	}

	dirs := append([]string{filepath.Dir(cfg.Plan)}, cfg.PlanDirs...)
	compiler := plan.NewCompiler(plan.WithLoader(plan.NewFileLoader(dirs...)))
	pl, err := compiler.Compile(p)
	if err != nil {
		return nil, err
	}

	logger.Get("plan").Debug("plan compiled", logger.Fields(
		"plan", p.Name,
		"file", cfg.Plan,
		"stages", pl.Stages(),
	))
	return &compiledPlan{name: p.Name, pipeline: pl.WithLogger(logger.Get("pipeline"))}, nil
}

func errorFields(err error) map[string]interface{} {
	fields := logger.Fields(logger.FieldError, err.Error())
	if appErr, ok := apperrors.AsAppError(err); ok {
		fields["code"] = string(appErr.Code)
	}
	return fields
}
