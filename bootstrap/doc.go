// Package bootstrap runs a one-shot task under a validated config, a
// configured logger and ordered start/stop hooks.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.OnStop(shutdownTracing)
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    _, err := p.Run(ctx, input)
//	    return err
//	})
//
// The task context is canceled on SIGINT and SIGTERM. Stop hooks always run,
// in reverse registration order, within the graceful timeout.
package bootstrap
