// fleet-pairs polls truck and trailer positions and pairs every trailer
// with its nearest truck.
//
// Modes:
//
//	serve    run the HTTP API and the periodic refresh (default)
//	oneshot  run one pass and print the assignment set as JSON
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/theoremus-urban-solutions/fleet-pairs/config"
	"github.com/theoremus-urban-solutions/fleet-pairs/internal/logging"
	"github.com/theoremus-urban-solutions/fleet-pairs/refresh"
	"github.com/theoremus-urban-solutions/fleet-pairs/server"
	"github.com/theoremus-urban-solutions/fleet-pairs/store"
)

type options struct {
	configPath string
	mode       string
	port       int
	logLevel   string
	help       bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, out io.Writer) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("fleet-pairs", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&opts.configPath, "config", "", "config file (default: first of config.yml, config.yaml, config.toml)")
	fs.StringVar(&opts.mode, "mode", "serve", "serve|oneshot")
	fs.IntVar(&opts.port, "port", 0, "HTTP port (overrides config and PORT)")
	fs.StringVar(&opts.logLevel, "log-level", "", "trace|debug|info|warn|error (overrides config)")
	fs.BoolVarP(&opts.help, "help", "h", false, "show help")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.help {
		fs.PrintDefaults()
		return opts, pflag.ErrHelp
	}
	if rest := fs.Args(); len(rest) > 0 {
		return opts, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	switch opts.mode {
	case "serve", "oneshot":
	default:
		return opts, fmt.Errorf("unknown mode %q", opts.mode)
	}
	return opts, nil
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args, os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := config.LoadAppConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	logger := logging.Init("fleet-pairs", cfg.Logging.Level, cfg.Logging.Pretty)

	ctx, cancel := server.SignalContext(context.Background())
	defer cancel()

	kv, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	st := store.New(kv, logger)
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing store")
		}
	}()

	orch := newOrchestrator(cfg, st, logger)

	if opts.mode == "oneshot" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(orch.Refresh(ctx))
	}
	return serve(ctx, cfg, orch, logger)
}

func serve(ctx context.Context, cfg *config.AppConfig, orch *refresh.Orchestrator, logger zerolog.Logger) error {
	srv := server.New(cfg.Server.Port, cfg.PassBudget(), orch, logger)
	errc := make(chan error, 1)
	srv.Start(errc)

	sched := refresh.NewScheduler(orch, cfg.Refresh.Interval(), cfg.Refresh.OnStart, logger)
	schedDone := make(chan struct{})
	schedCtx, stopSched := context.WithCancel(ctx)
	go func() {
		sched.Run(schedCtx)
		close(schedDone)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errc:
	}
	stopSched()
	<-schedDone
	if err := srv.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
