// coverd serves the cover sheet API.
//
// Usage:
//
//	coverd [--config coverd.yaml] [--listen :5000] [--log-level info]
//
// Configuration is read from --config (or COVERFORGE_CONFIG), then
// COVERFORGE_* variables, then the flags above.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/jonwraymond/coverforge/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "coverd: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		configPath string
		listen     string
		logLevel   string
	)
	flags := pflag.NewFlagSet("coverd", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", os.Getenv("COVERFORGE_CONFIG"), "path to the YAML config file")
	flags.StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	runErr := a.server.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(runErr, a.close(shutdownCtx))
}
