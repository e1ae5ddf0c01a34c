package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"tour-sync/internal/config"
	"tour-sync/internal/logging"
	"tour-sync/internal/models"
)

func main() {
	app := cli.NewApp()
	app.Name = "tour-sync"
	app.Usage = "upload virtual tour folders to the tour API and download them back"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "optional TOML config file",
			EnvVar: "VTSYNC_CONFIG",
		},
		cli.StringFlag{Name: "domain", Usage: "API domain (overrides DOMAIN)"},
		cli.StringFlag{Name: "api-key", Usage: "API key (overrides API_KEY)"},
		cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
	}
	app.Commands = []cli.Command{
		bulkCommand(),
		downloadCommand(),
		runsCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// InitConfig loads the config file and environment, then applies global flags.
func InitConfig(c *cli.Context) (config.RunConfig, error) {
	cfg, err := config.LoadConfig(c.GlobalString("config"))
	if err != nil {
		return cfg, err
	}
	if v := c.GlobalString("domain"); v != "" {
		cfg.Domain = v
	}
	if v := c.GlobalString("api-key"); v != "" {
		cfg.APIKey = v
	}
	if v := c.GlobalString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}

// InitLogger builds the process logger from the run configuration.
func InitLogger(cfg config.RunConfig) (*zap.Logger, error) {
	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// exitError maps err onto a process exit: fatal errors and interrupts are non-zero.
func exitError(err error) error {
	switch {
	case err == nil:
		return nil
	case models.IsFatal(err):
		return cli.NewExitError(err.Error(), 2)
	case errors.Is(err, context.Canceled):
		return cli.NewExitError("interrupted", 130)
	default:
		return cli.NewExitError(err.Error(), 1)
	}
}
