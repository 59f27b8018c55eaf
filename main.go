package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"smpverify/config"
	"smpverify/logging"
	"smpverify/model"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "smpverify",
		Usage:  "DonutSMP membership verification",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultPath,
				Usage:   "path to the configuration file",
			},
		},
		Commands: []*cli.Command{
			botCommand(),
			webCommand(),
			ledgerCommand(),
		},
	}
}

// setup loads the configuration and builds the logger for a command.
func setup(c *cli.Context) (*model.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
