package app

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/nyejames/midi-lx/config"
	"github.com/nyejames/midi-lx/debug"
)

// options are the global flags, shared by every command.
type options struct {
	configPath string
	logLevel   string
	level      slog.Level
}

func Instance() *cli.App {
	opts := &options{logLevel: "info"}
	return &cli.App{
		Name:  "midi-lx",
		Usage: "Drive a MagicQ desk and an organ's stops from MIDI controllers",
		Commands: []*cli.Command{
			runCmd(opts),
			portsCmd(),
			probeCmd(opts),
			organCmd(opts),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config.yaml (default ~/.config/midi-lx/config.yaml)",
				EnvVars:     []string{"MIDILX_CONFIG"},
				Destination: &opts.configPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Verbosity of log, valid values are: debug, info, warn, error",
				EnvVars:     []string{"MIDILX_LOG_LEVEL"},
				Destination: &opts.logLevel,
				Value:       opts.logLevel,
			},
		},
		Before: func(ctx *cli.Context) error {
			level, err := debug.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			opts.level = level
			debug.Setup(ctx.App.ErrWriter, level)
			return nil
		},
	}
}

func Run(ctx context.Context, args []string) error {
	app := Instance()
	return app.RunContext(ctx, args)
}

func (o *options) load() (*config.Config, error) {
	return config.Load(o.configPath)
}
