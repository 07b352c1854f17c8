// SPDX-License-Identifier: Unlicense OR MIT

// Command glprobe reports the OpenGL backends available to glctx and
// the backend it would select for a request.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"gioui.org/glctx"
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "TOML `FILE` overriding the default library names",
		EnvVars: []string{glctx.EnvConfig},
	}
	backendFlag = &cli.StringFlag{
		Name:    "backend",
		Usage:   "force a backend: glx, egl or native",
		EnvVars: []string{glctx.EnvBackend},
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "log library loading to stderr",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "glprobe",
		Usage: "inspect OpenGL backend selection",
		Flags: []cli.Flag{configFlag, backendFlag, verboseFlag},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool(verboseFlag.Name) {
				h := slog.NewTextHandler(ctx.App.ErrWriter, &slog.HandlerOptions{Level: slog.LevelDebug})
				glctx.SetLogger(slog.New(h))
			}
			return nil
		},
		Commands: []*cli.Command{
			backendsCommand,
			selectCommand,
			configCommand,
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the configuration from the defaults, the --config
// file and the --backend flag, in that order.
func loadConfig(ctx *cli.Context) (glctx.Config, error) {
	cfg := glctx.DefaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		if cfg, err = glctx.LoadConfig(path); err != nil {
			return glctx.Config{}, err
		}
	}
	if ctx.IsSet(backendFlag.Name) {
		cfg.Backend = ctx.String(backendFlag.Name)
	}
	return cfg, cfg.Validate()
}

// probe loads the libraries named by the configuration with the
// platform loader.
func probe(ctx *cli.Context) (*glctx.Availability, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return glctx.ProbeWith(cfg, nil), nil
}
