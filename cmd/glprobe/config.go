// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"
)

var configCommand = &cli.Command{
	Name:   "config",
	Usage:  "print the effective configuration as TOML",
	Action: dumpConfig,
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	return toml.NewEncoder(ctx.App.Writer).Encode(cfg)
}
