// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"gioui.org/glctx"
)

var backendsCommand = &cli.Command{
	Name:   "backends",
	Usage:  "list the native libraries glctx could load",
	Action: backends,
}

func backends(ctx *cli.Context) error {
	a, err := probe(ctx)
	if err != nil {
		return err
	}
	writeAvailability(ctx.App.Writer, a)
	if err := a.Err(); err != nil && ctx.Bool(verboseFlag.Name) {
		fmt.Fprintf(ctx.App.ErrWriter, "\n%v\n", err)
	}
	return nil
}

func status(ok bool) string {
	if ok {
		return "available"
	}
	return "missing"
}

func writeAvailability(w io.Writer, a *glctx.Availability) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Component", "Status"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk([][]string{
		{"Xlib", status(a.X11())},
		{"GLX", status(a.GLX())},
		{"EGL", status(a.EGL())},
		{"wayland-egl", status(a.Wayland())},
		{"WGL", status(a.PlatformNative())},
	})
	table.Render()
}
