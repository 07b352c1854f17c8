// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"gioui.org/glctx"
)

var (
	platformFlag = &cli.StringFlag{
		Name:  "platform",
		Usage: "windowing system: x11, wayland or win32",
		Value: defaultPlatform(),
	}
	apiFlag = &cli.StringFlag{
		Name:  "api",
		Usage: "client API: gl or gles",
		Value: "gl",
	}
	versionFlag = &cli.StringFlag{
		Name:  "version",
		Usage: "`MAJOR.MINOR` version, or latest",
		Value: "latest",
	}
	fallbackFlag = &cli.StringFlag{
		Name:  "gles-fallback",
		Usage: "OpenGL ES `MAJOR.MINOR` version to fall back to",
	}
	headlessFlag = &cli.BoolFlag{
		Name:  "headless",
		Usage: "select for an off-screen pbuffer",
	}
)

var selectCommand = &cli.Command{
	Name:      "select",
	Usage:     "print the backend a request would be served by",
	ArgsUsage: " ",
	Flags:     []cli.Flag{platformFlag, apiFlag, versionFlag, fallbackFlag, headlessFlag},
	Action:    selectBackend,
}

func defaultPlatform() string {
	switch {
	case runtime.GOOS == "windows":
		return glctx.Win32.String()
	case os.Getenv("WAYLAND_DISPLAY") != "":
		return glctx.Wayland.String()
	default:
		return glctx.X11.String()
	}
}

func selectBackend(ctx *cli.Context) error {
	platform, err := glctx.ParsePlatform(ctx.String(platformFlag.Name))
	if err != nil {
		return err
	}
	req, err := parseRequest(ctx.String(apiFlag.Name), ctx.String(versionFlag.Name), ctx.String(fallbackFlag.Name))
	if err != nil {
		return err
	}
	a, err := probe(ctx)
	if err != nil {
		return err
	}
	b, err := a.SelectBackend(platform, req, ctx.Bool(headlessFlag.Name))
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "%v: %v\n", req, b)
	return nil
}

func parseRequest(api, version, fallback string) (glctx.Request, error) {
	switch api {
	case "gl":
		if version == "latest" {
			if fallback != "" {
				return glctx.Request{}, errors.New("--gles-fallback needs an OpenGL version")
			}
			return glctx.Latest(), nil
		}
		v, err := parseVersion(version)
		if err != nil {
			return glctx.Request{}, err
		}
		if fallback == "" {
			return glctx.Specific(glctx.OpenGL, v.Major, v.Minor), nil
		}
		es, err := parseVersion(fallback)
		if err != nil {
			return glctx.Request{}, err
		}
		return glctx.GLThenGLES(v, es), nil
	case "gles":
		if fallback != "" {
			return glctx.Request{}, errors.New("--gles-fallback applies to OpenGL requests")
		}
		if version == "latest" {
			return glctx.Request{}, errors.New("OpenGL ES requests need a version")
		}
		v, err := parseVersion(version)
		if err != nil {
			return glctx.Request{}, err
		}
		return glctx.Specific(glctx.OpenGLES, v.Major, v.Minor), nil
	}
	return glctx.Request{}, fmt.Errorf("unknown API %q", api)
}

func parseVersion(s string) (glctx.Version, error) {
	major, minor, ok := strings.Cut(s, ".")
	if !ok {
		return glctx.Version{}, fmt.Errorf("invalid version %q", s)
	}
	ma, err := strconv.ParseUint(major, 10, 8)
	if err != nil {
		return glctx.Version{}, fmt.Errorf("invalid version %q", s)
	}
	mi, err := strconv.ParseUint(minor, 10, 8)
	if err != nil {
		return glctx.Version{}, fmt.Errorf("invalid version %q", s)
	}
	return glctx.Version{Major: uint8(ma), Minor: uint8(mi)}, nil
}
