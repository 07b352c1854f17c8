// SPDX-License-Identifier: Unlicense OR MIT

package glctx

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/exp/slices"

	"gioui.org/glctx/internal/egl"
	"gioui.org/glctx/internal/glx"
	"gioui.org/glctx/internal/wayland"
	"gioui.org/glctx/internal/wgl"
	"gioui.org/glctx/internal/xlib"
)

// Environment variables read by Config.FromEnv.
const (
	EnvBackend = "GLCTX_BACKEND"
	EnvConfig  = "GLCTX_CONFIG"
)

// Config controls which libraries Probe loads and which backend the
// selection policy may pick.
type Config struct {
	// Backend forces a backend by name: "glx", "egl" or "native".
	// Empty or "auto" leaves the choice to the selection policy.
	Backend   string    `toml:"backend"`
	Libraries Libraries `toml:"libraries"`
}

// Libraries lists the file names tried for every native library, in
// order. An empty list skips the library.
type Libraries struct {
	GL         []string `toml:"gl"`
	EGL        []string `toml:"egl"`
	X11        []string `toml:"x11"`
	WaylandEGL []string `toml:"wayland_egl"`
	GDI        []string `toml:"gdi"`
	OpenGL32   []string `toml:"opengl32"`
}

// DefaultConfig returns the library names of the running platform and
// no forced backend.
func DefaultConfig() Config {
	return defaultConfig(runtime.GOOS)
}

func defaultConfig(goos string) Config {
	var c Config
	switch goos {
	case "windows":
		c.Libraries = Libraries{
			EGL:      slices.Clone(egl.Libraries),
			GDI:      slices.Clone(wgl.GDILibraries),
			OpenGL32: slices.Clone(wgl.OpenGLLibraries),
		}
	case "darwin", "ios", "android", "js":
	default:
		c.Libraries = Libraries{
			GL:         slices.Clone(glx.Libraries),
			EGL:        slices.Clone(egl.Libraries),
			X11:        slices.Clone(xlib.Libraries),
			WaylandEGL: slices.Clone(wayland.Libraries),
		}
	}
	return c
}

// LoadConfig reads a TOML file over DefaultConfig. Unknown keys are an
// error.
func LoadConfig(path string) (Config, error) {
	return DefaultConfig().load(path)
}

func (c Config) load(path string) (Config, error) {
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return Config{}, fmt.Errorf("glctx: %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("glctx: %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return c, c.Validate()
}

// FromEnv returns c updated with the file named by GLCTX_CONFIG and the
// backend named by GLCTX_BACKEND, in that order.
func (c Config) FromEnv() (Config, error) {
	if path := os.Getenv(EnvConfig); path != "" {
		var err error
		c, err = c.load(path)
		if err != nil {
			return Config{}, err
		}
	}
	if b := os.Getenv(EnvBackend); b != "" {
		c.Backend = b
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	_, err := ParseBackend(c.Backend)
	return err
}

// forced returns the backend named by c.Backend, or None.
func (c Config) forced() Backend {
	b, _ := ParseBackend(c.Backend)
	return b
}
