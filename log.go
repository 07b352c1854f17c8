// SPDX-License-Identifier: Unlicense OR MIT

package glctx

import (
	"log/slog"

	"gioui.org/glctx/internal/log"
)

// SetLogger directs the diagnostics of the package and its backends to
// l. A nil logger silences them, which is the default.
func SetLogger(l *slog.Logger) {
	log.Set(l)
}
