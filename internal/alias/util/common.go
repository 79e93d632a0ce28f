package util

import (
	"io"
	"log/slog"
)

// CloseLogged closes c and logs a failure instead of returning it. Use it for
// deferred closes of read-side handles, where the error changes nothing.
func CloseLogged(c io.Closer, what string) {
	if err := c.Close(); err != nil {
		slog.Warn("close failed", "what", what, "err", err)
	}
}
