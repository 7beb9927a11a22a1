package log

import (
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// NewLogger returns a new logfmt logger writing to stdout, filtered at the given level.
func NewLogger(lvl string) log.Logger {
	return New(os.Stdout, lvl)
}

// New returns a logfmt logger writing to w, filtered at the given level.
// Unknown levels fall back to info.
func New(w io.Writer, lvl string) log.Logger {
	var logger log.Logger

	logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	logger = log.With(logger, "caller", log.Caller(5))

	return level.NewFilter(logger, allow(lvl))
}

func allow(lvl string) level.Option {
	switch lvl {
	case "debug":
		return level.AllowDebug()
	case "info":
		return level.AllowInfo()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

// ValidLevel reports whether lvl is a level accepted by NewLogger.
func ValidLevel(lvl string) bool {
	switch lvl {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
