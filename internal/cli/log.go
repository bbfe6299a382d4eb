package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Timestamps carry centiseconds
// ("15:04:05.00") because the interesting differences between a cached
// and a recomputed render live well under a second.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one pipeline phase and logs its completion with the
// elapsed duration. Sequential use only; concurrent done calls race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts timing at the moment of the call, so create it
// immediately before the phase it measures.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond,
// e.g. "Assembled 512 instances (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is a private context key type so the logger entry cannot
// collide with keys from other packages.
type ctxKey int

// loggerKey is the context key under which the CLI logger travels.
const loggerKey ctxKey = 0

// withLogger attaches the CLI logger to ctx. The root command does this
// in its PersistentPreRun so every subcommand sees the --verbose level.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger attached by withLogger,
// falling back to log.Default() so a command run outside the root
// wiring still logs somewhere.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
