// Package cli implements the deeptime command-line interface.
//
// Commands render timeline frames to files, print layout diagnostics,
// run the interactive terminal explorer, serve the HTTP API and manage
// saved views and the snapshot cache. The CLI is built on cobra and logs
// through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - render: Generate SVG, PNG, PDF or JSON frames of a view
//   - tree: Render the eon/era/period hierarchy with Graphviz
//   - layout, lanes, zoom, inspect: Print layout and dataset diagnostics
//   - explore: Pan and zoom the timeline in the terminal
//   - serve: Run the HTTP API
//   - view: Save, list and delete shareable views
//   - cache: Manage the snapshot cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deeptime/pkg/pipeline"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a pipeline run.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time and keyvals, e.g.
// "Rendered 2 artifact(s) context=Jurassic k=2.31 events=14 elapsed=84ms".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

// passFields describes the frame a run produced. Tree runs have no
// snapshot and only report the cache.
func passFields(res *pipeline.Result) []any {
	if res.Snapshot == nil {
		return []any{"cached", res.CacheInfo.RenderHit}
	}
	s := res.Snapshot
	return []any{
		"context", s.Nav.Context.Name,
		"k", formatFloat(s.Transform.K),
		"events", len(s.Events),
		"cached", res.CacheInfo.SnapshotHit,
	}
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
