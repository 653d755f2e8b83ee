// Package cli implements the treeseq command-line interface.
//
// This package provides commands for searching long bad tree sequences,
// enumerating trees of one size, testing embeddings, rendering sequences and
// managing the tree cache. The CLI is built using cobra, reads its settings
// through viper and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - search: Run the backtracking search, optionally with a live dashboard
//   - enum: Print every tree of a given size
//   - embeds: Decide whether one tree embeds into another
//   - render: Draw trees or a saved checkpoint as DOT, SVG or PNG
//   - cache: Inspect and clear the tree cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// parseLevel accepts the level names of the log.level config key,
// case-insensitively.
func parseLevel(name string) (log.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	level, err := log.ParseLevel(name)
	if err != nil {
		return 0, fmt.Errorf("log level %q: %w", name, err)
	}
	return level, nil
}

// muted returns a child of l that only reports warnings and errors. The
// parent keeps its level.
func muted(l *log.Logger) *log.Logger {
	child := l.With()
	child.SetLevel(max(l.GetLevel(), log.WarnLevel))
	return child
}

// progress logs how long an operation took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time and any extra key/value
// pairs, e.g. `Enumerated trees count=42 elapsed=1.234s`.
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append(keyvals, "elapsed", elapsed)...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() when none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
