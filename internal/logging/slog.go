package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// console receives logs when no file is configured. Stdout is reserved for
// match summaries.
var console io.Writer = os.Stderr

// bridgeScope names the instrumentation scope of records sent through OTel.
const bridgeScope = "arena-harness"

// Options selects the outputs built by Setup.
type Options struct {
	// File receives text logs. When nil, logs go to stderr instead.
	File  io.Writer
	Level string
	// Provider enables the OTel bridge when non-nil.
	Provider *sdklog.LoggerProvider
	// Gelf receives JSON records for Graylog when non-nil.
	Gelf io.Writer
	// Context adds dynamic attributes to every record.
	Context ContextProvider
}

// SlogManager owns the process logger. A session calls Setup once with the
// console only and again when the log file and remote sinks are open.
type SlogManager struct {
	logger   *slog.Logger
	provider *sdklog.LoggerProvider
}

func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel accepts DEBUG, INFO, WARN and ERROR in any case. Anything else
// logs at INFO.
func parseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// utcTime renders record times as RFC3339 in UTC.
func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey {
		return a
	}
	if t, ok := a.Value.Any().(time.Time); ok {
		a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
	}
	return a
}

func sinks(opts Options) []slog.Handler {
	ho := &slog.HandlerOptions{Level: parseLevel(opts.Level), ReplaceAttr: utcTime}

	text := opts.File
	if text == nil {
		text = console
	}
	out := []slog.Handler{slog.NewTextHandler(text, ho)}
	if opts.Gelf != nil {
		out = append(out, slog.NewJSONHandler(opts.Gelf, ho))
	}
	if opts.Provider != nil {
		out = append(out, otelslog.NewHandler(bridgeScope, otelslog.WithLoggerProvider(opts.Provider)))
	}
	return out
}

// Setup builds the logger from opts, replacing any previous one.
func (m *SlogManager) Setup(opts Options) {
	var h slog.Handler = NewMultiHandler(sinks(opts)...)
	if opts.Context != nil {
		h = NewContextHandler(h, opts.Context)
	}
	m.provider = opts.Provider
	m.logger = slog.New(h)
	m.logger.Info("Logging initialized", "level", parseLevel(opts.Level).String())
}

// Logger falls back to slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush pushes records buffered by the OTel bridge.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	return m.provider.ForceFlush(ctx)
}
