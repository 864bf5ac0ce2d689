package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textSink(buf *bytes.Buffer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})
}

func TestMultiHandler_DeliversToEverySink(t *testing.T) {
	var file, gelf bytes.Buffer
	logger := slog.New(NewMultiHandler(textSink(&file, slog.LevelInfo), nil, textSink(&gelf, slog.LevelInfo)))

	logger.Info("round played", "round", 3)

	assert.Contains(t, file.String(), "round=3")
	assert.Contains(t, gelf.String(), "round=3")
}

func TestMultiHandler_LevelPerSink(t *testing.T) {
	var verbose, quiet bytes.Buffer
	multi := NewMultiHandler(textSink(&verbose, slog.LevelDebug), textSink(&quiet, slog.LevelWarn))

	assert.True(t, multi.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, NewMultiHandler().Enabled(context.Background(), slog.LevelError))

	logger := slog.New(multi)
	logger.Debug("spawn candidate rejected")
	logger.Warn("spawn fell back to anchor")

	assert.Contains(t, verbose.String(), "spawn candidate rejected")
	assert.Contains(t, verbose.String(), "spawn fell back to anchor")
	assert.NotContains(t, quiet.String(), "spawn candidate rejected")
	assert.Contains(t, quiet.String(), "spawn fell back to anchor")
}

func TestMultiHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(textSink(&buf, slog.LevelInfo))

	slog.New(multi.WithAttrs([]slog.Attr{slog.String("team", "alpha")})).Info("started")
	slog.New(multi.WithGroup("unit")).Info("idle", "id", 7)

	out := buf.String()
	assert.Contains(t, out, "team=alpha")
	assert.Contains(t, out, "unit.id=7")
	assert.Same(t, multi, multi.WithGroup(""))
}

// failingSink rejects every record.
type failingSink struct {
	slog.Handler
}

func (failingSink) Enabled(context.Context, slog.Level) bool { return true }

func (failingSink) Handle(context.Context, slog.Record) error {
	return errors.New("graylog unreachable")
}

func TestMultiHandler_FailingSinkDoesNotBlockOthers(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(failingSink{}, textSink(&buf, slog.LevelInfo))

	r := slog.NewRecord(time.Time{}, slog.LevelInfo, "verdict", 0)
	err := multi.Handle(context.Background(), r)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "graylog unreachable")
	assert.Contains(t, buf.String(), "verdict")
}

func TestContextHandler_StampsMatchAttrs(t *testing.T) {
	var buf bytes.Buffer
	mc := NewMatchContext("m-7", "navigation")
	logger := slog.New(NewContextHandler(textSink(&buf, slog.LevelInfo), mc.Attrs))

	mc.SetRound(12)
	logger.Info("probe moved")

	out := buf.String()
	assert.Contains(t, out, "match=m-7")
	assert.Contains(t, out, "mode=navigation")
	assert.Contains(t, out, "round=12")
}

func TestContextHandler_ExplicitKeyWins(t *testing.T) {
	var buf bytes.Buffer
	mc := NewMatchContext("m-7", "combat")
	mc.SetRound(8)
	logger := slog.New(NewContextHandler(textSink(&buf, slog.LevelInfo), mc.Attrs))

	logger.Info("late report", "round", 7)

	out := buf.String()
	assert.Contains(t, out, "round=7")
	assert.NotContains(t, out, "round=8")
	assert.Equal(t, 1, strings.Count(out, "round="))
}

func TestContextHandler_NilProviderAndGroups(t *testing.T) {
	var buf bytes.Buffer
	h := NewContextHandler(textSink(&buf, slog.LevelInfo), nil)

	assert.Same(t, h, h.WithGroup(""))
	slog.New(h.WithGroup("engine").WithAttrs([]slog.Attr{slog.Int("seed", 2017)})).Info("ready")

	assert.Contains(t, buf.String(), "engine.seed=2017")
	assert.NotContains(t, buf.String(), "match=")
}

func TestContextHandler_StampsAtTopLevelInsideGroups(t *testing.T) {
	var buf bytes.Buffer
	mc := NewMatchContext("m-9", "combat")
	mc.SetRound(4)
	logger := slog.New(NewContextHandler(textSink(&buf, slog.LevelInfo), mc.Attrs))

	logger.With("team", "alpha").WithGroup("engine").With("seed", 2017).Info("ready", "bodies", 3)

	out := buf.String()
	assert.Contains(t, out, " match=m-9")
	assert.Contains(t, out, " round=4")
	assert.Contains(t, out, "team=alpha")
	assert.Contains(t, out, "engine.seed=2017")
	assert.Contains(t, out, "engine.bodies=3")
	assert.NotContains(t, out, "engine.match=")
	assert.NotContains(t, out, "engine.round=")
}
