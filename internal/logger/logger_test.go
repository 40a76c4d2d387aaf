package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromZap_ForwardsAttrs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core))

	l.Info("Monitor cycle complete", "users", 3, "cycle_id", "abc")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Monitor cycle complete", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	ctx := entries[0].ContextMap()
	assert.EqualValues(t, 3, ctx["users"])
	assert.Equal(t, "abc", ctx["cycle_id"])
}

func TestFromZap_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	l := FromZap(zap.New(core))

	l.Info("dropped")
	l.Warn("kept")
	assert.Equal(t, 1, logs.Len())
	assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zap.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zap.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zap.InfoLevel, parseLevel("nonsense"))
}

func TestNew(t *testing.T) {
	l, zl, err := New("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, zl)
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))
}
