package log

import (
	"bytes"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
)

func TestStdLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCustomLogger(&buf, LevelWarn)

	logger.Debug("debug line")
	logger.Info("info line")
	logger.Warn("warn line")
	logger.Error("error line %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "warn line")
	assert.Contains(t, out, "error line 1")
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
}

func TestDefaultLoggerSwap(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer
	SetDefault(NewCustomLogger(&buf, LevelDebug))

	Debug("via package func")
	assert.Contains(t, buf.String(), "via package func")
}

func TestGologLogger(t *testing.T) {
	logger := NewGologLogger(golog.New())
	assert.Equal(t, LevelInfo, logger.GetLevel())

	logger.SetLevel(LevelError)
	assert.Equal(t, LevelError, logger.GetLevel())

	// Calls below the level are suppressed by the wrapper; none may panic.
	logger.Debug("debug %s", "x")
	logger.Info("info %d", 42)
	logger.Warn("warn")
	logger.Error("error %v", "boom")
}
