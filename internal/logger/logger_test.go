package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/lvacfs-go/internal/logger"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestSlogLoggerLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		level     logger.LogLevel
		emit      func(l logger.Logger)
		wantLines int
	}{
		{"debug visible at debug", logger.LogLevelDebug, func(l logger.Logger) { l.Debug("x") }, 1},
		{"debug hidden at info", logger.LogLevelInfo, func(l logger.Logger) { l.Debug("x") }, 0},
		{"warn visible at info", logger.LogLevelInfo, func(l logger.Logger) { l.Warn("x") }, 1},
		{"info hidden at error", logger.LogLevelError, func(l logger.Logger) { l.Info("x") }, 0},
		{"error always visible", logger.LogLevelError, func(l logger.Logger) { l.Error("x") }, 1},
		{"trace hidden at debug", logger.LogLevelDebug, func(l logger.Logger) { l.Trace("x") }, 0},
		{"trace visible at trace", logger.LogLevelTrace, func(l logger.Logger) { l.Trace("x") }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			buf := &bytes.Buffer{}
			tt.emit(logger.NewSlogLogger(buf, tt.level, time.UTC))
			assert.Len(t, decodeLines(t, buf), tt.wantLines)
		})
	}
}

func TestModuleScopingAndFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	base := logger.NewSlogLogger(buf, logger.LogLevelDebug, time.UTC)

	sessionLog := base.Module("lvacfs").Module("session").With(logger.String("session_id", "abc"))
	sessionLog.Info("instance created", logger.Int("channels", 2), logger.Error(nil))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "lvacfs.session", lines[0]["module"])
	assert.Equal(t, "abc", lines[0]["session_id"])
	assert.InDelta(t, 2, lines[0]["channels"], 0)
	assert.Nil(t, lines[0]["error"])
}

func TestDomainFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	l := logger.NewSlogLogger(buf, logger.LogLevelInfo, time.UTC)
	l.Warn("process failed", logger.StreamID("cam-0"), logger.Code(-3))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "cam-0", lines[0]["stream_id"])
	assert.InDelta(t, -3, lines[0]["code"], 0)
	assert.Equal(t, "WARN", lines[0]["level"])
}

func TestModuleLevels(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "lvacfs.log")
	cl, err := logger.NewCentralLogger(&logger.LoggingConfig{
		DefaultLevel: "info",
		ModuleLevels: map[string]string{"lvacfs": "trace"},
		Console:      &logger.ConsoleOutput{Enabled: false},
		FileOutput:   &logger.FileOutput{Enabled: true, Path: path, Level: "trace"},
	})
	require.NoError(t, err)

	cl.Module("lvacfs").Trace("symbol bound")
	cl.Module("analysis").Debug("hidden")
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"TRACE"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestCentralLoggerFileOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "lvacfs.log")
	cl, err := logger.NewCentralLogger(&logger.LoggingConfig{
		DefaultLevel: "debug",
		Timezone:     "UTC",
		Console:      &logger.ConsoleOutput{Enabled: false},
		FileOutput: &logger.FileOutput{
			Enabled: true,
			Path:    path,
			Level:   "debug",
			MaxSize: 1,
		},
	})
	require.NoError(t, err)

	cl.Module("lvacfs").Info("initialized", logger.String("path", "/odm/etc/lvacfs_params"))
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"module":"lvacfs"`)
	assert.Contains(t, string(data), `"msg":"initialized"`)
}

func TestCentralLoggerRejectsBadTimezone(t *testing.T) {
	t.Parallel()

	_, err := logger.NewCentralLogger(&logger.LoggingConfig{Timezone: "Not/AZone"})
	require.Error(t, err)

	_, err = logger.NewCentralLogger(nil)
	require.Error(t, err)
}
