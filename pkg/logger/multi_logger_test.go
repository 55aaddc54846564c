package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewMultiLogger_RequiresDir(t *testing.T) {
	_, err := NewMultiLogger(MultiLoggerConfig{Level: "info"})
	assert.Error(t, err)
}

func TestMultiLogger_WritesCategoryFiles(t *testing.T) {
	logsDir := filepath.Join(t.TempDir(), "logs")
	ml, err := NewMultiLogger(MultiLoggerConfig{Level: "info", LogsDir: logsDir})
	require.NoError(t, err)

	ml.Access().Info("request", zap.String("path", "/api/v1/info"), zap.Int("status", 200))
	ml.LogEngineEvent("engine_invocation", zap.String("mode", "download"))
	ml.LogAppError("download failed", zap.String("kind", "engine_timeout"))
	require.NoError(t, ml.Close())

	for _, category := range Categories() {
		_, err := os.Stat(categoryLogPath(logsDir, category, time.Now()))
		assert.NoError(t, err, string(category))
	}

	reader := NewLogReader(logsDir)

	access, err := reader.ReadTodayLogs(CategoryAccess, 0)
	require.NoError(t, err)
	require.Len(t, access, 1)
	assert.Equal(t, "request", access[0].Message)
	assert.Equal(t, "access", access[0].Category)
	assert.Equal(t, "/api/v1/info", access[0].Fields["path"])
	assert.NotEmpty(t, access[0].Timestamp)

	errorsLog, err := reader.ReadTodayLogs(CategoryError, 0)
	require.NoError(t, err)
	require.Len(t, errorsLog, 1)
	assert.Equal(t, "error", errorsLog[0].Level)
	assert.Equal(t, "engine_timeout", errorsLog[0].Fields["kind"])
}

func TestMultiLogger_LogErrorMirrorsToErrorFile(t *testing.T) {
	logsDir := t.TempDir()
	ml, err := NewMultiLogger(MultiLoggerConfig{Level: "info", LogsDir: logsDir})
	require.NoError(t, err)

	ml.LogError(CategoryEngine, "engine crashed")
	require.NoError(t, ml.Close())

	reader := NewLogReader(logsDir)
	engine, err := reader.ReadTodayLogs(CategoryEngine, 0)
	require.NoError(t, err)
	assert.Len(t, engine, 1)

	errorsLog, err := reader.ReadTodayLogs(CategoryError, 0)
	require.NoError(t, err)
	assert.Len(t, errorsLog, 1)
}

func TestMultiLogger_ErrorCategoryDropsInfo(t *testing.T) {
	logsDir := t.TempDir()
	ml, err := NewMultiLogger(MultiLoggerConfig{Level: "debug", LogsDir: logsDir})
	require.NoError(t, err)

	ml.Error().Info("not an error")
	require.NoError(t, ml.Close())

	entries, err := NewLogReader(logsDir).ReadTodayLogs(CategoryError, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNopMultiLogger(t *testing.T) {
	ml := NewNopMultiLogger()

	assert.NotPanics(t, func() {
		ml.LogAppError("boom")
		ml.LogEngineEvent("engine_invocation")
		ml.General().Info("hello")
	})
	assert.NoError(t, ml.Close())
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory(CategoryEngine))
	assert.False(t, ValidCategory(LogCategory("download")))
}
