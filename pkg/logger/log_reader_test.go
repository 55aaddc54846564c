package logger

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLogLines(t *testing.T, logsDir string, category LogCategory, lines ...string) {
	t.Helper()
	path := categoryLogPath(logsDir, category, time.Now())
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
}

func TestLogReader_MissingFile(t *testing.T) {
	entries, err := NewLogReader(t.TempDir()).ReadTodayLogs(CategoryAccess, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLogReader_UnknownCategory(t *testing.T) {
	_, err := NewLogReader(t.TempDir()).ReadTodayLogs(LogCategory("../secrets"), 10)
	assert.Error(t, err)
}

func TestLogReader_LimitKeepsNewest(t *testing.T) {
	logsDir := t.TempDir()
	writeLogLines(t, logsDir, CategoryEngine,
		`{"level":"info","ts":"2026-01-01T00:00:00Z","msg":"first"}`,
		`{"level":"info","ts":"2026-01-01T00:00:01Z","msg":"second"}`,
		``,
		`{"level":"info","ts":"2026-01-01T00:00:02Z","msg":"third"}`,
	)

	entries, err := NewLogReader(logsDir).ReadTodayLogs(CategoryEngine, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Message)
	assert.Equal(t, "third", entries[1].Message)
	assert.Equal(t, "engine", entries[1].Category)
}

func TestLogReader_PlainLine(t *testing.T) {
	logsDir := t.TempDir()
	writeLogLines(t, logsDir, CategoryError, "panic: something odd")

	entries, err := NewLogReader(logsDir).ReadTodayLogs(CategoryError, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "panic: something odd", entries[0].Message)
	assert.Equal(t, "error", entries[0].Category)
}

func TestLogReader_SearchMatchesFields(t *testing.T) {
	logsDir := t.TempDir()
	writeLogLines(t, logsDir, CategoryEngine,
		`{"level":"info","msg":"engine_invocation","stderr":"ERROR: Video unavailable"}`,
		`{"level":"info","msg":"engine_invocation","stderr":""}`,
		`{"level":"warn","msg":"cache sweep incomplete"}`,
	)

	reader := NewLogReader(logsDir)

	matches, err := reader.SearchLogs(CategoryEngine, time.Now(), "video UNAVAILABLE", 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "ERROR: Video unavailable", matches[0].Fields["stderr"])

	matches, err = reader.SearchLogs(CategoryEngine, time.Now(), "warn", 0)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	matches, err = reader.SearchLogs(CategoryEngine, time.Now(), "engine_invocation", 1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
