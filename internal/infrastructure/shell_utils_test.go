package infrastructure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple path",
			input:    "/tmp/simple/path",
			expected: "/tmp/simple/path",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "''",
		},
		{
			name:     "path with spaces",
			input:    "/tmp/Test Video [mp4].mp4",
			expected: "'/tmp/Test Video [mp4].mp4'",
		},
		{
			name:     "single quote",
			input:    "it's a title",
			expected: `'it'"'"'s a title'`,
		},
		{
			name:     "output template",
			input:    "thumbnail:/cache/abc.%(ext)s",
			expected: "'thumbnail:/cache/abc.%(ext)s'",
		},
		{
			name:     "dollar and backtick",
			input:    "$HOME`id`",
			expected: "'$HOME`id`'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellEscape(tt.input))
		})
	}
}

func TestShellEscapeCommand(t *testing.T) {
	tests := []struct {
		name     string
		binary   string
		args     []string
		expected string
	}{
		{
			name:     "script engine info",
			binary:   "python3",
			args:     []string{"engine.py", "--info", "https://www.youtube.com/watch?v=abc123", "/var/cache/thumbs"},
			expected: "python3 engine.py --info 'https://www.youtube.com/watch?v=abc123' /var/cache/thumbs",
		},
		{
			name:     "download with spaced destination",
			binary:   "/opt/my tools/yt-dlp",
			args:     []string{"-o", "/tmp/x/Test Video [mp4].%(ext)s"},
			expected: "'/opt/my tools/yt-dlp' -o '/tmp/x/Test Video [mp4].%(ext)s'",
		},
		{
			name:     "no args",
			binary:   "yt-dlp",
			expected: "yt-dlp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellEscapeCommand(tt.binary, tt.args...))
		})
	}
}

func TestIsShellSpecialChar(t *testing.T) {
	for _, c := range shellSpecialChars {
		assert.True(t, isShellSpecialChar(c), "Expected '%c' to be a special char", c)
	}

	for _, c := range "abcABC123_-./:@=+" {
		assert.False(t, isShellSpecialChar(c), "Expected '%c' to NOT be a special char", c)
	}
}

func TestTruncateOutput(t *testing.T) {
	assert.Equal(t, "short", truncateOutput("  short\n", 10))

	long := strings.Repeat("a", 20)
	assert.Equal(t, strings.Repeat("a", 10)+"...(truncated)", truncateOutput(long, 10))

	// never splits a multi-byte rune
	assert.Equal(t, "ab...(truncated)", truncateOutput("abéééé", 3))
}
