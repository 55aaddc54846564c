package infrastructure

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yourusername/ytgrab-go/internal/domain"
)

// writeFakeEngine writes an executable shell script standing in for an engine
func writeFakeEngine(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engines are shell scripts")
	}

	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func mustNormalize(t *testing.T, raw string) domain.CanonicalURL {
	t.Helper()
	u, err := domain.NormalizeURL(raw)
	require.NoError(t, err)
	return u
}
