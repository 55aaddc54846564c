package infrastructure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ytgrab-go/internal/domain"
)

// fakeYTDLP writes a jpg for the thumbnail output template and dumps minimal JSON
const fakeYTDLP = `
tpl=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then tpl="$a"; fi
  prev="$a"
done
path=$(echo "${tpl#thumbnail:}" | sed 's/%(ext)s/jpg/')
printf 'jpeg' > "$path"
printf '{"id": "abc123", "title": "Fake Title", "duration": 12.5}'`

func TestYTDLPBackend_Info(t *testing.T) {
	cacheDir := t.TempDir()
	backend := NewYTDLPBackend(writeFakeEngine(t, fakeYTDLP), nil, nil)

	info, err := backend.Info(context.Background(), mustNormalize(t, "https://youtu.be/abc123"), cacheDir)
	require.NoError(t, err)

	assert.Equal(t, "Fake Title", info.Title)
	require.NotEmpty(t, info.Thumbnail)
	assert.Equal(t, ".jpg", filepath.Ext(info.Thumbnail))
	assert.FileExists(t, filepath.Join(cacheDir, info.Thumbnail))
}

func TestYTDLPBackend_InfoWithoutThumbnail(t *testing.T) {
	backend := NewYTDLPBackend(writeFakeEngine(t, `printf '{"title": "No Thumb"}'`), nil, nil)

	info, err := backend.Info(context.Background(), mustNormalize(t, "https://youtu.be/abc123"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No Thumb", info.Title)
	assert.Empty(t, info.Thumbnail)
}

func TestYTDLPBackend_InfoFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		kind   domain.ErrorKind
		reason string
	}{
		{
			name:   "unavailable video",
			body:   `echo "ERROR: [youtube] abc123: Video unavailable" >&2; exit 1`,
			kind:   domain.KindEngineResolution,
			reason: domain.ReasonResolutionFailure,
		},
		{
			name:   "private video",
			body:   `echo "ERROR: [youtube] abc123: Private video. Sign in if you've been granted access" >&2; exit 1`,
			kind:   domain.KindEngineResolution,
			reason: domain.ReasonResolutionFailure,
		},
		{
			name:   "network failure",
			body:   `echo "ERROR: Unable to download webpage: HTTP Error 503" >&2; exit 1`,
			kind:   domain.KindEngineProcess,
			reason: domain.ReasonProcessFailed,
		},
		{
			name:   "garbage output",
			body:   `printf '[download] 10%%'`,
			kind:   domain.KindEngineProcess,
			reason: domain.ReasonDecodeFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewYTDLPBackend(writeFakeEngine(t, tt.body), nil, nil)

			_, err := backend.Info(context.Background(), mustNormalize(t, "https://youtu.be/abc123"), t.TempDir())
			require.Error(t, err)

			var engineErr *domain.Error
			require.ErrorAs(t, err, &engineErr)
			assert.Equal(t, tt.kind, engineErr.Kind)
			assert.Equal(t, tt.reason, engineErr.Reason)
		})
	}
}

func TestYTDLPBackend_Download(t *testing.T) {
	// writes to the -o template with the extension filled in
	engine := writeFakeEngine(t, `
tpl=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then tpl="$a"; fi
  prev="$a"
done
path=$(echo "$tpl" | sed 's/%(ext)s/mp4/')
printf 'video bytes' > "$path"`)
	dest := filepath.Join(t.TempDir(), "Test Video [mp4].mp4")

	err := NewYTDLPBackend(engine, nil, nil).Download(context.Background(), mustNormalize(t, "https://youtu.be/abc123"), dest, domain.FormatMP4)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "video bytes", string(data))
}

func TestYTDLPInfoArgs(t *testing.T) {
	args := ytdlpInfoArgs(mustNormalize(t, "https://youtu.be/abc123"), "/srv/cache", "id-1")

	assert.Contains(t, args, "--dump-single-json")
	assert.Contains(t, args, "--skip-download")
	assert.Contains(t, args, "--write-thumbnail")
	assert.Contains(t, args, "thumbnail:"+filepath.Join("/srv/cache", "id-1.%(ext)s"))
	assert.Equal(t, []string{"--", "https://www.youtube.com/watch?v=abc123"}, args[len(args)-2:])
}

func TestYTDLPDownloadArgs(t *testing.T) {
	url := mustNormalize(t, "https://youtu.be/abc123")

	tests := []struct {
		format   domain.Format
		expected []string
	}{
		{domain.FormatMP4, []string{"--merge-output-format", "mp4", "--remux-video"}},
		{domain.FormatWebM, []string{"--merge-output-format", "webm", "--remux-video"}},
		{domain.FormatMP3, []string{"-x", "--audio-format", "mp3"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			dest := "/tmp/req/Test Video [" + string(tt.format) + "]." + string(tt.format)
			args, err := ytdlpDownloadArgs(url, dest, tt.format)
			require.NoError(t, err)

			assert.Subset(t, args, tt.expected)
			if remux := lo.IndexOf(args, "--remux-video"); remux >= 0 {
				assert.Equal(t, string(tt.format), args[remux+1])
			}
			assert.Contains(t, args, "/tmp/req/Test Video ["+string(tt.format)+"].%(ext)s")
			assert.Equal(t, "https://www.youtube.com/watch?v=abc123", args[len(args)-1])
		})
	}

	_, err := ytdlpDownloadArgs(url, "/tmp/x.avi", domain.Format("avi"))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
}

func TestClassifyYTDLPError(t *testing.T) {
	unavailable := domain.NewEngineError(domain.KindEngineProcess, domain.ReasonProcessFailed, "ERROR: This video has been removed by the uploader", nil)
	assert.Equal(t, domain.KindEngineResolution, domain.KindOf(classifyYTDLPError(unavailable)))

	generic := domain.NewEngineError(domain.KindEngineProcess, domain.ReasonProcessFailed, "ERROR: ffmpeg not found", nil)
	assert.Same(t, generic, classifyYTDLPError(generic))

	timeout := domain.NewEngineError(domain.KindEngineTimeout, domain.ReasonTimeout, "Video unavailable", context.DeadlineExceeded)
	assert.Equal(t, domain.KindEngineTimeout, domain.KindOf(classifyYTDLPError(timeout)))
}

func TestFindThumbnail(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.jpg"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "id-1.webp"), []byte("x"), 0644))

	assert.Equal(t, "id-1.webp", findThumbnail(dir, "id-1"))
	assert.Empty(t, findThumbnail(dir, "id-2"))
	assert.Empty(t, findThumbnail(filepath.Join(dir, "missing"), "id-1"))
}

func TestYTDLPBackend_Name(t *testing.T) {
	var backend domain.ExtractionBackend = NewYTDLPBackend("yt-dlp", nil, nil)
	assert.Equal(t, domain.BackendYTDLP, backend.Name())
}
