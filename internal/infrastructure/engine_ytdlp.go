package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/yourusername/ytgrab-go/internal/domain"
	"github.com/yourusername/ytgrab-go/pkg/logger"
)

// Format selectors handed to yt-dlp per delivered format. The fallbacks may
// pick another container; remuxing keeps the extension equal to the format.
var ytdlpFormatSelectors = map[domain.Format][]string{
	domain.FormatMP4:  {"-f", "bv*[ext=mp4]+ba[ext=m4a]/b[ext=mp4]/bv*+ba/b", "--merge-output-format", "mp4", "--remux-video", "mp4"},
	domain.FormatWebM: {"-f", "bv*[ext=webm]+ba[ext=webm]/b[ext=webm]/bv*+ba/b", "--merge-output-format", "webm", "--remux-video", "webm"},
	domain.FormatMP3:  {"-f", "ba/b", "-x", "--audio-format", "mp3"},
}

// Stderr fragments that mean the video itself cannot be resolved
var ytdlpResolutionMarkers = []string{
	"video unavailable",
	"private video",
	"has been removed",
	"is not available",
	"sign in to confirm your age",
	"members-only",
	"unsupported url",
}

// ytdlpInfo is the subset of yt-dlp's JSON dump we read
type ytdlpInfo struct {
	ID        string  `json:"id"`
	Title     *string `json:"title"`
	Uploader  string  `json:"uploader"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
}

// YTDLPBackend drives the yt-dlp command line directly
type YTDLPBackend struct {
	runner *engineRunner
}

// NewYTDLPBackend creates a backend for the given yt-dlp binary.
// args are prepended to every invocation, e.g. "--cookies <file>".
func NewYTDLPBackend(binary string, args []string, eventLogger *logger.MultiLogger) *YTDLPBackend {
	return &YTDLPBackend{
		runner: newEngineRunner(binary, args, eventLogger),
	}
}

// Name returns the backend identifier
func (b *YTDLPBackend) Name() string {
	return domain.BackendYTDLP
}

// Check reports whether yt-dlp can be located
func (b *YTDLPBackend) Check() error {
	return b.runner.check()
}

// Info dumps the video metadata and writes its thumbnail into cacheDir
func (b *YTDLPBackend) Info(ctx context.Context, url domain.CanonicalURL, cacheDir string) (*domain.VideoInfo, error) {
	thumbID := uuid.New().String()

	run, err := b.runner.run(ctx, "info", ytdlpInfoArgs(url, cacheDir, thumbID)...)
	if err != nil {
		return nil, classifyYTDLPError(err)
	}

	raw := bytes.TrimSpace(run.Stdout)
	var data ytdlpInfo
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, domain.NewEngineError(domain.KindEngineProcess, domain.ReasonDecodeFailure, string(raw), err)
	}
	if data.Title == nil {
		return nil, domain.NewEngineError(domain.KindEngineProcess, domain.ReasonDecodeFailure, string(raw), nil)
	}

	return &domain.VideoInfo{
		Title:     *data.Title,
		Thumbnail: findThumbnail(cacheDir, thumbID),
	}, nil
}

// Download fetches the media into dest, merging or extracting to the requested format
func (b *YTDLPBackend) Download(ctx context.Context, url domain.CanonicalURL, dest string, format domain.Format) error {
	args, err := ytdlpDownloadArgs(url, dest, format)
	if err != nil {
		return err
	}
	if _, err := b.runner.run(ctx, "download", args...); err != nil {
		return classifyYTDLPError(err)
	}
	return nil
}

func ytdlpInfoArgs(url domain.CanonicalURL, cacheDir, thumbID string) []string {
	return []string{
		"--dump-single-json",
		"--no-simulate",
		"--skip-download",
		"--write-thumbnail",
		"--no-playlist",
		"--no-warnings",
		"-o", "thumbnail:" + filepath.Join(cacheDir, thumbID+".%(ext)s"),
		"--", url.String(),
	}
}

func ytdlpDownloadArgs(url domain.CanonicalURL, dest string, format domain.Format) ([]string, error) {
	selector, ok := ytdlpFormatSelectors[format]
	if !ok {
		return nil, &domain.Error{Kind: domain.KindInvalidInput, Reason: "unsupported format", Detail: string(format), Err: domain.ErrUnsupportedFormat}
	}

	// yt-dlp picks the extension; the selectors guarantee it equals format
	template := strings.TrimSuffix(dest, filepath.Ext(dest)) + ".%(ext)s"

	args := append([]string{}, selector...)
	args = append(args,
		"--no-playlist",
		"--no-warnings",
		"--no-progress",
		"--force-overwrites",
		"-o", template,
		"--", url.String(),
	)
	return args, nil
}

// classifyYTDLPError turns "video unavailable"-class process failures into
// resolution failures; everything else passes through unchanged
func classifyYTDLPError(err error) error {
	if !domain.IsKind(err, domain.KindEngineProcess) {
		return err
	}
	stderr := strings.ToLower(domain.DetailOf(err))
	if lo.SomeBy(ytdlpResolutionMarkers, func(marker string) bool { return strings.Contains(stderr, marker) }) {
		return domain.NewEngineError(domain.KindEngineResolution, domain.ReasonResolutionFailure, domain.DetailOf(err), err)
	}
	return err
}

// findThumbnail returns the name of the file yt-dlp wrote for thumbID, or ""
func findThumbnail(cacheDir, thumbID string) string {
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasPrefix(entry.Name(), thumbID+".") {
			return entry.Name()
		}
	}
	return ""
}
