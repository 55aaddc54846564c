package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/ytgrab-go/internal/domain"
	"github.com/yourusername/ytgrab-go/pkg/logger"
)

// Script engine modes
const (
	scriptInfoFlag     = "--info"
	scriptDownloadFlag = "--download"
)

// scriptInfoPayload is the JSON document printed by the script engine in info mode
type scriptInfoPayload struct {
	Title     *string `json:"title"`
	Thumbnail *string `json:"thumbnail"`
	Error     *string `json:"error"`
}

// ScriptBackend drives an external engine program through a two-mode
// command-line contract:
//
//	<binary> <args...> --info <url> <cache_dir>        prints {"title", "thumbnail"} or {"error"}
//	<binary> <args...> --download <url> <dest> <format> writes dest, exits 0
type ScriptBackend struct {
	runner *engineRunner
}

// NewScriptBackend creates a backend for the given engine program.
// args are placed before the mode flag, e.g. the script path for an interpreter.
func NewScriptBackend(binary string, args []string, eventLogger *logger.MultiLogger) *ScriptBackend {
	return &ScriptBackend{
		runner: newEngineRunner(binary, args, eventLogger),
	}
}

// Name returns the backend identifier
func (b *ScriptBackend) Name() string {
	return domain.BackendScript
}

// Check reports whether the engine binary can be located
func (b *ScriptBackend) Check() error {
	return b.runner.check()
}

// Info runs the engine in info mode and decodes its payload
func (b *ScriptBackend) Info(ctx context.Context, url domain.CanonicalURL, cacheDir string) (*domain.VideoInfo, error) {
	run, err := b.runner.run(ctx, "info", scriptInfoFlag, url.String(), cacheDir)
	if err != nil {
		return nil, err
	}

	payload, err := decodeScriptPayload(run.Stdout)
	if err != nil {
		return nil, err
	}

	info := &domain.VideoInfo{Title: *payload.Title}
	if payload.Thumbnail != nil {
		info.Thumbnail = cacheRelativeName(cacheDir, *payload.Thumbnail)
		if info.Thumbnail == "" && *payload.Thumbnail != "" {
			b.runner.logEvent("thumbnail_dropped",
				zap.String("url", url.String()),
				zap.String("thumbnail", *payload.Thumbnail))
		}
	}
	return info, nil
}

// Download runs the engine in download mode
func (b *ScriptBackend) Download(ctx context.Context, url domain.CanonicalURL, dest string, format domain.Format) error {
	_, err := b.runner.run(ctx, "download", scriptDownloadFlag, url.String(), dest, string(format))
	return err
}

// decodeScriptPayload validates an info payload. An error field wins over
// everything else; a payload without a title is a decode failure.
func decodeScriptPayload(stdout []byte) (*scriptInfoPayload, error) {
	raw := string(bytes.TrimSpace(stdout))

	var payload scriptInfoPayload
	if err := json.Unmarshal(bytes.TrimSpace(stdout), &payload); err != nil {
		return nil, domain.NewEngineError(domain.KindEngineProcess, domain.ReasonDecodeFailure, raw, err)
	}

	if payload.Error != nil {
		return nil, domain.NewEngineError(domain.KindEngineResolution, domain.ReasonResolutionFailure, *payload.Error, nil)
	}

	if payload.Title == nil {
		return nil, domain.NewEngineError(domain.KindEngineProcess, domain.ReasonDecodeFailure, raw, nil)
	}

	return &payload, nil
}

// cacheRelativeName converts an engine-reported thumbnail into a file name
// directly under cacheDir. Bare names are taken as already relative. Anything
// resolving elsewhere, nested directories included, yields "".
func cacheRelativeName(cacheDir, thumbnail string) string {
	thumbnail = strings.TrimSpace(thumbnail)
	if thumbnail == "" {
		return ""
	}

	full := thumbnail
	if !filepath.IsAbs(thumbnail) {
		full = filepath.Join(cacheDir, thumbnail)
	}

	rel, err := filepath.Rel(filepath.Clean(cacheDir), filepath.Clean(full))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	rel = filepath.ToSlash(rel)
	if strings.Contains(rel, "/") {
		return ""
	}
	return rel
}
