package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/yourusername/ytgrab-go/internal/domain"
	"github.com/yourusername/ytgrab-go/pkg/logger"
)

// DownloadInput is the raw caller input of a download request
type DownloadInput struct {
	URL    string
	Format string
	Title  string
}

// Notifier is told about finished downloads
type Notifier interface {
	NotifyDownloadReady(fileName string)
	NotifyDownloadFailed(url string, kind domain.ErrorKind)
}

// DownloadOrchestrator turns a download request into a request-scoped artifact
type DownloadOrchestrator struct {
	backend     domain.ExtractionBackend
	fs          afero.Fs
	tempDir     string
	timeout     time.Duration
	notifier    Notifier
	logger      *zap.Logger
	eventLogger *logger.MultiLogger
}

// NewDownloadOrchestrator creates a new download orchestrator.
// An empty tempDir means the OS temp directory; notifier may be nil.
func NewDownloadOrchestrator(
	backend domain.ExtractionBackend,
	fs afero.Fs,
	tempDir string,
	timeout time.Duration,
	notifier Notifier,
	logger *zap.Logger,
	eventLogger *logger.MultiLogger,
) *DownloadOrchestrator {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &DownloadOrchestrator{
		backend:     backend,
		fs:          fs,
		tempDir:     tempDir,
		timeout:     timeout,
		notifier:    notifier,
		logger:      logger,
		eventLogger: eventLogger,
	}
}

// Download validates the input, runs the engine and returns the artifact.
// The engine call ignores request cancellation but keeps its own timeout;
// when the request was cancelled in the meantime the artifact is removed
// and the cancellation is returned.
func (o *DownloadOrchestrator) Download(ctx context.Context, in DownloadInput) (*Artifact, error) {
	req, err := domain.NewDownloadRequest(in.URL, in.Format, in.Title)
	if err != nil {
		o.logger.Debug("Rejected download request",
			zap.String("url", in.URL),
			zap.String("format", in.Format),
			zap.Error(err))
		return nil, err
	}

	requestID := uuid.New().String()
	dir := filepath.Join(o.tempDir, requestID)
	if err := o.fs.MkdirAll(dir, 0755); err != nil {
		return nil, &domain.Error{Kind: domain.KindInternal, Reason: "failed to create request directory", Detail: dir, Err: err}
	}
	dest := filepath.Join(dir, req.FileName())

	log := o.logger.With(
		zap.String("request_id", requestID),
		zap.String("url", req.URL.String()),
		zap.String("format", string(req.Format)))
	log.Info("Download started", zap.String("backend", o.backend.Name()))

	engineCtx := context.WithoutCancel(ctx)
	if o.timeout > 0 {
		var cancel context.CancelFunc
		engineCtx, cancel = context.WithTimeout(engineCtx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := o.backend.Download(engineCtx, req.URL, dest, req.Format); err != nil {
		o.discard(dir, log)
		o.fail(req, err, log)
		return nil, fmt.Errorf("download failed: %w", err)
	}

	size, err := o.artifactSize(dest)
	if err != nil {
		o.discard(dir, log)
		o.fail(req, err, log)
		return nil, fmt.Errorf("download failed: %w", err)
	}

	artifact := &Artifact{
		fs:     o.fs,
		path:   dest,
		dir:    dir,
		name:   req.FileName(),
		format: req.Format,
		size:   size,
		logger: o.logger,
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		artifact.Release()
		log.Info("Download cancelled by caller, artifact removed", zap.Error(ctxErr))
		return nil, fmt.Errorf("download cancelled: %w", ctxErr)
	}

	log.Info("Download ready",
		zap.String("file", artifact.Name()),
		zap.Int64("size", size),
		zap.Duration("duration", time.Since(start)))

	if o.notifier != nil {
		o.notifier.NotifyDownloadReady(artifact.Name())
	}

	return artifact, nil
}

// artifactSize requires dest to be a non-empty regular file
func (o *DownloadOrchestrator) artifactSize(dest string) (int64, error) {
	info, err := o.fs.Stat(dest)
	if err != nil {
		return 0, &domain.Error{Kind: domain.KindArtifactMissing, Reason: "output file not found", Detail: dest, Err: domain.ErrArtifactMissing}
	}
	if !info.Mode().IsRegular() || info.Size() == 0 {
		return 0, &domain.Error{Kind: domain.KindArtifactMissing, Reason: "output file is empty", Detail: dest, Err: domain.ErrArtifactMissing}
	}
	return info.Size(), nil
}

func (o *DownloadOrchestrator) discard(dir string, log *zap.Logger) {
	if err := o.fs.RemoveAll(dir); err != nil {
		log.Error("Failed to remove request directory", zap.String("dir", dir), zap.Error(err))
	}
}

func (o *DownloadOrchestrator) fail(req *domain.DownloadRequest, err error, log *zap.Logger) {
	kind := domain.KindOf(err)
	fields := []zap.Field{
		zap.String("operation", "download"),
		zap.String("backend", o.backend.Name()),
		zap.String("kind", string(kind)),
		zap.String("detail", domain.DetailOf(err)),
		zap.Error(err),
	}
	if o.eventLogger != nil {
		o.eventLogger.LogError(logger.CategoryEngine, "Download failed", append(fields, zap.String("url", req.URL.String()))...)
	}
	log.Error("Download failed", fields...)

	if o.notifier != nil {
		o.notifier.NotifyDownloadFailed(req.URL.String(), kind)
	}
}
