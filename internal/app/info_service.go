package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/ytgrab-go/internal/domain"
	"github.com/yourusername/ytgrab-go/pkg/logger"
)

// InfoResult is a resolved video ready for the caller
type InfoResult struct {
	URL   domain.CanonicalURL
	Title string
	// ThumbnailURL is the public URL of the cached thumbnail, or "" when the
	// engine did not produce one
	ThumbnailURL string
}

// InfoService resolves video metadata through the extraction backend.
// Each lookup clears the shared thumbnail cache first; concurrent lookups
// may therefore delete each other's thumbnails.
type InfoService struct {
	backend     domain.ExtractionBackend
	cache       domain.ThumbnailStore
	basePath    string
	timeout     time.Duration
	logger      *zap.Logger
	eventLogger *logger.MultiLogger
}

// NewInfoService creates a new info service
func NewInfoService(
	backend domain.ExtractionBackend,
	cache domain.ThumbnailStore,
	basePath string,
	timeout time.Duration,
	logger *zap.Logger,
	eventLogger *logger.MultiLogger,
) *InfoService {
	return &InfoService{
		backend:     backend,
		cache:       cache,
		basePath:    basePath,
		timeout:     timeout,
		logger:      logger,
		eventLogger: eventLogger,
	}
}

// Lookup normalizes rawURL, resets the thumbnail cache and asks the engine
// for the title and thumbnail
func (s *InfoService) Lookup(ctx context.Context, rawURL string) (*InfoResult, error) {
	url, err := domain.NormalizeURL(rawURL)
	if err != nil {
		s.logger.Debug("Rejected info request", zap.String("url", rawURL), zap.Error(err))
		return nil, err
	}

	if err := s.cache.Reset(); err != nil {
		s.logger.Warn("Thumbnail cache sweep incomplete",
			zap.String("dir", s.cache.Dir()),
			zap.Error(err))
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	info, err := s.backend.Info(ctx, url, s.cache.Dir())
	if err != nil {
		s.logFailure(url, err)
		return nil, fmt.Errorf("info lookup failed: %w", err)
	}

	result := &InfoResult{
		URL:   url,
		Title: info.Title,
	}
	if info.HasThumbnail() {
		result.ThumbnailURL = s.cache.PublicURL(s.basePath, info.Thumbnail)
	}

	s.logger.Info("Video info resolved",
		zap.String("url", url.String()),
		zap.String("title", info.Title),
		zap.Bool("thumbnail", info.HasThumbnail()),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}

func (s *InfoService) logFailure(url domain.CanonicalURL, err error) {
	fields := []zap.Field{
		zap.String("operation", "info"),
		zap.String("url", url.String()),
		zap.String("backend", s.backend.Name()),
		zap.String("kind", string(domain.KindOf(err))),
		zap.String("detail", domain.DetailOf(err)),
		zap.Error(err),
	}
	if s.eventLogger != nil {
		s.eventLogger.LogError(logger.CategoryEngine, "Info lookup failed", fields...)
	}
	s.logger.Error("Info lookup failed", fields...)
}
