package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/ytgrab-go/internal/domain"
	"github.com/yourusername/ytgrab-go/internal/infrastructure"
	"github.com/yourusername/ytgrab-go/pkg/logger"
)

const infoCacheDir = "/srv/images/cache"

func newTestInfoService(backend domain.ExtractionBackend, fs afero.Fs) (*InfoService, *infrastructure.ThumbnailCache) {
	cache := infrastructure.NewThumbnailCache(fs, infoCacheDir)
	return NewInfoService(backend, cache, "/base", time.Second, zap.NewNop(), logger.NewNopMultiLogger()), cache
}

// thumbnailWriter returns an info func that writes <id>.jpg into the cache
func thumbnailWriter(fs afero.Fs, title string) func(context.Context, domain.CanonicalURL, string) (*domain.VideoInfo, error) {
	return func(_ context.Context, url domain.CanonicalURL, cacheDir string) (*domain.VideoInfo, error) {
		name := url.VideoID() + ".jpg"
		if err := afero.WriteFile(fs, filepath.Join(cacheDir, name), []byte("jpeg"), 0644); err != nil {
			return nil, err
		}
		return &domain.VideoInfo{Title: title, Thumbnail: name}, nil
	}
}

func TestInfoService_Lookup(t *testing.T) {
	fs := afero.NewMemMapFs()
	backend := &fakeBackend{info: thumbnailWriter(fs, "Hello")}
	service, cache := newTestInfoService(backend, fs)

	result, err := service.Lookup(context.Background(), "https://youtu.be/abc123")
	require.NoError(t, err)

	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", result.URL.String())
	assert.Equal(t, "Hello", result.Title)
	assert.Equal(t, "/base/images/cache/abc123.jpg", result.ThumbnailURL)
	assert.True(t, cache.Exists("abc123.jpg"))
}

func TestInfoService_LookupResetsStaleThumbnails(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(infoCacheDir, 0755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(infoCacheDir, "stale.jpg"), []byte("old"), 0644))

	var seenStale bool
	backend := &fakeBackend{info: func(_ context.Context, _ domain.CanonicalURL, cacheDir string) (*domain.VideoInfo, error) {
		seenStale, _ = afero.Exists(fs, filepath.Join(cacheDir, "stale.jpg"))
		return &domain.VideoInfo{Title: "t"}, nil
	}}
	service, _ := newTestInfoService(backend, fs)

	result, err := service.Lookup(context.Background(), "https://www.youtube.com/watch?v=abc123")
	require.NoError(t, err)

	assert.False(t, seenStale, "reset must finish before the engine runs")
	assert.Empty(t, result.ThumbnailURL)
}

func TestInfoService_InvalidURLSkipsEngine(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(infoCacheDir, 0755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(infoCacheDir, "keep.jpg"), []byte("x"), 0644))
	backend := &fakeBackend{}
	service, cache := newTestInfoService(backend, fs)

	_, err := service.Lookup(context.Background(), "https://vimeo.com/123")
	require.Error(t, err)

	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	assert.Zero(t, backend.callCount())
	assert.True(t, cache.Exists("keep.jpg"))
}

func TestInfoService_EngineFailurePreservesKind(t *testing.T) {
	engineErr := domain.NewEngineError(domain.KindEngineProcess, domain.ReasonProcessFailed, "Traceback: boom", errors.New("exit status 1"))
	backend := &fakeBackend{info: func(context.Context, domain.CanonicalURL, string) (*domain.VideoInfo, error) {
		return nil, engineErr
	}}
	service, _ := newTestInfoService(backend, afero.NewMemMapFs())

	_, err := service.Lookup(context.Background(), "https://youtu.be/abc123")
	require.Error(t, err)

	assert.Equal(t, domain.KindEngineProcess, domain.KindOf(err))
	assert.Equal(t, "Traceback: boom", domain.DetailOf(err))
}

func TestInfoService_AppliesTimeout(t *testing.T) {
	backend := &fakeBackend{info: func(ctx context.Context, _ domain.CanonicalURL, _ string) (*domain.VideoInfo, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
		return &domain.VideoInfo{Title: "t"}, nil
	}}
	service, _ := newTestInfoService(backend, afero.NewMemMapFs())

	_, err := service.Lookup(context.Background(), "https://youtu.be/abc123")
	require.NoError(t, err)
}

// sweepFailingStore reports a sweep failure but otherwise behaves
type sweepFailingStore struct {
	*infrastructure.ThumbnailCache
}

func (s sweepFailingStore) Reset() error {
	return &domain.Error{Kind: domain.KindCacheSweep, Reason: "1 of 1 files not removed"}
}

func TestInfoService_SweepFailureIsNotFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	backend := &fakeBackend{info: thumbnailWriter(fs, "Still Works")}
	store := sweepFailingStore{infrastructure.NewThumbnailCache(fs, infoCacheDir)}
	service := NewInfoService(backend, store, "", time.Second, zap.NewNop(), nil)

	result, err := service.Lookup(context.Background(), "https://youtu.be/abc123")
	require.NoError(t, err)
	assert.Equal(t, "Still Works", result.Title)
	assert.Equal(t, "/images/cache/abc123.jpg", result.ThumbnailURL)
}

// Concurrent lookups share one cache directory. A lookup that resets the
// cache while another is between writing and serving its thumbnail deletes
// that thumbnail. This is the accepted single-tenant behaviour.
func TestInfoService_ConcurrentLookupsRaceOnSharedCache(t *testing.T) {
	fs := afero.NewMemMapFs()
	written := make(chan struct{})
	proceed := make(chan struct{})

	writeFirst := thumbnailWriter(fs, "First")
	writeSecond := thumbnailWriter(fs, "Second")
	backend := &fakeBackend{info: func(ctx context.Context, url domain.CanonicalURL, cacheDir string) (*domain.VideoInfo, error) {
		if url.VideoID() == "first" {
			info, err := writeFirst(ctx, url, cacheDir)
			close(written)
			<-proceed
			return info, err
		}
		return writeSecond(ctx, url, cacheDir)
	}}
	service, cache := newTestInfoService(backend, fs)

	type outcome struct {
		result *InfoResult
		err    error
	}
	firstDone := make(chan outcome, 1)
	go func() {
		result, err := service.Lookup(context.Background(), "https://youtu.be/first")
		firstDone <- outcome{result, err}
	}()

	<-written
	require.True(t, cache.Exists("first.jpg"))

	second, err := service.Lookup(context.Background(), "https://youtu.be/second")
	require.NoError(t, err)
	close(proceed)

	first := <-firstDone
	require.NoError(t, first.err)

	assert.Equal(t, "/base/images/cache/first.jpg", first.result.ThumbnailURL)
	assert.False(t, cache.Exists("first.jpg"), "second lookup's reset removed the first thumbnail before it was served")
	assert.Equal(t, "/base/images/cache/second.jpg", second.ThumbnailURL)
	assert.True(t, cache.Exists("second.jpg"))
}
