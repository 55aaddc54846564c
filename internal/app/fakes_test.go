package app

import (
	"context"
	"sync"

	"github.com/yourusername/ytgrab-go/internal/domain"
)

// fakeBackend dispatches to per-test functions and records calls
type fakeBackend struct {
	info     func(ctx context.Context, url domain.CanonicalURL, cacheDir string) (*domain.VideoInfo, error)
	download func(ctx context.Context, url domain.CanonicalURL, dest string, format domain.Format) error

	mu    sync.Mutex
	calls int
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Check() error { return nil }

func (f *fakeBackend) Info(ctx context.Context, url domain.CanonicalURL, cacheDir string) (*domain.VideoInfo, error) {
	f.record()
	return f.info(ctx, url, cacheDir)
}

func (f *fakeBackend) Download(ctx context.Context, url domain.CanonicalURL, dest string, format domain.Format) error {
	f.record()
	return f.download(ctx, url, dest, format)
}

func (f *fakeBackend) record() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recordingNotifier captures notifications
type recordingNotifier struct {
	mu     sync.Mutex
	ready  []string
	failed []domain.ErrorKind
}

func (n *recordingNotifier) NotifyDownloadReady(fileName string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ready = append(n.ready, fileName)
}

func (n *recordingNotifier) NotifyDownloadFailed(url string, kind domain.ErrorKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, kind)
}
