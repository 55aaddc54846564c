package app

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/yourusername/ytgrab-go/internal/domain"
)

// Artifact is a downloaded media file owned by one request. The holder must
// call Release on every exit path; Release is safe to call more than once.
type Artifact struct {
	fs     afero.Fs
	path   string
	dir    string
	name   string
	format domain.Format
	size   int64
	logger *zap.Logger

	releaseOnce sync.Once
	releaseErr  error
}

// Name returns the attachment filename "<title> [<format>].<format>"
func (a *Artifact) Name() string {
	return a.name
}

// Format returns the delivered format
func (a *Artifact) Format() domain.Format {
	return a.format
}

// ContentType returns the MIME type of the artifact
func (a *Artifact) ContentType() string {
	return a.format.ContentType()
}

// Size returns the artifact size in bytes
func (a *Artifact) Size() int64 {
	return a.size
}

// Path returns the artifact location on disk
func (a *Artifact) Path() string {
	return a.path
}

// WriteTo streams the artifact into w
func (a *Artifact) WriteTo(w io.Writer) (int64, error) {
	file, err := a.fs.Open(a.path)
	if err != nil {
		return 0, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer file.Close()

	return io.Copy(w, file)
}

// Release removes the artifact and its request directory
func (a *Artifact) Release() error {
	a.releaseOnce.Do(func() {
		if err := a.fs.RemoveAll(a.dir); err != nil {
			a.releaseErr = fmt.Errorf("failed to remove artifact: %w", err)
			a.logger.Error("Failed to release artifact",
				zap.String("path", a.path),
				zap.Error(err))
			return
		}
		a.logger.Debug("Artifact released", zap.String("path", a.path))
	})
	return a.releaseErr
}
