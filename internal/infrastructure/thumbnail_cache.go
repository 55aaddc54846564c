package infrastructure

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/yourusername/ytgrab-go/internal/domain"
)

// CacheRoute is the public route prefix for cached thumbnails
const CacheRoute = "/images/cache/"

// ThumbnailCache holds the thumbnails of the most recent info lookup.
// It is single-tenant: Reset clears every entry, including ones another
// in-flight lookup may still be about to serve.
type ThumbnailCache struct {
	fs  afero.Fs
	dir string
}

// NewThumbnailCache creates a cache rooted at dir on the given filesystem
func NewThumbnailCache(fs afero.Fs, dir string) *ThumbnailCache {
	return &ThumbnailCache{
		fs:  fs,
		dir: filepath.Clean(dir),
	}
}

// NewOsThumbnailCache creates a cache on the OS filesystem
func NewOsThumbnailCache(dir string) *ThumbnailCache {
	return NewThumbnailCache(afero.NewOsFs(), dir)
}

// Dir returns the cache directory
func (c *ThumbnailCache) Dir() string {
	return c.dir
}

// Fs returns the filesystem backing the cache
func (c *ThumbnailCache) Fs() afero.Fs {
	return c.fs
}

// Reset removes every regular file directly under the cache directory.
// Subdirectories and the directory itself are left alone. A failed removal
// does not stop the sweep; all failures are reported together afterwards.
func (c *ThumbnailCache) Reset() error {
	if err := c.fs.MkdirAll(c.dir, 0755); err != nil {
		return &domain.Error{
			Kind:   domain.KindCacheSweep,
			Reason: "failed to create cache directory",
			Detail: c.dir,
			Err:    err,
		}
	}

	entries, err := afero.ReadDir(c.fs, c.dir)
	if err != nil {
		return &domain.Error{
			Kind:   domain.KindCacheSweep,
			Reason: "failed to list cache directory",
			Detail: c.dir,
			Err:    err,
		}
	}

	files := lo.Filter(entries, func(entry os.FileInfo, _ int) bool {
		return entry.Mode().IsRegular()
	})

	var sweepErr error
	for _, file := range files {
		if err := c.fs.Remove(filepath.Join(c.dir, file.Name())); err != nil {
			sweepErr = multierr.Append(sweepErr, fmt.Errorf("failed to remove %s: %w", file.Name(), err))
		}
	}

	if sweepErr != nil {
		failed := len(multierr.Errors(sweepErr))
		return &domain.Error{
			Kind:   domain.KindCacheSweep,
			Reason: fmt.Sprintf("%d of %d files not removed", failed, len(files)),
			Detail: c.dir,
			Err:    sweepErr,
		}
	}

	return nil
}

// Exists reports whether a cached thumbnail is present
func (c *ThumbnailCache) Exists(name string) bool {
	base := cacheBaseName(name)
	if base == "" {
		return false
	}
	ok, err := afero.Exists(c.fs, filepath.Join(c.dir, base))
	return err == nil && ok
}

// PublicURL composes basePath + CacheRoute + escaped basename.
// It touches no filesystem and always returns a URL.
func (c *ThumbnailCache) PublicURL(basePath, name string) string {
	return strings.TrimRight(basePath, "/") + CacheRoute + url.PathEscape(cacheBaseName(name))
}

// cacheBaseName strips any directory part, whatever the separator
func cacheBaseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}
