package domain

import "context"

// ExtractionBackend resolves videos into metadata or media files
type ExtractionBackend interface {
	// Name returns the backend identifier
	Name() string

	// Check reports whether the engine can be located and launched
	Check() error

	// Info resolves metadata. A thumbnail may be written under cacheDir;
	// the returned VideoInfo references it relative to cacheDir.
	Info(ctx context.Context, url CanonicalURL, cacheDir string) (*VideoInfo, error)

	// Download writes the media in the requested format to dest
	Download(ctx context.Context, url CanonicalURL, dest string, format Format) error
}

// ThumbnailStore is the thumbnail cache handed to the info lookup
type ThumbnailStore interface {
	// Reset removes every cached thumbnail
	Reset() error

	// Dir returns the directory the engine writes thumbnails into
	Dir() string

	// PublicURL returns the route-relative URL of a cached thumbnail
	PublicURL(basePath, name string) string
}
