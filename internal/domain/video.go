package domain

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// Hosts recognized by NormalizeURL
var (
	shortHosts     = []string{"youtu.be", "www.youtu.be"}
	canonicalHosts = []string{"youtube.com", "www.youtube.com", "m.youtube.com"}
)

const (
	canonicalURLTemplate = "https://www.youtube.com/watch?v=%s"
	videoIDParam         = "v"
)

// CanonicalURL identifies a single remote video in its one normalized form.
// The zero value is not a valid URL; obtain one through NormalizeURL.
type CanonicalURL struct {
	videoID string
}

// String returns https://www.youtube.com/watch?v=<id>
func (u CanonicalURL) String() string {
	if u.videoID == "" {
		return ""
	}
	return fmt.Sprintf(canonicalURLTemplate, u.videoID)
}

// VideoID returns the video identifier
func (u CanonicalURL) VideoID() string {
	return u.videoID
}

// IsZero reports whether the URL was never normalized
func (u CanonicalURL) IsZero() bool {
	return u.videoID == ""
}

// NormalizeURL validates rawURL and rebuilds it into the canonical watch URL.
// Short links (youtu.be/<id>) and watch links (youtube.com/watch?v=<id>)
// referring to the same video yield the same value. Anything else returns
// an error wrapping ErrInvalidURL.
func NormalizeURL(rawURL string) (CanonicalURL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return CanonicalURL{}, invalidURL(rawURL, "empty url")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return CanonicalURL{}, invalidURL(rawURL, "malformed url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return CanonicalURL{}, invalidURL(rawURL, "unsupported scheme")
	}

	host := strings.ToLower(parsed.Hostname())
	var videoID string
	switch {
	case lo.Contains(shortHosts, host):
		videoID, _, _ = strings.Cut(strings.TrimPrefix(parsed.Path, "/"), "/")
	case lo.Contains(canonicalHosts, host):
		videoID = parsed.Query().Get(videoIDParam)
	default:
		return CanonicalURL{}, invalidURL(rawURL, "unsupported host")
	}

	if videoID == "" {
		return CanonicalURL{}, invalidURL(rawURL, "missing video id")
	}
	if !isValidVideoID(videoID) {
		return CanonicalURL{}, invalidURL(rawURL, "malformed video id")
	}

	return CanonicalURL{videoID: videoID}, nil
}

func isValidVideoID(id string) bool {
	for _, c := range id {
		if !isIDChar(c) {
			return false
		}
	}
	return true
}

func isIDChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func invalidURL(rawURL, reason string) error {
	return &Error{Kind: KindInvalidInput, Reason: reason, Detail: rawURL, Err: ErrInvalidURL}
}

// Format is a downloadable media format
type Format string

const (
	FormatMP4  Format = "mp4"
	FormatMP3  Format = "mp3"
	FormatWebM Format = "webm"
)

var formatContentTypes = map[Format]string{
	FormatMP4:  "video/mp4",
	FormatMP3:  "audio/mpeg",
	FormatWebM: "video/webm",
}

// ParseFormat parses a format identifier, case-insensitively
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	if !ValidateFormat(format) {
		return "", &Error{Kind: KindInvalidInput, Reason: "unsupported format", Detail: s, Err: ErrUnsupportedFormat}
	}
	return format, nil
}

// ValidateFormat checks if a format is supported
func ValidateFormat(format Format) bool {
	_, ok := formatContentTypes[format]
	return ok
}

// SupportedFormats returns all supported formats in sorted order
func SupportedFormats() []Format {
	formats := lo.Keys(formatContentTypes)
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// ContentType returns the MIME type delivered for the format
func (f Format) ContentType() string {
	if ct, ok := formatContentTypes[f]; ok {
		return ct
	}
	return "application/octet-stream"
}

// IsAudio reports whether the format carries audio only
func (f Format) IsAudio() bool {
	return f == FormatMP3
}

// SanitizeTitle keeps letters, digits, space, hyphen and underscore, in any
// script. Combining marks stay with their letters. Surrounding whitespace is
// trimmed.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, c := range title {
		if isTitleChar(c) {
			b.WriteRune(c)
		}
	}
	return strings.TrimSpace(b.String())
}

func isTitleChar(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || unicode.IsMark(c) || c == ' ' || c == '-' || c == '_'
}

// VideoInfo is the result of an info lookup
type VideoInfo struct {
	Title string `json:"title"`
	// Thumbnail is a name relative to the thumbnail cache directory, or empty.
	Thumbnail string `json:"thumbnail,omitempty"`
}

// HasThumbnail reports whether the lookup produced a cached thumbnail
func (v *VideoInfo) HasThumbnail() bool {
	return v.Thumbnail != ""
}

// DownloadRequest is a validated request to download a video
type DownloadRequest struct {
	URL    CanonicalURL
	Format Format
	Title  string // sanitized
}

// NewDownloadRequest validates and sanitizes caller input
func NewDownloadRequest(rawURL, format, title string) (*DownloadRequest, error) {
	canonical, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	sanitized := SanitizeTitle(title)
	if sanitized == "" {
		return nil, &Error{Kind: KindInvalidInput, Reason: "empty title", Detail: title, Err: ErrEmptyTitle}
	}

	return &DownloadRequest{
		URL:    canonical,
		Format: f,
		Title:  sanitized,
	}, nil
}

// FileName returns "<title> [<format>].<format>"
func (r *DownloadRequest) FileName() string {
	return AttachmentName(r.Title, r.Format)
}

// AttachmentName composes the delivered filename for an already sanitized title
func AttachmentName(sanitizedTitle string, format Format) string {
	return fmt.Sprintf("%s [%s].%s", sanitizedTitle, format, format)
}

// ContentDisposition builds the attachment header for a delivered filename.
// An ASCII name is sent as is; otherwise filename carries an ASCII fallback
// and filename* the exact UTF-8 name (RFC 5987).
func ContentDisposition(name string) string {
	fallback := asciiFileName(name)
	if fallback == name {
		return fmt.Sprintf(`attachment; filename="%s"`, name)
	}
	encoded := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback, encoded)
}

func asciiFileName(name string) string {
	ascii := strings.TrimSpace(strings.Map(func(c rune) rune {
		if c > unicode.MaxASCII {
			return -1
		}
		return c
	}, name))
	if strings.HasPrefix(ascii, "[") {
		ascii = "download " + ascii
	}
	return ascii
}
