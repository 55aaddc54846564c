package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/yourusername/ytgrab-go/internal/app"
	"github.com/yourusername/ytgrab-go/internal/domain"
)

// InfoLookup resolves video metadata
type InfoLookup interface {
	Lookup(ctx context.Context, rawURL string) (*app.InfoResult, error)
}

// Downloader produces request-scoped artifacts
type Downloader interface {
	Download(ctx context.Context, in app.DownloadInput) (*app.Artifact, error)
}

// VideoHandler handles info and download requests
type VideoHandler struct {
	info               InfoLookup
	downloads          Downloader
	exposeEngineErrors bool
	logger             *zap.Logger
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(info InfoLookup, downloads Downloader, exposeEngineErrors bool, logger *zap.Logger) *VideoHandler {
	return &VideoHandler{
		info:               info,
		downloads:          downloads,
		exposeEngineErrors: exposeEngineErrors,
		logger:             logger,
	}
}

// InfoRequest represents a request for video metadata
type InfoRequest struct {
	URL string `json:"url" binding:"required"`
}

// InfoResponse represents a successful info lookup
type InfoResponse struct {
	Success   bool    `json:"success"`
	Title     string  `json:"title"`
	Thumbnail *string `json:"thumbnail"`
	URL       string  `json:"url"`
}

// DownloadRequest represents a request to download a video
type DownloadRequest struct {
	URL    string `json:"url" binding:"required"`
	Format string `json:"format" binding:"required"`
	Title  string `json:"title" binding:"required"`
}

// Info handles POST /api/v1/info
func (h *VideoHandler) Info(c *gin.Context) {
	var req InfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.InvalidInputf("invalid request body: %v", err), false)
		return
	}

	result, err := h.info.Lookup(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err, h.exposeEngineErrors)
		return
	}

	response := InfoResponse{
		Success: true,
		Title:   result.Title,
		URL:     result.URL.String(),
	}
	if result.ThumbnailURL != "" {
		response.Thumbnail = &result.ThumbnailURL
	}

	c.JSON(http.StatusOK, response)
}

// Download handles POST /api/v1/download and streams the media file.
// The artifact is released on every exit path, including client disconnects.
func (h *VideoHandler) Download(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.InvalidInputf("invalid request body: %v", err), false)
		return
	}

	artifact, err := h.downloads.Download(c.Request.Context(), app.DownloadInput{
		URL:    req.URL,
		Format: req.Format,
		Title:  req.Title,
	})
	if err != nil {
		respondError(c, err, false)
		return
	}
	defer artifact.Release()

	c.Header("Content-Disposition", domain.ContentDisposition(artifact.Name()))
	c.Header("Content-Type", artifact.ContentType())
	c.Header("Content-Length", strconv.FormatInt(artifact.Size(), 10))
	c.Status(http.StatusOK)

	written, err := artifact.WriteTo(c.Writer)
	if err != nil {
		h.logger.Warn("Artifact stream interrupted",
			zap.String("file", artifact.Name()),
			zap.Int64("written", written),
			zap.Int64("size", artifact.Size()),
			zap.Error(err))
	}
}

// Formats handles GET /api/v1/formats
func (h *VideoHandler) Formats(c *gin.Context) {
	items := lo.Map(domain.SupportedFormats(), func(f domain.Format, _ int) gin.H {
		return gin.H{
			"format":       f,
			"content_type": f.ContentType(),
			"audio_only":   f.IsAudio(),
		}
	})
	c.JSON(http.StatusOK, gin.H{"formats": items})
}
