package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/yourusername/ytgrab-go/api/handlers"
	"github.com/yourusername/ytgrab-go/api/middleware"
	"github.com/yourusername/ytgrab-go/internal/domain"
	"github.com/yourusername/ytgrab-go/internal/infrastructure"
	"github.com/yourusername/ytgrab-go/pkg/logger"
	"github.com/yourusername/ytgrab-go/web"
)

// Dependencies groups everything the router wires into handlers
type Dependencies struct {
	Info               handlers.InfoLookup
	Downloads          handlers.Downloader
	Engine             handlers.EngineChecker
	Thumbnails         *infrastructure.ThumbnailCache
	BasePath           string
	ExposeEngineErrors bool
	EnableLogAPI       bool
	Logger             *logger.MultiLogger
}

// SetupRouter sets up the HTTP router
func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	templates, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(templates)

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger.General()))
	router.Use(middleware.AccessLog(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(deps.Engine)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		videoHandler := handlers.NewVideoHandler(deps.Info, deps.Downloads, deps.ExposeEngineErrors, deps.Logger.General())
		v1.POST("/info", videoHandler.Info)
		v1.POST("/download", videoHandler.Download)
		v1.GET("/formats", videoHandler.Formats)

		// Log endpoints expose raw engine stderr; operators opt in
		if deps.EnableLogAPI {
			logHandler := handlers.NewLogHandler(deps.Logger.GetLogsDir())
			logs := v1.Group("/logs")
			{
				logs.GET("/categories", logHandler.GetCategories)
				logs.GET("/:category", logHandler.GetLogs)
				logs.GET("/:category/search", logHandler.SearchLogs)
				logs.GET("/:category/export", logHandler.ExportLogs)
			}
		}
	}

	// Cached thumbnails, served straight from the cache filesystem
	thumbnails := afero.NewHttpFs(deps.Thumbnails.Fs()).Dir(deps.Thumbnails.Dir())
	router.StaticFS(strings.TrimSuffix(infrastructure.CacheRoute, "/"), filesOnly{thumbnails})

	// Embedded page and assets
	router.StaticFS("/static", filesOnly{http.FS(web.GetStaticFS())})
	router.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"BasePath": deps.BasePath,
			"Formats":  domain.SupportedFormats(),
		})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "not found"})
	})

	return router, nil
}

// filesOnly hides directory listings
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
