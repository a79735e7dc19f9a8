package api

import (
	"net/http"

	"github.com/Conceptual-Machines/lyric-composer/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/lyric-composer/internal/api/middleware"
	"github.com/Conceptual-Machines/lyric-composer/internal/composer"
	"github.com/Conceptual-Machines/lyric-composer/internal/config"
	"github.com/Conceptual-Machines/lyric-composer/internal/generation"
	"github.com/Conceptual-Machines/lyric-composer/internal/metrics"
	"github.com/Conceptual-Machines/lyric-composer/internal/session"
	webhandlers "github.com/Conceptual-Machines/lyric-composer/internal/web/handlers"
	"github.com/gin-gonic/gin"
)

const composerPath = "/lyric_generator/"

func SetupRouter(cfg *config.Config, recorder *metrics.Recorder, version string) *gin.Engine {
	if recorder == nil {
		recorder = metrics.NewRecorder(nil)
	}

	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(recorder))

	// CORS middleware
	router.Use(apimiddleware.CORS(cfg.CORSAllowedOrigins))

	generationClient := generation.NewClient(cfg.GenerationBaseURL, cfg.GenerationTimeout, recorder)

	// Health check
	healthHandler := handlers.NewHealthHandler(generationClient.Endpoint())
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version, cfg.Environment)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, composerPath)
	})

	// Composer pages and htmx fragments
	store := session.NewFilesystemStore(cfg.SessionDir, cfg.SessionSecret, cfg.IsProduction())
	dispatcher := composer.NewDispatcher(composer.NewComposer(generationClient))
	composerHandler := webhandlers.NewComposerHandler(store, dispatcher)

	lyrics := router.Group(composerPath)
	{
		lyrics.GET("/", composerHandler.Index)
		lyrics.POST("/params/:name", composerHandler.Param)
		lyrics.POST("/generate", composerHandler.Generate)
		lyrics.POST("/accept/:index", composerHandler.Accept)
		lyrics.POST("/draft", composerHandler.EditDraft)
		lyrics.POST("/reset", composerHandler.Reset)
		lyrics.POST("/end_page", composerHandler.EndPage)
	}

	return router
}
