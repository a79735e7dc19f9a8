package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/lyric-composer/internal/api"
	"github.com/Conceptual-Machines/lyric-composer/internal/config"
	"github.com/Conceptual-Machines/lyric-composer/internal/metrics"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const sentryFlushTimeout = 2 * time.Second

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "lyric-composer@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			Debug:            !cfg.IsProduction(),
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Session cookies carry the draft id
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	if cfg.IsProduction() && cfg.UsesDefaultSessionSecret() {
		log.Println("⚠️  SESSION_SECRET not set, session cookies are signed with the development secret")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	recorder := metrics.NewRecorder(metrics.NewClient(context.Background(), cfg.Environment))
	router := api.SetupRouter(cfg, recorder, GetVersion())

	log.Printf("🚀 Starting lyric composer on port %s (generation service: %s)", cfg.Port, cfg.GenerationBaseURL)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string, len(headers))
	for k, v := range headers {
		switch strings.ToLower(k) {
		case "authorization", "cookie", "set-cookie":
			filtered[k] = "[REDACTED]"
		default:
			filtered[k] = v
		}
	}
	return filtered
}
