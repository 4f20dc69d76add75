// Package bootstrap assembles the fiber application from configuration.
package bootstrap

import (
	httpadapter "github.com/PushkarKunda/OneBox-AI/adapter/in/http"
	"github.com/PushkarKunda/OneBox-AI/config"
	"github.com/PushkarKunda/OneBox-AI/core/agent/llm"
	"github.com/PushkarKunda/OneBox-AI/infra/middleware"
	"github.com/PushkarKunda/OneBox-AI/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// NewAPI builds the fiber app with all routes registered. The returned cleanup
// closes storage clients.
func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "onebox-suggest",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             1 * 1024 * 1024,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))

	suggestHandler := httpadapter.NewSuggestHandler(
		deps.Orchestrator,
		deps.Store,
		deps.LLMClient.Model(),
		llm.DefaultEmbeddingModel,
	)
	suggestHandler.Register(app)
	httpadapter.NewHealthHandler(deps.Store).Register(app)

	return app, cleanup, nil
}
