package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/inlay/pkg/attrstore"
)

// Server is the API server for storing and querying line attributions
type Server struct {
	config Config
	store  attrstore.Store
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The store is injected to allow sharing with other components.
func NewServer(config Config, store attrstore.Store, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		store:  store,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/attributions", s.handleGetAttribution)
	app.Post("/v1/attributions", s.handlePutAttribution)
	app.Delete("/v1/attributions", s.handleDeleteAttribution)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
