package api

import (
	"time"

	"github.com/Project-Sylos/Nimbus/internal/api/handlers"
	apimiddleware "github.com/Project-Sylos/Nimbus/internal/api/middleware"
	"github.com/Project-Sylos/Nimbus/internal/metrics"
	"github.com/Project-Sylos/Nimbus/sdk"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router represents the HTTP API router
type Router struct {
	nimbus *sdk.Nimbus
}

// NewRouter creates a new API router
func NewRouter(nimbus *sdk.Nimbus) *Router {
	return &Router{nimbus: nimbus}
}

// SetupRoutes configures all API routes using modular handlers
func (r *Router) SetupRoutes() *chi.Mux {
	cfg := r.nimbus.GetConfig()
	router := chi.NewRouter()

	// Standard middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.RequestLogger(metrics.NewHTTPMetrics()))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Custom middleware
	router.Use(apimiddleware.CORS(cfg.API.CORSOrigins))
	router.Use(apimiddleware.RateLimit(cfg.API.RateLimit.RequestsPerSecond, cfg.API.RateLimit.Burst))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(r.nimbus.Auth())
	folderHandler := handlers.NewFolderHandler(r.nimbus)
	nodeHandler := handlers.NewNodeHandler(r.nimbus)
	fileHandler := handlers.NewFileHandler(r.nimbus)
	shareHandler := handlers.NewShareHandler(r.nimbus)
	userHandler := handlers.NewUserHandler(r.nimbus)

	// Health check
	router.Get("/health", healthHandler.HealthCheck)
	if cfg.Metrics.Enabled {
		router.Handle("/metrics", metrics.Handler())
	}

	// Signed downloads for gateways without their own URL space
	if blobHandler := handlers.NewBlobHandler(r.nimbus.Blobs()); blobHandler != nil {
		router.Get("/blobs/*", blobHandler.ServeBlob)
	}

	router.Route("/auth", func(a chi.Router) {
		a.Post("/signup", authHandler.SignUp)
		a.Post("/signin", authHandler.SignIn)
		a.With(apimiddleware.RequireAuth(r.nimbus.Auth())).Post("/signout", authHandler.SignOut)
	})

	router.Group(func(api chi.Router) {
		api.Use(apimiddleware.RequireAuth(r.nimbus.Auth()))

		api.Route("/files", func(files chi.Router) {
			files.Get("/", folderHandler.ListChildren)
			files.Get("/trashed", nodeHandler.ListTrashed)
			files.Get("/shared-with-me", shareHandler.SharedWithMe)
			files.Get("/search", nodeHandler.Search)
			files.Post("/folder", folderHandler.CreateFolder)
			files.Post("/upload", fileHandler.UploadFile)

			files.Route("/{id}", func(item chi.Router) {
				item.Get("/", nodeHandler.GetNode)
				item.Delete("/", nodeHandler.Trash)
				item.Post("/restore", nodeHandler.Restore)
				item.Delete("/permanent", nodeHandler.PermanentDelete)
				item.Patch("/rename", nodeHandler.Rename)
				item.Patch("/move", nodeHandler.Move)
				item.Get("/download", fileHandler.Download)
				item.Post("/share", shareHandler.Share)
				item.Get("/shares", shareHandler.ListShares)
				item.Delete("/shares/{userId}", shareHandler.Revoke)
			})
		})

		api.Delete("/shares/{fileId}", shareHandler.Unshare)
		api.Get("/user/storage", userHandler.Storage)
	})

	return router
}
