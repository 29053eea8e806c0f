package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/spediak/spediak-backend/internal/api/handlers"
	appMiddleware "github.com/spediak/spediak-backend/internal/api/middlewares"
	"github.com/spediak/spediak-backend/internal/config"
	"github.com/spediak/spediak-backend/internal/core"
	ingestor "github.com/spediak/spediak-backend/internal/core/ingestion_engine"
	"github.com/spediak/spediak-backend/internal/generation"
	"github.com/spediak/spediak-backend/internal/lease"
	"github.com/spediak/spediak-backend/internal/sop"
	"github.com/spediak/spediak-backend/internal/usage"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, obj core.ObjectClient, sopExtractor, knIngestor ingestor.Ingestor, resolver *sop.Resolver, gate *usage.Gate, leases *lease.Manager, genSvc *generation.Service) *Server {
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	generateHandler := handlers.NewGenerateHandler(genSvc)
	inspectionHandler := handlers.NewInspectionHandler(db)
	sopHandler := handlers.NewSopHandler(resolver)
	subscriptionHandler := handlers.NewSubscriptionHandler(gate)
	adminHandler := handlers.NewAdminHandler(db, obj, sopExtractor, knIngestor, leases, cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTAuth(cfg.JWTSecret))

			protected.Post("/generate-statement", generateHandler.GenerateStatement)
			protected.Post("/generate-pre-description", generateHandler.GeneratePreDescription)
			protected.Post("/generate-ddid", generateHandler.GenerateDDID)

			protected.Post("/inspections", inspectionHandler.Create)
			protected.Get("/inspections", inspectionHandler.List)
			protected.Get("/inspections/{id}", inspectionHandler.Get)
			protected.Delete("/inspections/{id}", inspectionHandler.Delete)

			protected.Get("/sop/active", sopHandler.Active)
			protected.Get("/sop/context", sopHandler.Context)

			protected.Get("/subscription", subscriptionHandler.Get)

			// admin endpoints
			protected.Group(func(admin chi.Router) {
				admin.Use(appMiddleware.AdminOnly(db))

				admin.Post("/admin/sop/upload", adminHandler.UploadSopDocument)
				admin.Get("/admin/sop/documents", adminHandler.ListSopDocuments)
				admin.Delete("/admin/sop/documents/{id}", adminHandler.DeleteSopDocument)
				admin.Get("/admin/sop/assignments", adminHandler.GetAssignment)
				admin.Put("/admin/sop/assignments", adminHandler.PutAssignment)
				admin.Delete("/admin/sop/assignments/{id}", adminHandler.DeleteAssignment)
				admin.Put("/admin/sop/default", adminHandler.PutDefault)

				admin.Post("/admin/knowledge/upload", adminHandler.UploadKnowledgeDocument)
				admin.Delete("/admin/knowledge/{id}", adminHandler.DeleteKnowledgeDocument)

				admin.Get("/admin/prompt", adminHandler.GetPromptTemplate)
				admin.Put("/admin/prompt", adminHandler.PutPromptTemplate)
				admin.Get("/admin/prompt/versions", adminHandler.ListPromptVersions)
			})
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
