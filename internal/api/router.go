package api

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dcastane/regportal-be/internal/api/handlers"
	"github.com/dcastane/regportal-be/internal/config"
	"github.com/dcastane/regportal-be/internal/services"
	ws "github.com/dcastane/regportal-be/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(hub *ws.Hub, userService services.UserServiceProvider, auditService services.AuditServiceProvider, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for the frontend dev server
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	auditHandler := handlers.NewAuditHandler(auditService)
	statsHandler := handlers.NewStatsHandler(userService, cfg.UploadRoot)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Simple index listing the available routes
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<h1>Registration portal backend</h1>
<ul>
  <li>POST /api/v1/auth/register</li>
  <li>POST /api/v1/auth/login</li>
  <li>GET /api/v1/auth/users</li>
  <li>DELETE /api/v1/auth/users/{id}</li>
  <li>GET /api/v1/events</li>
  <li>GET /api/v1/stats</li>
</ul>
<p>Uploads: <a href="/uploads">/uploads</a></p>`)
	})

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket audit feed
		r.Get("/ws", wsHandler.Serve)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.GetAll)
				r.Delete("/{id}", userHandler.Delete)
			})
		})

		r.Get("/events", auditHandler.GetRecent)
		r.Get("/stats", statsHandler.Get)
	})

	// Uploaded files are served read-only from disk when the local
	// backend is active; with S3 the bucket endpoint serves them.
	if cfg.StorageBackend == config.BackendLocal {
		r.Handle("/uploads/*", uploadsServer(cfg.UploadRoot))
	}

	return r
}

// uploadsServer serves files below root. Directory requests get a 404:
// reference names are the only access control on uploads, so bucket
// contents must not be enumerable.
func uploadsServer(root string) http.Handler {
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(root)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		rel := path.Clean("/" + strings.TrimPrefix(r.URL.Path, "/uploads/"))
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
