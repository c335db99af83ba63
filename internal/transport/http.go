// Package transport exposes the estimating workspace as a local JSON API.
package transport

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rpggio/estimator/internal/workspace"
)

// Options configures the router.
type Options struct {
	// MCP is mounted at /mcp when set.
	MCP http.Handler
	// Auth wraps every route except /health when set.
	Auth func(http.Handler) http.Handler
	// MaxUploadSize bounds multipart request bodies. Zero means 64 MiB.
	MaxUploadSize int64
	Logger        *slog.Logger
}

// Server handles API requests against a workspace.
type Server struct {
	ws            *workspace.Service
	logger        *slog.Logger
	maxUploadSize int64
	now           func() time.Time
}

// NewServer creates the HTTP router with middleware.
func NewServer(ws *workspace.Service, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	maxUpload := opts.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = 64 << 20
	}
	srv := &Server{ws: ws, logger: logger, maxUploadSize: maxUpload, now: time.Now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))

	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}
		if opts.MCP != nil {
			r.Handle("/mcp", opts.MCP)
		}
		r.Route("/api", srv.routes)
	})

	return r
}

func (s *Server) routes(r chi.Router) {
	r.Get("/analytics", s.handleAnalytics)
	r.Get("/activity", s.handleActivity)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.handleListProjects)
		r.Post("/", s.handleCreateProject)
		r.Post("/sync", s.handleSyncProjects)

		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", s.handleGetProject)
			r.Patch("/", s.handlePatchProject)
			r.Delete("/", s.handleDeleteProject)
			r.Post("/select", s.handleSelectProject)
			r.Get("/busy", s.handleBusy)

			r.Post("/files", s.handleUpload)
			r.Delete("/files/{fileID}", s.handleDeleteFile)

			r.Post("/scans/{kind}", s.handleScan)
			r.Post("/spec/parse", s.handleParseSpec)

			r.Get("/takeoff", s.handleTakeoff)
			r.Post("/takeoff", s.handleAddItem)
			r.Patch("/takeoff/{itemID}", s.handleUpdateItem)
			r.Delete("/takeoff/{itemID}", s.handleDeleteItem)
			r.Post("/takeoff/{itemID}/accept", s.handleAcceptTableItem)
			r.Post("/takeoff/{itemID}/reject", s.handleRejectTableItem)
			r.Get("/takeoff/{itemID}/pricing", s.handlePricing)
			r.Post("/takeoff/{itemID}/price", s.handleAcceptPrice)
			r.Get("/export", s.handleExport)

			r.Post("/chat", s.handleChat)
			r.Post("/audit", s.handleAudit)
			r.Post("/outcome", s.handleOutcome)

			r.Post("/notes", s.handleAddNote)
			r.Patch("/notes/{noteID}", s.handleUpdateNote)
			r.Delete("/notes/{noteID}", s.handleDeleteNote)

			r.Get("/tables", s.handleTables)
			r.Put("/tables/{tableID}/comment", s.handleCommentTable)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
