// Package server exposes the editor service over HTTP.
//
// Routes (all bodies are JSON):
//
//	GET    /healthz                       liveness and version
//	GET    /metrics                       Prometheus metrics
//	GET    /types                         the room type catalog
//	GET    /graphs                        stored graph names
//	PUT    /graphs/{name}                 replace a graph with a document
//	GET    /graphs/{name}                 the graph document
//	DELETE /graphs/{name}                 remove a graph
//	GET    /graphs/{name}/dot             Graphviz DOT (?format=svg, ?detailed=true)
//	POST   /graphs/{name}/nodes           create a node {"type"}
//	PATCH  /graphs/{name}/nodes/{id}      change {"type"} and/or {"presentation"}
//	DELETE /graphs/{name}/nodes/{id}      delete a node
//	POST   /graphs/{name}/nodes/delete    delete {"ids"}, skipping the entrance
//	POST   /graphs/{name}/edges           connect {"parent_id", "child_id"}
//	DELETE /graphs/{name}/edges           disconnect {"parent_id", "child_id"}
//	GET    /graphs/{name}/edges/check     preview ?parent=&child= without editing
//	POST   /graphs/{name}/edges/unlink    sever edges among {"ids"}
//
// Errors are answered as {"error": {"code", "message", "reason"}}, with
// 404 for unknown graphs and nodes and 409 for refused edits.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/roomgraph/pkg/editor"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// maxBodyBytes bounds request bodies; graph documents are small.
const maxBodyBytes = 4 << 20

// Server is the HTTP API over an editor service.
type Server struct {
	svc     *editor.Service
	logger  *log.Logger
	metrics *Metrics
	router  chi.Router
}

// New creates a server. If metrics is nil, /metrics is not served and
// request counting is off. If logger is nil, log.Default() is used.
func New(svc *editor.Service, logger *log.Logger, metrics *Metrics) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{svc: svc, logger: logger, metrics: metrics}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.withLogging)

	r.Get("/healthz", handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Get("/types", s.handleTypes)

	r.Route("/graphs", func(r chi.Router) {
		r.Get("/", s.handleListGraphs)
		r.Route("/{name}", func(r chi.Router) {
			r.Put("/", s.handlePutGraph)
			r.Get("/", s.handleGetGraph)
			r.Delete("/", s.handleDeleteGraph)
			r.Get("/dot", s.handleDOT)

			r.Post("/nodes", s.handleAddNode)
			r.Post("/nodes/delete", s.handleDeleteNodes)
			r.Patch("/nodes/{id}", s.handlePatchNode)
			r.Delete("/nodes/{id}", s.handleDeleteNode)

			r.Post("/edges", s.handleConnect)
			r.Delete("/edges", s.handleDisconnect)
			r.Get("/edges/check", s.handleCheck)
			r.Post("/edges/unlink", s.handleUnlink)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.metrics != nil {
			s.metrics.requests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
		}
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
