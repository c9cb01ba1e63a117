package inspect

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/vuey/pkg/store"
)

// Option configures a Server.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	metrics     http.Handler
	checkOrigin func(*http.Request) bool
	middleware  []func(http.Handler) http.Handler
	maxBody     int64
}

// WithLogger sets the request logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(c *config) {
		c.metrics = h
	}
}

// WithCheckOrigin sets the websocket origin check. Default: same origin
// only, as in websocket.Upgrader.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(c *config) {
		c.checkOrigin = fn
	}
}

// WithMiddleware adds middleware in front of every route.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(c *config) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithMaxBodySize limits action request bodies. Default: 1 MiB.
func WithMaxBodySize(n int64) Option {
	return func(c *config) {
		c.maxBody = n
	}
}

// Server is an http.Handler exposing a registry.
type Server struct {
	registry *store.Registry
	logger   *slog.Logger
	router   chi.Router
	upgrader websocket.Upgrader
	maxBody  int64
}

// New builds the inspector for reg.
func New(reg *store.Registry, opts ...Option) *Server {
	cfg := &config{maxBody: 1 << 20}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	s := &Server{
		registry: reg,
		logger:   cfg.logger,
		maxBody:  cfg.maxBody,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.checkOrigin,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cfg.middleware...)

	r.Get("/stores", s.listStores)
	r.Route("/stores/{name}", func(r chi.Router) {
		r.Get("/", s.getStore)
		r.Get("/getters/{getter}", s.readGetter)
		r.Post("/actions/{action}", s.callAction)
		r.Get("/watch", s.watch)
	})
	r.Post("/reset-all", s.bulk(reg.ResetAll))
	r.Post("/clear-all", s.bulk(reg.ClearAll))
	if cfg.metrics != nil {
		r.Handle("/metrics", cfg.metrics)
	}

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// StoreInfo describes a store in listings.
type StoreInfo struct {
	Name     string   `json:"name"`
	Strategy string   `json:"strategy"`
	Getters  []string `json:"getters"`
	Actions  []string `json:"actions"`
	Value    any      `json:"value,omitempty"`
}

func describe(e store.Entry) StoreInfo {
	return StoreInfo{
		Name:     e.Name(),
		Strategy: e.SaveStrategy().String(),
		Getters:  e.Getters().Names(),
		Actions:  e.Actions().Names(),
	}
}

func (s *Server) listStores(w http.ResponseWriter, r *http.Request) {
	entries := s.registry.Entries()
	out := make([]StoreInfo, len(entries))
	for i, e := range entries {
		out[i] = describe(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getStore(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	info := describe(e)
	if e.Getters()["value"] != nil {
		v, err := e.Getters().Read("value")
		if err != nil {
			s.writeError(w, err)
			return
		}
		info.Value = v
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) readGetter(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	v, err := e.Getters().Read(chi.URLParam(r, "getter"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": v})
}

type actionRequest struct {
	Args []any `json:"args"`
}

func (s *Server) callAction(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req actionRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: err.Error()})
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
			return
		}
	}

	if err := e.Actions().Call(chi.URLParam(r, "action"), req.Args...); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) bulk(fn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (store.Entry, bool) {
	name := chi.URLParam(r, "name")
	e, ok := s.registry.Lookup(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("store %q not found", name)})
	}
	return e, ok
}

type errorBody struct {
	Error string `json:"error"`
}

// statusOf maps store errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrMissingAction), errors.Is(err, store.ErrMissingGetter):
		return http.StatusNotFound
	case errors.Is(err, store.ErrArgument), errors.Is(err, store.ErrUnknownProperty):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotBound):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= 500 {
		s.logger.Error("inspect request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("inspect request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
