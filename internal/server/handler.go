package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"genelink/internal/log"
)

// Handler provides the HTTP endpoints over a dataset Store.
type Handler struct {
	store *Store
	auth  *Auth
}

// NewHandler creates an API handler.
func NewHandler(store *Store, auth *Auth) *Handler {
	return &Handler{store: store, auth: auth}
}

// Routes returns an http.Handler with all API routes registered. Login and
// health are open; dataset endpoints require a bearer token.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /health", h.Health)

	mux.Handle("GET /datasets", h.auth.Middleware(http.HandlerFunc(h.ListDatasets)))
	mux.Handle("GET /datasets/{name}", h.auth.Middleware(http.HandlerFunc(h.GetDataset)))

	return mux
}

// === Request/Response Types ===

// LoginRequest is the request body for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ListDatasetsResponse is the response body for GET /datasets.
type ListDatasetsResponse struct {
	Datasets []DatasetInfo `json:"datasets"`
	Total    int           `json:"total"`
}

// ErrorResponse is the response body for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// === Handlers ===

// Login authenticates a user and issues a JWT.
// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "username and password are required", "")
		return
	}

	ok, err := h.store.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "auth_failed", "Authentication failed", err.Error())
		return
	}
	if !ok {
		log.Warn(log.CatServer, "login rejected", "user", req.Username)
		writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid credentials", "")
		return
	}

	token, expires, err := h.auth.IssueToken(req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_failed", "Failed to issue token", err.Error())
		return
	}

	log.Info(log.CatServer, "login accepted", "user", req.Username)
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expires})
}

// ListDatasets returns listing info for every stored dataset.
// GET /datasets
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	infos, err := h.store.ListDatasets()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed", "Failed to list datasets", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ListDatasetsResponse{Datasets: infos, Total: len(infos)})
}

// GetDataset returns one full cohort payload.
// GET /datasets/{name}
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	ds, err := h.store.GetDataset(name)
	var notFound *DatasetNotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, "not_found", err.Error(), "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "get_failed", "Failed to load dataset", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// Health reports liveness.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error(log.CatServer, "Failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message, details string) {
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// Server wraps the Handler with an http.Server for lifecycle management.
type Server struct {
	handler  *Handler
	server   *http.Server
	listener net.Listener
	port     int // actual port after binding (useful with :0)
}

// Config configures the API server.
type Config struct {
	// Addr is the address to listen on (e.g., ":8480").
	Addr string
	// Store persists datasets and users (required).
	Store *Store
	// Auth guards the dataset endpoints (required).
	Auth *Auth
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out response writes.
	WriteTimeout time.Duration
	// Middleware, when set, wraps the full route set (tracing, etc.).
	Middleware func(http.Handler) http.Handler
}

// NewServer creates the API server. With port 0 the OS assigns a free port;
// use Port() after NewServer to discover it.
func NewServer(cfg Config) (*Server, error) {
	handler := NewHandler(cfg.Store, cfg.Auth)

	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	port := 0
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		port = tcpAddr.Port
	}

	routes := handler.Routes()
	if cfg.Middleware != nil {
		routes = cfg.Middleware(routes)
	}

	return &Server{
		handler:  handler,
		listener: listener,
		port:     port,
		server: &http.Server{
			Handler:           routes,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      writeTimeout,
		},
	}, nil
}

// Start starts the HTTP server. It blocks until the server stops or fails.
func (s *Server) Start() error {
	log.Info(log.CatServer, "Starting dataset server", "addr", s.listener.Addr().String(), "port", s.port)
	return s.server.Serve(s.listener)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	log.Info(log.CatServer, "Stopping dataset server")
	return s.server.Shutdown(ctx)
}

// Port returns the actual port the server is listening on.
func (s *Server) Port() int {
	return s.port
}
