// Package httpapi exposes the application services over REST.
package httpapi

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/itemvault/itemvault/internal/app"
	"github.com/itemvault/itemvault/internal/app/metrics"
	"github.com/itemvault/itemvault/internal/app/services/items"
	"github.com/itemvault/itemvault/internal/errors"
	"github.com/itemvault/itemvault/internal/middleware"
	"github.com/itemvault/itemvault/pkg/logger"
	"github.com/itemvault/itemvault/web"
)

// Options configures the HTTP handler.
type Options struct {
	// BasePath is the prefix the API mounts under, e.g. "/api". Empty means
	// routes mount at the root.
	BasePath       string
	AllowedOrigins []string
	RateLimit      middleware.RateLimitConfig
	// Frontend overrides the embedded frontend tree. Nil serves the bundled
	// assets; set ServeFrontend to false to disable entirely.
	Frontend      fs.FS
	ServeFrontend bool
	Logger        *logger.Logger
}

// Handler serves the REST API and the static frontend.
type Handler struct {
	app    *app.Application
	logger *logger.Logger
}

// New builds the full HTTP handler with middleware applied.
func New(application *app.Application, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &Handler{app: application, logger: log}

	router := mux.NewRouter()
	router.Use(middleware.Metrics)
	router.Use(middleware.NewTracingMiddleware(log).Handler)
	router.Use(middleware.NewCORSMiddleware(opts.AllowedOrigins).Handler)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	if opts.BasePath != "" {
		api = router.PathPrefix(opts.BasePath).Subrouter()
	}

	// Anonymous endpoints are limited by client address; authenticated
	// routes apply the limiter after auth so each user gets its own bucket.
	limiter := middleware.NewRateLimitMiddleware(opts.RateLimit)

	public := api.NewRoute().Subrouter()
	public.Use(limiter.Handler)
	public.HandleFunc("/auth/register", h.handleRegister).Methods(http.MethodPost)
	public.HandleFunc("/auth/login", h.handleLogin).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.NewAuthMiddleware(application.Auth, log).Handler)
	authed.Use(limiter.Handler)
	authed.HandleFunc("/items", h.handleListItems).Methods(http.MethodGet)
	authed.HandleFunc("/items", h.handleCreateItem).Methods(http.MethodPost)
	authed.HandleFunc("/items/{id}", h.handleGetItem).Methods(http.MethodGet)
	authed.HandleFunc("/items/{id}", h.handleUpdateItem).Methods(http.MethodPut)
	authed.HandleFunc("/items/{id}", h.handleDeleteItem).Methods(http.MethodDelete)

	if opts.ServeFrontend {
		frontend := opts.Frontend
		if frontend == nil {
			frontend = web.Static()
		}
		router.PathPrefix("/").Handler(http.FileServer(http.FS(frontend)))
	}

	return router
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   "itemvault",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	session, err := h.app.Auth.Register(r.Context(), req.Username, req.Email, req.Password, req.ConfirmPassword)
	metrics.RecordAuthAttempt("register", err == nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, session)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	session, err := h.app.Auth.Login(r.Context(), req.Email, req.Password)
	metrics.RecordAuthAttempt("login", err == nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

type itemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	created, err := h.app.Items.Create(r.Context(), middleware.GetUserID(r.Context()), req.Title, req.Description, req.Priority, req.Status)
	metrics.RecordItemOperation("create", err == nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Items.List(r.Context(), middleware.GetUserID(r.Context()))
	metrics.RecordItemOperation("list", err == nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	found, err := h.app.Items.GetByID(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"])
	metrics.RecordItemOperation("get", err == nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, found)
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var patch items.Update
	if !h.decodeJSON(w, r, &patch) {
		return
	}

	updated, err := h.app.Items.ApplyUpdate(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"], patch)
	metrics.RecordItemOperation("update", err == nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.app.Items.Delete(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"])
	metrics.RecordItemOperation("delete", err == nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Item deleted successfully",
		"item":    deleted,
	})
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, errors.Validation("Invalid request body"))
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	svcErr := errors.GetServiceError(err)
	if svcErr == nil {
		h.logger.WithError(err).Error("unhandled error")
		svcErr = errors.Internal("Internal server error", err)
	}
	h.writeJSON(w, svcErr.HTTPStatus, map[string]string{"error": svcErr.Message})
}
