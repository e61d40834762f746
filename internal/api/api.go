// Package api serves the JSON endpoints behind the auction UI.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/player-auction/internal/auction"
	"github.com/jensholdgaard/player-auction/internal/clock"
	"github.com/jensholdgaard/player-auction/internal/config"
	"github.com/jensholdgaard/player-auction/internal/importer"
	"github.com/jensholdgaard/player-auction/internal/store"
)

// Prefix is the path every API route lives under.
const Prefix = "/api/v1"

// Handler holds the HTTP handlers.
type Handler struct {
	players   store.PlayerRepository
	teams     store.TeamRepository
	auction   *auction.Manager
	imports   *importer.Manager
	maxUpload int64
	logger    *slog.Logger
	tracer    trace.Tracer
	clock     clock.Clock
}

// NewHandler returns a Handler serving the given repositories and managers.
func NewHandler(
	repos *store.Repositories,
	auctionMgr *auction.Manager,
	importMgr *importer.Manager,
	cfg config.ServerConfig,
	logger *slog.Logger,
	tp trace.TracerProvider,
	clk clock.Clock,
) *Handler {
	return &Handler{
		players:   repos.Players,
		teams:     repos.Teams,
		auction:   auctionMgr,
		imports:   importMgr,
		maxUpload: cfg.MaxUploadBytes,
		logger:    logger,
		tracer:    tp.Tracer("github.com/jensholdgaard/player-auction/internal/api"),
		clock:     clk,
	}
}

// Register mounts the API routes under Prefix on r.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix(Prefix).Subrouter()

	api.HandleFunc("/players", h.ListPlayers).Methods(http.MethodGet)
	api.HandleFunc("/teams", h.ListTeams).Methods(http.MethodGet)
	api.HandleFunc("/teams/{id}", h.GetTeam).Methods(http.MethodGet)

	api.HandleFunc("/auction", h.GetAuction).Methods(http.MethodGet)
	api.HandleFunc("/auction/bids", h.PlaceBid).Methods(http.MethodPost)
	api.HandleFunc("/auction/sold", h.ConfirmSold).Methods(http.MethodPost)
	api.HandleFunc("/auction/unsold", h.ConfirmUnsold).Methods(http.MethodPost)

	api.HandleFunc("/imports", h.Import).Methods(http.MethodPost)
	api.HandleFunc("/imports/preview", h.GetPreview).Methods(http.MethodGet)
	api.HandleFunc("/imports/template", h.DownloadTemplate).Methods(http.MethodGet)

	api.Use(h.traceMiddleware, h.loggingMiddleware, corsMiddleware)
	api.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
}

// statusRecorder captures the response code for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		ctx, span := h.tracer.Start(r.Context(), r.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := h.clock.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.logger.InfoContext(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", h.clock.Now().Sub(start)),
		)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// errorBody is the shape of every error response.
type errorBody struct {
	Error string            `json:"error"`
	Links map[string]string `json:"links,omitempty"`
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, errorBody{Error: msg})
}

// respondInternal logs err and answers 500 without leaking it.
func (h *Handler) respondInternal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	trace.SpanFromContext(r.Context()).RecordError(err)
	h.logger.ErrorContext(r.Context(), msg, slog.Any("error", err))
	respondError(w, http.StatusInternalServerError, msg)
}
