package rest

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/spiral-worksheets/internal/config"
	"github.com/heartmarshall/spiral-worksheets/internal/transport/middleware"
)

// Handlers groups the route handlers.
type Handlers struct {
	Health    *HealthHandler
	Pipeline  *PipelineHandler
	Review    *ReviewHandler
	Worksheet *WorksheetHandler
}

// RouterDeps are the cross-cutting pieces of the router.
type RouterDeps struct {
	Tokens      middleware.TokenValidator
	RateLimiter *middleware.RateLimiter
	CORS        config.CORSConfig
	// RateLimit is the per-client budget for stage runs and worksheet
	// rendering, in requests per minute.
	RateLimit int
	Log       *slog.Logger
}

// NewRouter builds the HTTP handler. Probes are public; everything under
// /api/ requires an operator token.
func NewRouter(h Handlers, deps RouterDeps) http.Handler {
	api := http.NewServeMux()
	limited := deps.RateLimiter.Limit(deps.RateLimit)

	api.Handle("POST /api/stages/{stage}", limited(http.HandlerFunc(h.Pipeline.RunStage)))
	api.HandleFunc("GET /api/runs", h.Pipeline.Runs)
	api.HandleFunc("POST /api/review/decisions", h.Review.SetDecisions)
	api.HandleFunc("GET /api/dashboard", h.Review.Dashboard)
	api.Handle("POST /api/worksheets", limited(http.HandlerFunc(h.Worksheet.Render)))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)
	mux.Handle("/api/", middleware.Auth(deps.Tokens)(api))

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(deps.Log),
		middleware.Logger(deps.Log),
		middleware.CORS(deps.CORS),
	)(mux)
}
