// Package chi exposes the helpdesk over HTTP using the chi router.
package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/metrics"
	analyticsuc "github.com/kailas-cloud/helpdesk/internal/usecase/analytics"
	chatuc "github.com/kailas-cloud/helpdesk/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/helpdesk/internal/usecase/health"
	knowledgeuc "github.com/kailas-cloud/helpdesk/internal/usecase/knowledge"
	ratelimituc "github.com/kailas-cloud/helpdesk/internal/usecase/ratelimit"
	usageuc "github.com/kailas-cloud/helpdesk/internal/usecase/usage"
)

// Rate limit scopes.
const (
	ScopeChat     = "chat"
	ScopeFeedback = "feedback"
)

const (
	maxChatBody      = 10 << 10
	maxKnowledgeBody = 1 << 20
)

// Options configures the HTTP surface.
type Options struct {
	APIKeys       []string
	SessionCookie SessionCookie
	HSTS          bool // send Strict-Transport-Security
}

// Server holds the HTTP handlers.
type Server struct {
	chat          *chatuc.Service
	knowledge     *knowledgeuc.Service
	analytics     *analyticsuc.Service
	health        *healthuc.Service
	usage         *usageuc.Service
	limiter       *ratelimituc.Limiter
	opts          Options
	logger        *zap.Logger
	errorHandlers []errorHandler
	metrics       http.Handler
}

// NewServer creates an HTTP API server. limiter can be nil (no rate limiting).
func NewServer(
	chat *chatuc.Service,
	knowledge *knowledgeuc.Service,
	analytics *analyticsuc.Service,
	health *healthuc.Service,
	usage *usageuc.Service,
	limiter *ratelimituc.Limiter,
	opts Options,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		chat:      chat,
		knowledge: knowledge,
		analytics: analytics,
		health:    health,
		usage:     usage,
		limiter:   limiter,
		opts:      opts,
		logger:    logger,
		metrics:   promhttp.Handler(),
	}
	s.errorHandlers = defaultErrorHandlers()
	return s
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(SecurityHeaders(s.opts.HSTS))
	r.Use(metrics.Middleware())

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(s.opts.SessionCookie))
		r.Get("/", s.Index)
		r.Post("/chat", s.Chat)
		r.Post("/feedback", s.Feedback)
	})
	r.Post("/search", s.Search)

	r.Route("/admin", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(s.opts.APIKeys))
		r.Get("/analytics", s.Analytics)
		r.Get("/feedback", s.RecentFeedback)
		r.Get("/usage", s.Usage)
		r.Get("/knowledge", s.GetKnowledge)
		r.Put("/knowledge", s.PutKnowledge)
		r.Post("/knowledge/reload", s.ReloadKnowledge)
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// allow applies the per-client limit for scope; a non-nil error has been written.
func (s *Server) allow(w http.ResponseWriter, r *http.Request, scope string) bool {
	if s.limiter == nil {
		return true
	}
	if err := s.limiter.Allow(r.Context(), scope, clientIP(r)); err != nil {
		s.handleDomainError(w, r, err)
		return false
	}
	return true
}

