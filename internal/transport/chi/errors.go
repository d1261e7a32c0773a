package chi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	domkb "github.com/kailas-cloud/helpdesk/internal/domain/knowledge"
	logpkg "github.com/kailas-cloud/helpdesk/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

// errorHandler maps one class of domain errors to an HTTP response.
type errorHandler struct {
	match  func(error) bool
	handle func(w http.ResponseWriter, err error)
}

// sentinelHandler creates an errorHandler for errors.Is matching.
// withDetail exposes the wrapped message, otherwise msg is written.
func sentinelHandler(sentinel error, status int, msg string, withDetail bool) errorHandler {
	return errorHandler{
		match: func(err error) bool { return errors.Is(err, sentinel) },
		handle: func(w http.ResponseWriter, err error) {
			if withDetail {
				writeError(w, status, err.Error())
				return
			}
			writeError(w, status, msg)
		},
	}
}

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		{
			match: func(err error) bool { return errors.Is(err, domain.ErrRateLimited) },
			handle: func(w http.ResponseWriter, err error) {
				var rl *domain.RateLimitError
				if errors.As(err, &rl) {
					secs := int(math.Ceil(rl.RetryAfter.Seconds()))
					if secs < 1 {
						secs = 1
					}
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			},
		},
		sentinelHandler(domain.ErrInvalidMessage, http.StatusBadRequest, "", true),
		sentinelHandler(domain.ErrMessageTooLong, http.StatusBadRequest, "", true),
		sentinelHandler(domain.ErrMaliciousContent, http.StatusBadRequest, "Invalid content detected", false),
		sentinelHandler(domain.ErrInvalidFeedback, http.StatusBadRequest, "", true),
		sentinelHandler(domain.ErrInvalidUsagePeriod, http.StatusBadRequest, "", true),
		sentinelHandler(domain.ErrInvalidKnowledge, http.StatusBadRequest, "", true),
		sentinelHandler(domkb.ErrMalformedDocument, http.StatusBadRequest, "", true),
		sentinelHandler(domkb.ErrMissingDocument, http.StatusNotFound, "knowledge document not found", false),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "", true),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, "llm provider error", false),
		sentinelHandler(domain.ErrLLMQuotaExceeded, http.StatusTooManyRequests, "llm token budget exceeded", false),
	}
}

// handleDomainError writes the response for err, falling back to 500.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h.match(err) {
			h.handle(w, err)
			return
		}
	}
	logpkg.FromContext(r.Context()).Error("internal error",
		zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a JSON body bounded by limit bytes.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
