package chi

import (
	"embed"
	"net/http"
	"strings"

	chatuc "github.com/kailas-cloud/helpdesk/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/helpdesk/internal/usecase/health"
	"github.com/kailas-cloud/helpdesk/internal/version"
)

//go:embed static/index.html
var staticFS embed.FS

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

type feedbackRequest struct {
	ConversationID string `json:"conversation_id"`
	Rating         *int   `json:"rating"`
	Helpful        *bool  `json:"helpful"`
	FeedbackText   string `json:"feedback_text"`
}

type feedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Results []string `json:"results"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// Index serves the chat page.
func (s *Server) Index(w http.ResponseWriter, _ *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// Chat answers one user message.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, ScopeChat) {
		return
	}
	var req chatRequest
	if !decodeJSON(w, r, maxChatBody, &req) {
		return
	}

	reply, err := s.chat.Reply(r.Context(), chatuc.Request{
		SessionID: SessionID(r.Context()),
		Message:   req.Message,
		ClientIP:  clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: reply.Response, ConversationID: reply.ConversationID})
}

// Feedback records a rating for a previous reply.
func (s *Server) Feedback(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, ScopeFeedback) {
		return
	}
	var req feedbackRequest
	if !decodeJSON(w, r, maxChatBody, &req) {
		return
	}

	_, err := s.chat.SubmitFeedback(r.Context(), chatuc.FeedbackInput{
		ConversationID: req.ConversationID,
		SessionID:      SessionID(r.Context()),
		Rating:         req.Rating,
		Helpful:        req.Helpful,
		Text:           req.FeedbackText,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feedbackResponse{Success: true, Message: "Feedback submitted successfully"})
}

// Search returns the raw knowledge snippets for a query.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSON(w, r, maxChatBody, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	results := s.knowledge.Search(req.Query)
	if results == nil {
		results = []string{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

// HealthCheck reports component health; anything but ok answers 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{
		Status:  string(report.Status),
		Version: version.String(),
		Checks:  checks,
	})
}

// Metrics exposes Prometheus metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}
