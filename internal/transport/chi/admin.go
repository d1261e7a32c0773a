package chi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	domchat "github.com/kailas-cloud/helpdesk/internal/domain/chat"
	domconv "github.com/kailas-cloud/helpdesk/internal/domain/conversation"
	domfb "github.com/kailas-cloud/helpdesk/internal/domain/feedback"
	domusage "github.com/kailas-cloud/helpdesk/internal/domain/usage"
)

const (
	defaultFeedbackLimit = 50
	maxFeedbackLimit     = 1000
)

type conversationJSON struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	UserMessage    string    `json:"user_message"`
	BotResponse    string    `json:"bot_response"`
	Sentiment      string    `json:"sentiment"`
	MessageLength  int       `json:"message_length"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

type feedbackStatsJSON struct {
	Total         int64   `json:"total"`
	Rated         int64   `json:"rated"`
	AverageRating float64 `json:"average_rating"`
	Helpful       int64   `json:"helpful"`
	NotHelpful    int64   `json:"not_helpful"`
}

type analyticsResponse struct {
	TotalConversations    int64              `json:"total_conversations"`
	UniqueSessions        int64              `json:"unique_sessions"`
	SentimentDistribution map[string]int64   `json:"sentiment_distribution"`
	RecentConversations   []conversationJSON `json:"recent_conversations"`
	Feedback              feedbackStatsJSON  `json:"feedback"`
}

type feedbackJSON struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SessionID      string    `json:"session_id,omitempty"`
	Rating         *int      `json:"rating,omitempty"`
	Helpful        *bool     `json:"helpful,omitempty"`
	FeedbackText   string    `json:"feedback_text,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type feedbackListResponse struct {
	Items []feedbackJSON `json:"items"`
}

type usageResponse struct {
	Period          string    `json:"period"`
	PeriodStart     time.Time `json:"period_start"`
	PeriodEnd       time.Time `json:"period_end"`
	TokensUsed      int64     `json:"tokens_used"`
	TokensLimit     int64     `json:"tokens_limit"`
	TokensRemaining int64     `json:"tokens_remaining"`
	Exhausted       bool      `json:"exhausted"`
}

type knowledgeUpdateResponse struct {
	Topics int `json:"topics"`
}

type knowledgeReloadResponse struct {
	Reloaded bool `json:"reloaded"`
	Topics   int  `json:"topics"`
}

// Analytics returns the conversation and feedback overview.
func (s *Server) Analytics(w http.ResponseWriter, r *http.Request) {
	sum, err := s.analytics.Summary(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	dist := map[string]int64{
		string(domchat.Positive): 0,
		string(domchat.Negative): 0,
		string(domchat.Neutral):  0,
	}
	for k, v := range sum.Conversations.Sentiment {
		dist[string(k)] = v
	}

	recent := make([]conversationJSON, 0, len(sum.Recent))
	for i := range sum.Recent {
		recent = append(recent, toConversationJSON(&sum.Recent[i]))
	}

	fb := sum.Feedback
	writeJSON(w, http.StatusOK, analyticsResponse{
		TotalConversations:    sum.Conversations.Total,
		UniqueSessions:        sum.Conversations.UniqueSessions,
		SentimentDistribution: dist,
		RecentConversations:   recent,
		Feedback: feedbackStatsJSON{
			Total:         fb.Total,
			Rated:         fb.Rated,
			AverageRating: fb.AverageRating(),
			Helpful:       fb.Helpful,
			NotHelpful:    fb.NotHelpful,
		},
	})
}

// RecentFeedback lists the latest feedback, ?limit=N (default 50).
func (s *Server) RecentFeedback(w http.ResponseWriter, r *http.Request) {
	limit := defaultFeedbackLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxFeedbackLimit)
	}

	items, err := s.analytics.RecentFeedback(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	out := make([]feedbackJSON, 0, len(items))
	for i := range items {
		out = append(out, toFeedbackJSON(&items[i]))
	}
	writeJSON(w, http.StatusOK, feedbackListResponse{Items: out})
}

// Usage reports LLM token consumption, ?period=day|month (default day).
func (s *Server) Usage(w http.ResponseWriter, r *http.Request) {
	period, err := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	rep := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, usageResponse{
		Period:          string(rep.Period()),
		PeriodStart:     rep.PeriodStart(),
		PeriodEnd:       rep.PeriodEnd(),
		TokensUsed:      rep.TokensUsed(),
		TokensLimit:     rep.TokensLimit(),
		TokensRemaining: rep.TokensRemaining(),
		Exhausted:       rep.Exhausted(),
	})
}

// GetKnowledge returns the knowledge document currently served.
func (s *Server) GetKnowledge(w http.ResponseWriter, r *http.Request) {
	raw, err := s.knowledge.Raw(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// PutKnowledge validates, persists and swaps in a new knowledge document.
func (s *Server) PutKnowledge(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxKnowledgeBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	doc, err := s.knowledge.Replace(r.Context(), data)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, knowledgeUpdateResponse{Topics: doc.Len()})
}

// ReloadKnowledge rereads the knowledge document from its source.
func (s *Server) ReloadKnowledge(w http.ResponseWriter, r *http.Request) {
	reloaded, err := s.knowledge.Reload(r.Context(), true)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, knowledgeReloadResponse{Reloaded: reloaded, Topics: s.knowledge.TopicCount()})
}

func toConversationJSON(c *domconv.Conversation) conversationJSON {
	return conversationJSON{
		ID:             c.ID(),
		SessionID:      c.SessionID(),
		UserMessage:    c.UserMessage(),
		BotResponse:    c.BotResponse(),
		Sentiment:      string(c.Sentiment()),
		MessageLength:  c.MessageLength(),
		ResponseTimeMs: c.ResponseTime().Milliseconds(),
		CreatedAt:      c.CreatedAt(),
	}
}

func toFeedbackJSON(f *domfb.Feedback) feedbackJSON {
	out := feedbackJSON{
		ID:             f.ID(),
		ConversationID: f.ConversationID(),
		SessionID:      f.SessionID(),
		Helpful:        f.Helpful(),
		FeedbackText:   f.Text(),
		CreatedAt:      f.CreatedAt(),
	}
	if r := f.Rating(); r > 0 {
		out.Rating = &r
	}
	return out
}
