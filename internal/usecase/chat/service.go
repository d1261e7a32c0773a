// Package chat answers support messages and records the exchanges.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	domchat "github.com/kailas-cloud/helpdesk/internal/domain/chat"
	domconv "github.com/kailas-cloud/helpdesk/internal/domain/conversation"
	domfb "github.com/kailas-cloud/helpdesk/internal/domain/feedback"
	"github.com/kailas-cloud/helpdesk/internal/metrics"
)

// Config tunes reply generation.
type Config struct {
	SystemPrompt     string
	HistoryTurns     int
	MaxMessageLength int
}

// Request is one incoming chat message.
type Request struct {
	SessionID string
	Message   string
	ClientIP  string
	UserAgent string
}

// Reply is the answer to a Request.
type Reply struct {
	ConversationID string
	Response       string
	Source         string // metrics.SourceLLM, SourceFallback or SourceCanned
}

// FeedbackInput is a feedback submission.
type FeedbackInput struct {
	ConversationID string
	SessionID      string
	Rating         *int
	Helpful        *bool
	Text           string
}

// Service orchestrates retrieval, completion, fallback and persistence.
type Service struct {
	knowledge     KnowledgeSearcher
	completer     domain.Completer
	responder     *domchat.Responder
	conversations ConversationRepository
	feedback      FeedbackRepository
	cfg           Config
	logger        *zap.Logger

	newID func() string
	now   func() time.Time
}

// New creates a Service. completer can be nil (LLM disabled);
// responder nil uses the built-in canned replies.
func New(
	knowledge KnowledgeSearcher,
	completer domain.Completer,
	responder *domchat.Responder,
	conversations ConversationRepository,
	feedback FeedbackRepository,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if responder == nil {
		responder = domchat.DefaultResponder()
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = domchat.DefaultMaxLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		knowledge:     knowledge,
		completer:     completer,
		responder:     responder,
		conversations: conversations,
		feedback:      feedback,
		cfg:           cfg,
		logger:        logger,
		newID:         uuid.NewString,
		now:           time.Now,
	}
}

// Reply validates the message and produces an answer. Only validation
// errors are returned: provider and storage failures degrade silently.
func (s *Service) Reply(ctx context.Context, req Request) (Reply, error) {
	start := s.now()

	msg, err := domchat.NewMessage(req.Message, s.cfg.MaxMessageLength)
	if err != nil {
		return Reply{}, err
	}

	snippets := s.knowledge.Search(msg.Text())

	response, source := s.answer(ctx, req.SessionID, msg, snippets)

	conv, err := domconv.New(domconv.Exchange{
		ID:           s.newID(),
		SessionID:    req.SessionID,
		Message:      msg,
		Response:     response,
		ResponseTime: s.now().Sub(start),
		IP:           req.ClientIP,
		UserAgent:    req.UserAgent,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return Reply{}, fmt.Errorf("build conversation: %w", err)
	}
	if err := s.conversations.Save(ctx, &conv); err != nil {
		s.logger.Error("Failed to save conversation",
			zap.String("conversation_id", conv.ID()),
			zap.Error(err),
		)
	}

	metrics.ChatRepliesTotal.WithLabelValues(source).Inc()

	return Reply{ConversationID: conv.ID(), Response: response, Source: source}, nil
}

func (s *Service) answer(
	ctx context.Context, sessionID string, msg domchat.Message, snippets []string,
) (string, string) {
	if s.completer != nil {
		history := s.history(ctx, sessionID)
		prompt := BuildPrompt(s.cfg.SystemPrompt, snippets, history, msg.Text())

		completion, err := s.completer.Complete(ctx, prompt)
		if err == nil && completion.Content != "" {
			return completion.Content, metrics.SourceLLM
		}
		s.logger.Error("LLM completion failed, falling back",
			zap.Int("snippets", len(snippets)),
			zap.Error(err),
		)
	}

	if len(snippets) > 0 {
		return FormatSnippets(snippets), metrics.SourceFallback
	}
	reply, _ := s.responder.Reply(msg.Text())
	return reply, metrics.SourceCanned
}

func (s *Service) history(ctx context.Context, sessionID string) []domconv.Conversation {
	if s.cfg.HistoryTurns <= 0 || sessionID == "" {
		return nil
	}
	h, err := s.conversations.History(ctx, sessionID, s.cfg.HistoryTurns)
	if err != nil {
		s.logger.Warn("Failed to load conversation history", zap.Error(err))
		return nil
	}
	return h
}

// SubmitFeedback validates and stores feedback for an existing conversation.
func (s *Service) SubmitFeedback(ctx context.Context, in FeedbackInput) (domfb.Feedback, error) {
	f, err := domfb.New(domfb.Input{
		ID:             s.newID(),
		ConversationID: in.ConversationID,
		SessionID:      in.SessionID,
		Rating:         in.Rating,
		Helpful:        in.Helpful,
		Text:           in.Text,
		CreatedAt:      s.now(),
	})
	if err != nil {
		return domfb.Feedback{}, err
	}

	ok, err := s.conversations.Exists(ctx, in.ConversationID)
	if err != nil {
		return domfb.Feedback{}, fmt.Errorf("lookup conversation: %w", err)
	}
	if !ok {
		return domfb.Feedback{}, fmt.Errorf("conversation %s: %w", in.ConversationID, domain.ErrNotFound)
	}

	if err := s.feedback.Save(ctx, &f); err != nil {
		return domfb.Feedback{}, fmt.Errorf("save feedback: %w", err)
	}
	return f, nil
}
