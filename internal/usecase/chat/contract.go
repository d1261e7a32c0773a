package chat

import (
	"context"

	domconv "github.com/kailas-cloud/helpdesk/internal/domain/conversation"
	domfb "github.com/kailas-cloud/helpdesk/internal/domain/feedback"
)

// KnowledgeSearcher returns grounding snippets for a query.
type KnowledgeSearcher interface {
	Search(query string) []string
}

// ConversationRepository persists chat exchanges.
type ConversationRepository interface {
	Save(ctx context.Context, c *domconv.Conversation) error
	History(ctx context.Context, sessionID string, n int) ([]domconv.Conversation, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// FeedbackRepository persists feedback.
type FeedbackRepository interface {
	Save(ctx context.Context, f *domfb.Feedback) error
}
