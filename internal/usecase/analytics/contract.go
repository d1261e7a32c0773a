package analytics

import (
	"context"

	domconv "github.com/kailas-cloud/helpdesk/internal/domain/conversation"
	domfb "github.com/kailas-cloud/helpdesk/internal/domain/feedback"
)

// ConversationReader provides read-only access to stored conversations.
type ConversationReader interface {
	Stats(ctx context.Context) (domconv.Stats, error)
	Recent(ctx context.Context, n int) ([]domconv.Conversation, error)
}

// FeedbackReader provides read-only access to stored feedback.
type FeedbackReader interface {
	Stats(ctx context.Context) (domfb.Stats, error)
	Recent(ctx context.Context, n int) ([]domfb.Feedback, error)
}
