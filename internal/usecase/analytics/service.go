// Package analytics builds the admin dashboard summaries.
package analytics

import (
	"context"
	"fmt"

	domconv "github.com/kailas-cloud/helpdesk/internal/domain/conversation"
	domfb "github.com/kailas-cloud/helpdesk/internal/domain/feedback"
)

// RecentLimit is the number of conversations included in a Summary.
const RecentLimit = 10

// Summary is the analytics overview.
type Summary struct {
	Conversations domconv.Stats
	Feedback      domfb.Stats
	Recent        []domconv.Conversation
}

// Service handles analytics reporting.
type Service struct {
	conversations ConversationReader
	feedback      FeedbackReader
}

// New creates a Service.
func New(conversations ConversationReader, feedback FeedbackReader) *Service {
	return &Service{conversations: conversations, feedback: feedback}
}

// Summary returns totals, sentiment counts, feedback counters and the most recent conversations.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	stats, err := s.conversations.Stats(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("conversation stats: %w", err)
	}
	recent, err := s.conversations.Recent(ctx, RecentLimit)
	if err != nil {
		return Summary{}, fmt.Errorf("recent conversations: %w", err)
	}
	fb, err := s.feedback.Stats(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("feedback stats: %w", err)
	}
	return Summary{Conversations: stats, Feedback: fb, Recent: recent}, nil
}

// RecentFeedback returns up to n feedback entries, newest first.
func (s *Service) RecentFeedback(ctx context.Context, n int) ([]domfb.Feedback, error) {
	items, err := s.feedback.Recent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("recent feedback: %w", err)
	}
	return items, nil
}
