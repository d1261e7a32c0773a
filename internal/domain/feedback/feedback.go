// Package feedback holds user ratings of bot replies.
package feedback

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/helpdesk/internal/domain"
)

// MaxTextLength bounds free-text feedback, in characters.
const MaxTextLength = 2000

// Feedback is a user's rating of one conversation (immutable value object).
type Feedback struct {
	id             string
	conversationID string
	sessionID      string
	rating         int // 0 = not rated
	helpful        *bool
	text           string
	createdAt      time.Time
}

// Input is the raw submission for New.
type Input struct {
	ID             string
	ConversationID string
	SessionID      string
	Rating         *int
	Helpful        *bool
	Text           string
	CreatedAt      time.Time
}

// New validates and creates Feedback. Rating, when present, must be 1-5.
func New(in Input) (Feedback, error) {
	if in.ID == "" {
		return Feedback{}, fmt.Errorf("%w: feedback ID is required", domain.ErrInvalidFeedback)
	}
	if in.ConversationID == "" {
		return Feedback{}, fmt.Errorf("%w: conversation_id is required", domain.ErrInvalidFeedback)
	}
	rating := 0
	if in.Rating != nil {
		if *in.Rating < 1 || *in.Rating > 5 {
			return Feedback{}, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidFeedback)
		}
		rating = *in.Rating
	}
	text := strings.TrimSpace(in.Text)
	if len([]rune(text)) > MaxTextLength {
		return Feedback{}, fmt.Errorf("%w: feedback_text too long (max %d)", domain.ErrInvalidFeedback, MaxTextLength)
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	return Feedback{
		id:             in.ID,
		conversationID: in.ConversationID,
		sessionID:      in.SessionID,
		rating:         rating,
		helpful:        in.Helpful,
		text:           text,
		createdAt:      in.CreatedAt.UTC(),
	}, nil
}

// Reconstruct creates Feedback without validation (storage hydration).
func Reconstruct(
	id, conversationID, sessionID string, rating int, helpful *bool, text string, createdAt time.Time,
) Feedback {
	return Feedback{
		id: id, conversationID: conversationID, sessionID: sessionID,
		rating: rating, helpful: helpful, text: text, createdAt: createdAt,
	}
}

// ID returns the feedback identifier.
func (f *Feedback) ID() string { return f.id }

// ConversationID returns the rated conversation.
func (f *Feedback) ConversationID() string { return f.conversationID }

// SessionID returns the submitting session.
func (f *Feedback) SessionID() string { return f.sessionID }

// Rating returns the 1-5 rating, or 0 when not rated.
func (f *Feedback) Rating() int { return f.rating }

// Helpful returns the thumbs up/down answer, nil when not given.
func (f *Feedback) Helpful() *bool { return f.helpful }

// Text returns the free-text comment.
func (f *Feedback) Text() string { return f.text }

// CreatedAt returns the submission time (UTC).
func (f *Feedback) CreatedAt() time.Time { return f.createdAt }

// Stats aggregates feedback counters.
type Stats struct {
	Total      int64
	Rated      int64
	RatingSum  int64
	Helpful    int64
	NotHelpful int64
}

// AverageRating returns the mean of submitted ratings, or 0 when none were rated.
func (s Stats) AverageRating() float64 {
	if s.Rated == 0 {
		return 0
	}
	return float64(s.RatingSum) / float64(s.Rated)
}
