// Package conversation holds the persisted chat exchange aggregate.
package conversation

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/helpdesk/internal/domain/chat"
)

// MaxUserAgentLength bounds the stored User-Agent header.
const MaxUserAgentLength = 500

// Conversation is one user message and the bot reply (immutable value object).
type Conversation struct {
	id            string
	sessionID     string
	userMessage   string
	botResponse   string
	sentiment     chat.Sentiment
	messageLength int
	responseTime  time.Duration
	ip            string
	userAgent     string
	createdAt     time.Time
}

// Exchange is the input for New.
type Exchange struct {
	ID           string
	SessionID    string
	Message      chat.Message
	Response     string
	ResponseTime time.Duration
	IP           string
	UserAgent    string
	CreatedAt    time.Time
}

// New builds a conversation from a validated message. The stored message is
// HTML-escaped, sentiment is derived from it and the User-Agent is truncated.
func New(ex Exchange) (Conversation, error) {
	if ex.ID == "" {
		return Conversation{}, fmt.Errorf("conversation ID is required")
	}
	if ex.SessionID == "" {
		return Conversation{}, fmt.Errorf("session ID is required")
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now()
	}
	return Conversation{
		id:            ex.ID,
		sessionID:     ex.SessionID,
		userMessage:   ex.Message.Escaped(),
		botResponse:   ex.Response,
		sentiment:     chat.AnalyzeSentiment(ex.Message.Text()),
		messageLength: ex.Message.Len(),
		responseTime:  ex.ResponseTime,
		ip:            ex.IP,
		userAgent:     truncate(ex.UserAgent, MaxUserAgentLength),
		createdAt:     ex.CreatedAt.UTC(),
	}, nil
}

// Reconstruct creates a Conversation without validation (storage hydration).
func Reconstruct(
	id, sessionID, userMessage, botResponse string, sentiment chat.Sentiment,
	messageLength int, responseTime time.Duration, ip, userAgent string, createdAt time.Time,
) Conversation {
	return Conversation{
		id: id, sessionID: sessionID, userMessage: userMessage, botResponse: botResponse,
		sentiment: sentiment, messageLength: messageLength, responseTime: responseTime,
		ip: ip, userAgent: userAgent, createdAt: createdAt,
	}
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string { return c.id }

// SessionID returns the chat session the exchange belongs to.
func (c *Conversation) SessionID() string { return c.sessionID }

// UserMessage returns the HTML-escaped user message.
func (c *Conversation) UserMessage() string { return c.userMessage }

// BotResponse returns the reply sent back.
func (c *Conversation) BotResponse() string { return c.botResponse }

// Sentiment returns the mood label of the user message.
func (c *Conversation) Sentiment() chat.Sentiment { return c.sentiment }

// MessageLength returns the user message length in characters.
func (c *Conversation) MessageLength() int { return c.messageLength }

// ResponseTime returns how long producing the reply took.
func (c *Conversation) ResponseTime() time.Duration { return c.responseTime }

// IP returns the client address.
func (c *Conversation) IP() string { return c.ip }

// UserAgent returns the (truncated) client User-Agent.
func (c *Conversation) UserAgent() string { return c.userAgent }

// CreatedAt returns the creation time (UTC).
func (c *Conversation) CreatedAt() time.Time { return c.createdAt }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Stats aggregates stored conversations.
type Stats struct {
	Total          int64
	UniqueSessions int64
	Sentiment      map[chat.Sentiment]int64
}
