package conversation

import (
	"strconv"
	"time"

	"github.com/kailas-cloud/helpdesk/internal/domain/chat"
	domconv "github.com/kailas-cloud/helpdesk/internal/domain/conversation"
)

const (
	fieldID            = "id"
	fieldSessionID     = "session_id"
	fieldUserMessage   = "user_message"
	fieldBotResponse   = "bot_response"
	fieldSentiment     = "sentiment"
	fieldMessageLength = "message_length"
	fieldResponseTime  = "response_time_ms"
	fieldIP            = "ip"
	fieldUserAgent     = "user_agent"
	fieldCreatedAt     = "created_at"
)

// buildHashFields converts a Conversation into a flat map[string]string for HSET.
func buildHashFields(c *domconv.Conversation) map[string]string {
	return map[string]string{
		fieldID:            c.ID(),
		fieldSessionID:     c.SessionID(),
		fieldUserMessage:   c.UserMessage(),
		fieldBotResponse:   c.BotResponse(),
		fieldSentiment:     string(c.Sentiment()),
		fieldMessageLength: strconv.Itoa(c.MessageLength()),
		fieldResponseTime:  strconv.FormatInt(c.ResponseTime().Milliseconds(), 10),
		fieldIP:            c.IP(),
		fieldUserAgent:     c.UserAgent(),
		fieldCreatedAt:     c.CreatedAt().Format(time.RFC3339Nano),
	}
}

// parseHashFields converts a flat hash map back into a Conversation.
// Unparseable numbers and timestamps hydrate as zero values.
func parseHashFields(m map[string]string) domconv.Conversation {
	length, _ := strconv.Atoi(m[fieldMessageLength])
	ms, _ := strconv.ParseInt(m[fieldResponseTime], 10, 64)
	createdAt, _ := time.Parse(time.RFC3339Nano, m[fieldCreatedAt])

	return domconv.Reconstruct(
		m[fieldID],
		m[fieldSessionID],
		m[fieldUserMessage],
		m[fieldBotResponse],
		chat.Sentiment(m[fieldSentiment]),
		length,
		time.Duration(ms)*time.Millisecond,
		m[fieldIP],
		m[fieldUserAgent],
		createdAt,
	)
}
