// Package chat holds the user-facing chat rules: message validation,
// sentiment labelling and the keyword-driven canned replies.
package chat

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/helpdesk/internal/domain"
)

// DefaultMaxLength is the longest accepted message, in characters.
const DefaultMaxLength = 1000

var maliciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)<iframe[^>]*>`),
	regexp.MustCompile(`(?i)<object[^>]*>`),
	regexp.MustCompile(`(?i)<embed[^>]*>`),
}

// Message is a validated user chat message (immutable value object).
type Message struct {
	text string
}

// NewMessage trims and validates raw user input.
// maxLen <= 0 falls back to DefaultMaxLength.
func NewMessage(raw string, maxLen int) (Message, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return Message{}, fmt.Errorf("%w: message is required", domain.ErrInvalidMessage)
	}
	if !utf8.ValidString(text) {
		return Message{}, fmt.Errorf("%w: message is not valid UTF-8", domain.ErrInvalidMessage)
	}
	if n := utf8.RuneCountInString(text); n > maxLen {
		return Message{}, fmt.Errorf("%w: %d characters (max %d)", domain.ErrMessageTooLong, n, maxLen)
	}
	if ContainsMaliciousContent(text) {
		return Message{}, domain.ErrMaliciousContent
	}
	return Message{text: text}, nil
}

// Text returns the trimmed message as typed.
func (m Message) Text() string { return m.text }

// Escaped returns the message HTML-escaped for storage and admin display.
func (m Message) Escaped() string { return html.EscapeString(m.text) }

// Len returns the message length in characters.
func (m Message) Len() int { return utf8.RuneCountInString(m.text) }

// ContainsMaliciousContent reports script tags, javascript: URLs, inline
// event handlers and embedded frames.
func ContainsMaliciousContent(text string) bool {
	for _, p := range maliciousPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
