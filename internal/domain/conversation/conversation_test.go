package conversation

import (
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/helpdesk/internal/domain/chat"
)

func mustMessage(t *testing.T, raw string) chat.Message {
	t.Helper()
	m, err := chat.NewMessage(raw, 0)
	if err != nil {
		t.Fatalf("NewMessage(%q): %v", raw, err)
	}
	return m
}

func TestNew_Valid(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("WAT", 3600))
	c, err := New(Exchange{
		ID:           "c1",
		SessionID:    "s1",
		Message:      mustMessage(t, "Thanks, <b>great</b> help"),
		Response:     "You're welcome!",
		ResponseTime: 150 * time.Millisecond,
		IP:           "10.0.0.1",
		UserAgent:    strings.Repeat("a", 600),
		CreatedAt:    at,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.UserMessage() != "Thanks, &lt;b&gt;great&lt;/b&gt; help" {
		t.Errorf("UserMessage() = %q, want escaped", c.UserMessage())
	}
	if c.Sentiment() != chat.Positive {
		t.Errorf("Sentiment() = %q, want positive", c.Sentiment())
	}
	if c.MessageLength() != 25 {
		t.Errorf("MessageLength() = %d, want 25", c.MessageLength())
	}
	if len(c.UserAgent()) != MaxUserAgentLength {
		t.Errorf("len(UserAgent()) = %d, want %d", len(c.UserAgent()), MaxUserAgentLength)
	}
	if !c.CreatedAt().Equal(at) || c.CreatedAt().Location() != time.UTC {
		t.Errorf("CreatedAt() = %v, want %v in UTC", c.CreatedAt(), at)
	}
}

func TestNew_Required(t *testing.T) {
	m := mustMessage(t, "hello")
	if _, err := New(Exchange{SessionID: "s", Message: m}); err == nil {
		t.Error("expected error for missing ID")
	}
	if _, err := New(Exchange{ID: "c", Message: m}); err == nil {
		t.Error("expected error for missing session")
	}
}

func TestNew_DefaultsCreatedAt(t *testing.T) {
	c, err := New(Exchange{ID: "c", SessionID: "s", Message: mustMessage(t, "hello")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.CreatedAt().IsZero() {
		t.Error("CreatedAt() must default to now")
	}
}
