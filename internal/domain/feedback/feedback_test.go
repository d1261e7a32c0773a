package feedback

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/helpdesk/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestNew_Valid(t *testing.T) {
	helpful := true
	f, err := New(Input{
		ID: "f1", ConversationID: "c1", SessionID: "s1",
		Rating: intPtr(5), Helpful: &helpful, Text: "  very clear  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Rating() != 5 {
		t.Errorf("Rating() = %d, want 5", f.Rating())
	}
	if f.Helpful() == nil || !*f.Helpful() {
		t.Error("Helpful() = nil/false, want true")
	}
	if f.Text() != "very clear" {
		t.Errorf("Text() = %q", f.Text())
	}
}

func TestNew_OptionalRating(t *testing.T) {
	f, err := New(Input{ID: "f1", ConversationID: "c1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Rating() != 0 || f.Helpful() != nil {
		t.Errorf("unexpected rating/helpful: %d %v", f.Rating(), f.Helpful())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"missing id", Input{ConversationID: "c1"}},
		{"missing conversation", Input{ID: "f1"}},
		{"rating zero", Input{ID: "f1", ConversationID: "c1", Rating: intPtr(0)}},
		{"rating six", Input{ID: "f1", ConversationID: "c1", Rating: intPtr(6)}},
		{"text too long", Input{ID: "f1", ConversationID: "c1", Text: strings.Repeat("x", MaxTextLength+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.in)
			if !errors.Is(err, domain.ErrInvalidFeedback) {
				t.Errorf("error = %v, want ErrInvalidFeedback", err)
			}
		})
	}
}
