package chat

import (
	"html"
	"strings"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	domconv "github.com/kailas-cloud/helpdesk/internal/domain/conversation"
	domkb "github.com/kailas-cloud/helpdesk/internal/domain/knowledge"
)

// DefaultSystemPrompt is used when no system prompt is configured.
const DefaultSystemPrompt = "You are a helpful customer support assistant for 3MTT organization. " +
	"Keep responses concise and professional."

const contextHeader = "RELEVANT INFORMATION FOR THIS QUERY:"

// BuildPrompt assembles the completion request: the system prompt with the
// snippets as key-less bullets, then the history turns, then the message.
func BuildPrompt(
	systemPrompt string, snippets []string, history []domconv.Conversation, message string,
) domain.CompletionRequest {
	var sys strings.Builder
	sys.WriteString(systemPrompt)
	if len(snippets) > 0 {
		sys.WriteString("\n\n")
		sys.WriteString(contextHeader)
		for _, s := range snippets {
			sys.WriteString("\n- ")
			sys.WriteString(domkb.StripKey(s))
		}
	}

	msgs := make([]domain.ChatMessage, 0, 2+2*len(history))
	msgs = append(msgs, domain.ChatMessage{Role: domain.RoleSystem, Content: sys.String()})
	for i := range history {
		c := &history[i]
		msgs = append(msgs,
			domain.ChatMessage{Role: domain.RoleUser, Content: html.UnescapeString(c.UserMessage())},
			domain.ChatMessage{Role: domain.RoleAssistant, Content: c.BotResponse()},
		)
	}
	msgs = append(msgs, domain.ChatMessage{Role: domain.RoleUser, Content: message})

	return domain.CompletionRequest{Messages: msgs}
}

// FormatSnippets renders snippets as a bulleted reply.
func FormatSnippets(snippets []string) string {
	var b strings.Builder
	b.WriteString("Here's what I found:")
	for _, s := range snippets {
		b.WriteString("\n• ")
		b.WriteString(s)
	}
	return b.String()
}
