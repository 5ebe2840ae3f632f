package llm

import (
	"strings"

	"supportbot/internal/domain"
)

const assistantRole = "You are a helpful customer support assistant for an e-commerce store."

const noContextPrompt = assistantRole + `
Answer the user's question to the best of your ability. If you don't know the answer, say so politely and offer to connect them with a human agent.
Be concise, helpful, and friendly.`

// SystemPrompt builds the system instruction. With retrieved documents the model is
// told to answer from them; without, from general knowledge. Both defer to a human agent.
func SystemPrompt(contextDocs []domain.SearchResult) string {
	if len(contextDocs) == 0 {
		return noContextPrompt
	}
	parts := make([]string, len(contextDocs))
	for i, r := range contextDocs {
		parts[i] = r.Document.Content
	}
	var b strings.Builder
	b.WriteString(assistantRole)
	b.WriteString("\nUse the following information to answer the user's question.")
	b.WriteString("\nIf you don't know the answer based on the provided information, say so politely and offer to connect them with a human agent.")
	b.WriteString("\n\nCONTEXT INFORMATION:\n")
	b.WriteString(strings.Join(parts, "\n\n"))
	b.WriteString("\n\nAnswer the user's question based on the above context. Be concise, helpful, and friendly.")
	return b.String()
}

// renderPrompt flattens a Request into a single prompt for backends that take one string.
func renderPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(req.System)
	if len(req.History) > 0 {
		b.WriteString("\n\nConversation so far:")
		for _, t := range req.History {
			if t.Role == domain.RoleModel {
				b.WriteString("\nAssistant: ")
			} else {
				b.WriteString("\nUser: ")
			}
			b.WriteString(t.Text)
		}
	}
	b.WriteString("\n\nUser: ")
	b.WriteString(req.Query)
	return b.String()
}
