package ollama

import (
	"fmt"
	"strings"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
)

func buildAnswerPrompt(question string, contextBlock string) string {
	return fmt.Sprintf(`You are a support assistant for a retail bank.
Answer the user question only from the context below.
If the context is insufficient, say it directly.
Answer in the language of the question.

Question:
%s

Context:
%s
`, question, contextBlock)
}

func buildRewritePrompt(question string, history []domain.Message) string {
	const maxHistory = 12

	turns := history
	if len(turns) > maxHistory {
		turns = turns[len(turns)-maxHistory:]
	}

	var conversation strings.Builder
	for _, m := range turns {
		conversation.WriteString(m.Role)
		conversation.WriteString(": ")
		conversation.WriteString(m.Content)
		conversation.WriteString("\n")
	}

	return fmt.Sprintf(`Rewrite the follow-up question into a standalone search query.
Keep the language of the question. Return only the rewritten query, nothing else.

Conversation:
%s
Follow-up question:
%s
`, conversation.String(), question)
}
