package ollama

import "fmt"

func buildAnswerPrompt(question, grounding string) string {
	return fmt.Sprintf(`You are an HR assistant. Answer the employee's question using only the policy excerpts below.
Each excerpt is prefixed with its [Document - Section] label. If the excerpts do not cover the question, say so directly.

Question:
%s

Policy excerpts:
%s
`, question, grounding)
}
