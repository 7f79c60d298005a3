package agents

import (
	"context"
	"strings"
)

// Backend is a single request/response call to a language model. Both the
// classifier and the reply generator treat it as a pure, occasionally
// unreliable function.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// stripCodeFence removes a markdown code fence wrapper some models put
// around JSON output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
