package intent

import (
	"context"
	"log/slog"

	"github.com/user/slotbot/internal/prompt"
	"github.com/user/slotbot/pkg/llm"
)

// Classifier asks the LLM for a single-word intent over the running
// conversation. It never returns an error: provider failures and junk
// output both normalize to Unclear so the pipeline keeps moving.
type Classifier struct {
	provider llm.Provider
	logger   *slog.Logger
}

// NewClassifier creates an LLM-backed intent classifier.
func NewClassifier(provider llm.Provider, logger *slog.Logger) *Classifier {
	return &Classifier{provider: provider, logger: logger}
}

// Classify identifies the intent of the latest message given the
// conversation history.
func (c *Classifier) Classify(ctx context.Context, message, history string) Intent {
	resp, err := c.provider.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: prompt.Intent(message, history)},
	})
	if err != nil {
		c.logger.Warn("intent classification failed", "error", err)
		return Unclear
	}
	in := Normalize(resp.Content)
	c.logger.Debug("classified intent", "intent", string(in), "raw", resp.Content)
	return in
}
