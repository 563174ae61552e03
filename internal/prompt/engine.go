package prompt

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/user/slotbot/internal/types"
)

// Engine assembles token-budgeted prompts for the LLM.
type Engine struct {
	tokenizer *tiktoken.Tiktoken
	maxTokens int
	reserve   int
}

// New creates a prompt engine with the specified token budget.
// model selects the tokenizer; unknown models fall back to cl100k_base.
// maxTokens is the model's context window size and reserve is held back
// for the model's response.
func New(model string, maxTokens, reserve int) (*Engine, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &Engine{
		tokenizer: enc,
		maxTokens: maxTokens,
		reserve:   reserve,
	}, nil
}

func (e *Engine) countTokens(text string) int {
	return len(e.tokenizer.Encode(text, nil, nil))
}

// History renders a budget-trimmed transcript for embedding in a template.
// The newest turns always survive trimming.
func (e *Engine) History(turns []*types.Turn) string {
	remaining := e.maxTokens - e.reserve

	start := len(turns)
	for start > 0 {
		cost := e.countTokens(turns[start-1].Text)
		if cost > remaining {
			break
		}
		remaining -= cost
		start--
	}

	out := ""
	for i, t := range turns[start:] {
		if i > 0 {
			out += "\n"
		}
		out += t.Text
	}
	return out
}
