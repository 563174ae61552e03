package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/user/slotbot/pkg/llm"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Client implements the llm.Provider interface for Google's Gemini API.
type Client struct {
	client *genai.Client
	config *llm.Config
}

// New creates a new Gemini client with the given configuration.
func New(ctx context.Context, config *llm.Config) (*Client, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if strings.TrimSpace(config.Model) == "" {
		config.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

// Complete sends a chat completion request and returns the full response.
func (c *Client) Complete(ctx context.Context, messages []llm.Message) (*llm.Response, error) {
	if len(messages) == 0 {
		return nil, errors.New("gemini requires at least one message")
	}

	model := c.client.GenerativeModel(c.config.Model)
	if c.config.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(c.config.MaxTokens))
	}
	if c.config.Temperature != 0 {
		model.SetTemperature(c.config.Temperature)
	}

	// System messages become a single system instruction; the rest form the
	// chat history, with the final message sent as the prompt.
	var systemParts []string
	var chat []llm.Message
	for _, msg := range messages {
		if msg.Role == llm.RoleSystem {
			if s := strings.TrimSpace(msg.Content); s != "" {
				systemParts = append(systemParts, s)
			}
			continue
		}
		chat = append(chat, msg)
	}
	if len(systemParts) > 0 {
		model.SystemInstruction = genai.NewUserContent(genai.Text(strings.Join(systemParts, "\n\n")))
	}

	if len(chat) == 0 {
		return nil, errors.New("gemini requires a non-system message")
	}

	cs := model.StartChat()
	for _, msg := range chat[:len(chat)-1] {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		role := "user"
		if msg.Role == llm.RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(chat[len(chat)-1].Content))
	if err != nil {
		return nil, fmt.Errorf("gemini completion: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, errors.New("gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, errors.New("gemini returned empty content")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	result := &llm.Response{
		Content: strings.TrimSpace(text.String()),
	}
	if resp.UsageMetadata != nil {
		result.Usage = llm.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return result, nil
}

// Close releases resources held by the underlying client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
