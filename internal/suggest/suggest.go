// Package suggest asks an OpenAI-compatible chat API to break a broad
// subject into candidate topic titles. The titles flow through the normal
// creation path; nothing here touches the collection.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when the config names none.
const DefaultModel = "gpt-4o-mini"

// Config configures the suggestion client. BaseURL may point at any
// OpenAI-compatible endpoint (including a local model server).
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client produces topic suggestions.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient builds a suggestion client. An empty API key is an error;
// callers treat the feature as disabled instead of constructing a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("suggest: api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	return &Client{client: openai.NewClientWithConfig(oc), model: model}, nil
}

const systemPrompt = "You are a study-plan assistant. Always respond with a JSON object."

// Topics returns roughly 10-15 specific, learnable topic titles for the
// given subject.
func (c *Client) Topics(ctx context.Context, subject string) ([]string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, fmt.Errorf("suggest: subject is required")
	}

	prompt := fmt.Sprintf(
		"Break down the broad subject %q into a list of smaller, specific topics "+
			"suitable for spaced repetition learning. Each topic should be a concise, "+
			"actionable item for a single study session. Provide around 10-15 topics. "+
			`Respond with a JSON object of the form {"topics": ["..."]}.`, subject)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("suggest: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("suggest: empty response")
	}

	var parsed struct {
		Topics []string `json:"topics"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("suggest: parse response: %w", err)
	}

	seen := make(map[string]struct{}, len(parsed.Topics))
	var out []string
	for _, t := range parsed.Topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}
