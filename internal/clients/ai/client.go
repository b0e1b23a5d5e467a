// Package ai talks to an OpenAI-compatible chat completion endpoint.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"noteshare/internal/config"

	"github.com/sashabaranov/go-openai"
)

// ErrEmptyCompletion is returned when the model answers with no choices.
var ErrEmptyCompletion = errors.New("model returned no answer")

// Client implements assistant.Completer.
type Client struct {
	client *openai.Client
	model  string
}

// New builds a client from cfg. AI_BASE_URL overrides the OpenAI endpoint so any
// compatible provider can be used.
func New(cfg config.Config) *Client {
	aiConfig := openai.DefaultConfig(cfg.AIAPIKey)
	if cfg.AIBaseURL != "" {
		aiConfig.BaseURL = cfg.AIBaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(aiConfig),
		model:  cfg.AIModel,
	}
}

// Complete sends one system and one user message and returns the reply text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
