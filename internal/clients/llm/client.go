// Package llm wraps the chat completion API used for recommendations and suggestions.
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"queens/internal/apperrors"
	"queens/internal/config"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// Client sends single-turn prompts to an OpenAI-compatible endpoint.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	log         logrus.FieldLogger
}

// NewClient creates a new Client. An empty BaseURL uses the public OpenAI API.
func NewClient(cfg config.OpenAIConfig, httpClient *http.Client, log logrus.FieldLogger) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}
	return &Client{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		log:         log,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete returns the content of the first choice for prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	c.log.WithField("prompt_length", len(prompt)).Debug("sending completion request")

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		c.log.WithError(err).Error("completion request failed")
		return "", apperrors.Unavailable("language model", err)
	}
	if len(resp.Choices) == 0 {
		err := errors.New("completion returned no choices")
		c.log.WithError(err).Error("completion request failed")
		return "", apperrors.Unavailable("language model", err)
	}
	return resp.Choices[0].Message.Content, nil
}
