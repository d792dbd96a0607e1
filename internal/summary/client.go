package summary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// TextGenerator produces prose from a system and user instruction.
type TextGenerator interface {
	Available() bool
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIGenerator calls the OpenAI chat completions API with a fixed
// temperature and token cap.
type OpenAIGenerator struct {
	client *openai.Client
	model  openai.ChatModel
}

// NewOpenAIGenerator builds a generator for the given credential and
// model. An empty key yields an unavailable generator; callers fall
// back to extractive summaries.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	if apiKey == "" {
		return &OpenAIGenerator{}
	}
	m := openai.ChatModelGPT4oMini
	if model != "" {
		m = openai.ChatModel(model)
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIGenerator{
		client: &client,
		model:  m,
	}
}

// Available reports whether a credential is configured.
func (g *OpenAIGenerator) Available() bool {
	return g.client != nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.client == nil {
		return "", errors.New("no OpenAI credential configured")
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(0.3),
		MaxTokens:   openai.Int(1000),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}

// IsQuotaError reports whether err is a rate-limit or quota-exhaustion
// failure, which downgrades to the extractive fallback rather than an
// error response.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") || strings.Contains(msg, "429")
}
