package provider

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/config"
)

// OpenAITransport speaks the OpenAI-compatible chat-completion protocol.
// OpenRouter, Groq and similar gateways all expose it, so one transport
// covers every configured provider; only base URL, model and key differ.
type OpenAITransport struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAITransport(cfg config.ProviderConfig) *OpenAITransport {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 150
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}

	return &OpenAITransport{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (t *OpenAITransport) Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   t.maxTokens,
		Temperature: t.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}

// SpecsFromConfig assembles the ordered fallback chain entries from
// configuration.
func SpecsFromConfig(configs []config.ProviderConfig) []Spec {
	specs := make([]Spec, 0, len(configs))
	for _, cfg := range configs {
		specs = append(specs, Spec{
			ID:        cfg.ID,
			Timeout:   cfg.Timeout,
			Transport: NewOpenAITransport(cfg),
		})
	}
	return specs
}
