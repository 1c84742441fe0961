// Package openai adapts the OpenAI chat completions API. Any
// OpenAI-compatible endpoint (Groq, vLLM) works through the base URL.
package openai

import (
	"context"
	"fmt"

	"nexora-campus-be/pkg/llm"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultModel = "gpt-4o-mini"

type Provider struct {
	client *sdk.Client
	model  string
}

var _ llm.LLMProvider = &Provider{}

func NewProvider(apiKey, baseURL, model string) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultModel
	}
	client := sdk.NewClient(opts...)
	return &Provider{client: &client, model: model}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: p.model, Temperature: 0.3, MaxTokens: 800}, options...)

	messages := make([]sdk.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case llm.RoleSystem:
			messages = append(messages, sdk.SystemMessage(m.Content))
		case llm.RoleAssistant:
			messages = append(messages, sdk.AssistantMessage(m.Content))
		default:
			messages = append(messages, sdk.UserMessage(m.Content))
		}
	}

	completion, err := p.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model:       sdk.ChatModel(opts.Model),
		Messages:    messages,
		Temperature: sdk.Float(opts.Temperature),
		MaxTokens:   sdk.Int(int64(opts.MaxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai chat: no completion choices returned")
	}
	return completion.Choices[0].Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}
