package anthropic

import (
	"context"
	"fmt"
	"strings"

	"nexora-campus-be/pkg/llm"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultModel = "claude-3-5-haiku-latest"

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
	system, turns := llm.SplitSystem(history)

	messages := make([]sdk.MessageParam, 0, len(turns))
	for _, m := range turns {
		if m.Role == llm.RoleAssistant {
			messages = append(messages, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
			continue
		}
		messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
	}

	params := sdk.MessageNewParams{
		Model:       sdk.Model(opts.Model),
		MaxTokens:   int64(opts.MaxTokens),
		Messages:    messages,
		Temperature: sdk.Float(opts.Temperature),
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(sdk.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String(), nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}
