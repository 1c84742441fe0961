package pipeline

import (
	"context"
	"log"

	"nexora-campus-be/pkg/ai/prompt"
	"nexora-campus-be/pkg/llm"
)

// PhraseRequest carries everything the model sees for one answer.
type PhraseRequest struct {
	Question    string
	CurrentTime string
	Sections    []prompt.Section
	History     []llm.Message
}

// PhrasePipeline turns retrieved campus data into a conversational reply.
// The model only rewords; it never picks tools or adds data.
type PhrasePipeline struct {
	llmProvider  llm.LLMProvider
	systemPrompt string
	logger       *log.Logger
	opts         []llm.Option
}

func NewPhrasePipeline(llmProvider llm.LLMProvider, systemPrompt string, logger *log.Logger, opts ...llm.Option) *PhrasePipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &PhrasePipeline{
		llmProvider:  llmProvider,
		systemPrompt: systemPrompt,
		logger:       logger,
		opts:         opts,
	}
}

func (p *PhrasePipeline) Phrase(ctx context.Context, req PhraseRequest) (string, error) {
	var messages []llm.Message

	if p.systemPrompt != "" {
		messages = append(messages, llm.Message{Role: "system", Content: p.systemPrompt})
	}
	messages = append(messages, req.History...)
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: prompt.NewCompositionBuilder(req.Question, req.CurrentTime, req.Sections).Build(),
	})

	p.logger.Printf("[PHRASE] Executing with %d messages (incl. history)", len(messages))

	reply, err := p.llmProvider.Chat(ctx, messages, p.opts...)
	if err != nil {
		p.logger.Printf("[PHRASE] LLM error: %v", err)
		return "", err
	}
	return reply, nil
}
