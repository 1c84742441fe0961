package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nexora-campus-be/internal/constant"
	"nexora-campus-be/internal/dto"
	"nexora-campus-be/internal/entity"
	"nexora-campus-be/internal/pkg/logger"
	"nexora-campus-be/pkg/ai/assembler"
	"nexora-campus-be/pkg/ai/composer"
	"nexora-campus-be/pkg/ai/router"
	"nexora-campus-be/pkg/events"
	"nexora-campus-be/pkg/llm"
	"nexora-campus-be/pkg/metrics"
	"nexora-campus-be/pkg/moderation"
)

// IChatService runs one chat turn end to end.
type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type ChatOptions struct {
	HistoryLimit int
}

type chatService struct {
	conversations IConversationService
	moderation    IModerationService
	assembler     *assembler.Assembler
	orchestrator  *router.Orchestrator
	composer      *composer.Composer
	publisher     events.Publisher
	opts          ChatOptions
	logger        logger.ILogger
}

func NewChatService(
	conversations IConversationService,
	moderation IModerationService,
	assembler *assembler.Assembler,
	orchestrator *router.Orchestrator,
	composer *composer.Composer,
	publisher events.Publisher,
	opts ChatOptions,
	logger logger.ILogger,
) IChatService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &chatService{
		conversations: conversations,
		moderation:    moderation,
		assembler:     assembler,
		orchestrator:  orchestrator,
		composer:      composer,
		publisher:     publisher,
		opts:          opts,
		logger:        logger,
	}
}

// Chat moderates, routes and composes a reply. Persistence failures are
// logged and never change the reply. The only error returned is an
// upstream model failure, which the caller maps to a 500.
func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	started := time.Now()
	userID := ""
	if req.UserId != nil {
		userID = *req.UserId
	}

	conv, history := s.openConversation(ctx, req)
	if conv != nil {
		s.persist(ctx, conv, &entity.Message{Role: constant.ChatMessageRoleUser, Content: req.Message})
	}

	mod := s.moderation.Check(ctx, req.Message)

	var (
		resp     router.ComposedResponse
		routeErr error
	)
	if mod.Flagged {
		resp = s.orchestrator.Blocked()
		s.publish(ctx, events.ModerationFlagged{
			SessionID:  req.SessionId,
			Categories: flaggedCategories(mod),
			Degraded:   mod.Degraded,
			OccurredAt: time.Now().UTC(),
		})
	} else {
		qc := s.assembler.Assemble(ctx, req.Message, req.SessionId, userID)
		resp, routeErr = s.orchestrator.Route(ctx, qc, history)
	}

	reply := s.composer.Compose(resp, mod, req.SessionId)
	elapsed := time.Since(started)

	if conv != nil {
		// A disconnected client never gets its answer appended.
		if ctx.Err() != nil {
			s.logger.Warn(constant.ModuleChat, "Request cancelled, assistant message not saved", map[string]interface{}{
				"session_id": req.SessionId,
			})
		} else {
			s.persist(ctx, conv, assistantMessage(reply, resp, elapsed))
		}
	}

	metrics.ChatTurns.WithLabelValues(reply.Intent, fmt.Sprintf("%t", reply.Success)).Inc()
	s.publish(ctx, events.ChatCompleted{
		SessionID:      req.SessionId,
		UserID:         userID,
		Intent:         reply.Intent,
		AgentUsed:      reply.AgentUsed,
		Success:        reply.Success,
		Tools:          toolNames(resp),
		ResponseTimeMs: elapsed.Milliseconds(),
		OccurredAt:     time.Now().UTC(),
	})

	s.logger.Info(constant.ModuleChat, "Chat turn completed", map[string]interface{}{
		"session_id":       req.SessionId,
		"intent":           reply.Intent,
		"agent_used":       reply.AgentUsed,
		"success":          reply.Success,
		"flagged":          reply.ContentFlagged,
		"response_time_ms": elapsed.Milliseconds(),
	})

	if routeErr != nil {
		if errors.Is(routeErr, router.ErrUpstreamModel) {
			s.logger.Error(constant.ModuleChat, "Language model failed", map[string]interface{}{
				"session_id": req.SessionId,
				"error":      routeErr.Error(),
			})
		}
		return nil, routeErr
	}
	return &reply, nil
}

// openConversation loads the session and the history seen before this
// turn. A storage outage yields nil and the turn runs without history.
func (s *chatService) openConversation(ctx context.Context, req *dto.ChatRequest) (*entity.Conversation, []llm.Message) {
	conv, err := s.conversations.GetOrCreate(ctx, req.SessionId, req.UserId)
	if err != nil {
		s.logger.Error(constant.ModuleConversation, "Conversation unavailable, continuing without history", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
		return nil, nil
	}

	history, err := s.conversations.RecentHistory(ctx, conv, s.opts.HistoryLimit)
	if err != nil {
		s.logger.Warn(constant.ModuleConversation, "History unavailable", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
	}
	return conv, history
}

func (s *chatService) persist(ctx context.Context, conv *entity.Conversation, msg *entity.Message) {
	if err := s.conversations.AppendMessage(ctx, conv, msg); err != nil {
		s.logger.Error(constant.ModuleConversation, "Failed to save message", map[string]interface{}{
			"session_id": conv.SessionId,
			"role":       msg.Role,
			"error":      err.Error(),
		})
	}
}

func (s *chatService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(constant.ModuleEvents, "Event publish failed", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

func assistantMessage(reply composer.Reply, resp router.ComposedResponse, elapsed time.Duration) *entity.Message {
	ms := int(elapsed.Milliseconds())
	success := reply.Success
	msg := &entity.Message{
		Role:           constant.ChatMessageRoleAssistant,
		Content:        reply.Response,
		AgentName:      &reply.AgentName,
		AgentUsed:      &reply.AgentUsed,
		Intent:         &reply.Intent,
		Success:        &success,
		ErrorMessage:   reply.Error,
		ResponseTimeMs: &ms,
		Usage: map[string]interface{}{
			"tools":     toolNames(resp),
			"rationale": resp.Rationale,
		},
	}
	return msg
}

func toolNames(resp router.ComposedResponse) []string {
	out := make([]string, 0, len(resp.ToolsUsed))
	for _, t := range resp.ToolsUsed {
		out = append(out, string(t))
	}
	return out
}

func flaggedCategories(res moderation.Result) []string {
	var out []string
	for _, c := range moderation.Categories {
		if res.Categories[c] {
			out = append(out, string(c))
		}
	}
	return out
}
