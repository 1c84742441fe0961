package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"nexora-campus-be/internal/constant"
	"nexora-campus-be/internal/dto"
	"nexora-campus-be/internal/entity"
	"nexora-campus-be/internal/pkg/logger"
	"nexora-campus-be/internal/pkg/serverutils"
	"nexora-campus-be/internal/repository/specification"
	"nexora-campus-be/internal/repository/unitofwork"
	"nexora-campus-be/pkg/llm"
)

const conversationNotFound = "Conversation not found"

// IConversationService is the conversation store: an append-only message
// log per session plus a summary row.
type IConversationService interface {
	GetOrCreate(ctx context.Context, sessionId string, userId *string) (*entity.Conversation, error)
	AppendMessage(ctx context.Context, conversation *entity.Conversation, message *entity.Message) error
	RecentHistory(ctx context.Context, conversation *entity.Conversation, limit int) ([]llm.Message, error)

	GetSummary(ctx context.Context, sessionId string) (*dto.ConversationSummaryResponse, error)
	GetHistory(ctx context.Context, sessionId string, limit int) ([]*dto.MessageResponse, error)
	Deactivate(ctx context.Context, sessionId string) (*dto.MessageResponseBody, error)
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	now        func() time.Time
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) IConversationService {
	return &conversationService{
		uowFactory: uowFactory,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreate returns the session's conversation, creating it on first use.
// A new turn on a deactivated session reactivates it.
func (s *conversationService) GetOrCreate(ctx context.Context, sessionId string, userId *string) (*entity.Conversation, error) {
	repo := s.uowFactory.NewUnitOfWork(ctx).ConversationRepository()

	conv, err := repo.FindOne(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	if conv != nil {
		changed := false
		if !conv.IsActive {
			conv.IsActive = true
			changed = true
		}
		if conv.UserId == nil && userId != nil {
			conv.UserId = userId
			changed = true
		}
		if changed {
			if err := repo.Update(ctx, conv); err != nil {
				return nil, fmt.Errorf("update conversation: %w", err)
			}
		}
		return conv, nil
	}

	conv = &entity.Conversation{
		SessionId:    sessionId,
		UserId:       userId,
		IsActive:     true,
		LastActivity: s.now(),
	}
	if err := repo.Create(ctx, conv); err != nil {
		// A concurrent first turn may have created it.
		existing, findErr := repo.FindOne(ctx, specification.BySessionID{SessionID: sessionId})
		if findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	s.logger.Info(constant.ModuleConversation, "Created conversation", map[string]interface{}{
		"conversation_id": conv.Id.String(),
		"session_id":      sessionId,
	})
	return conv, nil
}

// AppendMessage stores message and updates the summary in one transaction.
// The message sequence is the conversation's new message total, so order
// follows write order even when timestamps collide.
func (s *conversationService) AppendMessage(ctx context.Context, conversation *entity.Conversation, message *entity.Message) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = uow.Rollback()
		}
	}()

	at := s.now()
	total, err := uow.ConversationRepository().RecordMessage(ctx, conversation.Id, at)
	if err != nil {
		return fmt.Errorf("record message: %w", err)
	}

	message.ConversationId = conversation.Id
	message.Sequence = total
	if message.CreatedAt.IsZero() {
		message.CreatedAt = at
	}
	if err := uow.MessageRepository().Create(ctx, message); err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	conversation.TotalMessages = total
	conversation.LastActivity = at
	if conversation.Title == nil && message.Role == constant.ChatMessageRoleUser {
		title := TitleFromMessage(message.Content)
		conversation.Title = &title
		if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
			return fmt.Errorf("set title: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// RecentHistory returns up to limit messages, oldest first, as LLM turns.
func (s *conversationService) RecentHistory(ctx context.Context, conversation *entity.Conversation, limit int) ([]llm.Message, error) {
	msgs, err := s.latest(ctx, conversation, limit)
	if err != nil {
		return nil, err
	}
	history := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		role := llm.RoleUser
		if m.Role == constant.ChatMessageRoleAssistant {
			role = llm.RoleAssistant
		}
		history = append(history, llm.Message{Role: role, Content: m.Content})
	}
	return history, nil
}

func (s *conversationService) GetSummary(ctx context.Context, sessionId string) (*dto.ConversationSummaryResponse, error) {
	conv, err := s.find(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return &dto.ConversationSummaryResponse{
		ConversationId: conv.Id.String(),
		SessionId:      conv.SessionId,
		UserId:         conv.UserId,
		Title:          conv.Title,
		TotalMessages:  conv.TotalMessages,
		CreatedAt:      conv.CreatedAt,
		LastActivity:   conv.LastActivity,
		IsActive:       conv.IsActive,
	}, nil
}

// GetHistory returns the latest limit messages in the order they were written.
func (s *conversationService) GetHistory(ctx context.Context, sessionId string, limit int) ([]*dto.MessageResponse, error) {
	conv, err := s.find(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	msgs, err := s.latest(ctx, conv, limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.MessageResponse, len(msgs))
	for i, m := range msgs {
		res[i] = &dto.MessageResponse{
			Id:             m.Id.String(),
			Role:           m.Role,
			Content:        m.Content,
			CreatedAt:      m.CreatedAt,
			AgentName:      m.AgentName,
			AgentUsed:      m.AgentUsed,
			Intent:         m.Intent,
			Success:        m.Success,
			ResponseTimeMs: m.ResponseTimeMs,
		}
	}
	return res, nil
}

func (s *conversationService) Deactivate(ctx context.Context, sessionId string) (*dto.MessageResponseBody, error) {
	conv, err := s.find(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).ConversationRepository().Deactivate(ctx, conv.Id); err != nil {
		return nil, fmt.Errorf("deactivate conversation: %w", err)
	}

	s.logger.Info(constant.ModuleConversation, "Deactivated conversation", map[string]interface{}{
		"session_id": sessionId,
	})
	return &dto.MessageResponseBody{
		Message: fmt.Sprintf("Conversation %s deactivated successfully", sessionId),
	}, nil
}

func (s *conversationService) find(ctx context.Context, sessionId string) (*entity.Conversation, error) {
	conv, err := s.uowFactory.NewUnitOfWork(ctx).ConversationRepository().
		FindOne(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	if conv == nil {
		return nil, serverutils.NewNotFoundError(conversationNotFound)
	}
	return conv, nil
}

func (s *conversationService) latest(ctx context.Context, conv *entity.Conversation, limit int) ([]*entity.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	msgs, err := s.uowFactory.NewUnitOfWork(ctx).MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conv.Id},
		specification.Newest{},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// TitleFromMessage keeps the first 50 characters and marks truncation.
func TitleFromMessage(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= constant.TitleMaxLength {
		return content
	}
	runes := []rune(content)
	return strings.TrimSpace(string(runes[:constant.TitleMaxLength])) + "..."
}
