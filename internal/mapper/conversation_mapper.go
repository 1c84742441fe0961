package mapper

import (
	"encoding/json"

	"nexora-campus-be/internal/entity"
	"nexora-campus-be/internal/model"

	"gorm.io/datatypes"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}
	return &entity.Conversation{
		Id:            c.Id,
		SessionId:     c.SessionId,
		UserId:        c.UserId,
		Title:         c.Title,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		IsActive:      c.IsActive,
		TotalMessages: c.TotalMessages,
		LastActivity:  c.LastActivity,
	}
}

func (m *ConversationMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}
	return &model.Conversation{
		Id:            c.Id,
		SessionId:     c.SessionId,
		UserId:        c.UserId,
		Title:         c.Title,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		IsActive:      c.IsActive,
		TotalMessages: c.TotalMessages,
		LastActivity:  c.LastActivity,
	}
}

// Message Mappers

func (m *ConversationMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	var usage map[string]interface{}
	if len(msg.UsageData) > 0 {
		// Usage is informational; a malformed blob is dropped rather than failing the read.
		_ = json.Unmarshal(msg.UsageData, &usage)
	}

	return &entity.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           msg.Role,
		Content:        msg.Content,
		Sequence:       msg.Sequence,
		CreatedAt:      msg.CreatedAt,
		AgentName:      msg.AgentName,
		AgentUsed:      msg.AgentUsed,
		Intent:         msg.Intent,
		Success:        msg.Success,
		ErrorMessage:   msg.ErrorMessage,
		Usage:          usage,
		ResponseTimeMs: msg.ResponseTimeMs,
	}
}

func (m *ConversationMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	var usage datatypes.JSON
	if len(msg.Usage) > 0 {
		if raw, err := json.Marshal(msg.Usage); err == nil {
			usage = datatypes.JSON(raw)
		}
	}

	return &model.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           msg.Role,
		Content:        msg.Content,
		Sequence:       msg.Sequence,
		CreatedAt:      msg.CreatedAt,
		AgentName:      msg.AgentName,
		AgentUsed:      msg.AgentUsed,
		Intent:         msg.Intent,
		Success:        msg.Success,
		ErrorMessage:   msg.ErrorMessage,
		UsageData:      usage,
		ResponseTimeMs: msg.ResponseTimeMs,
	}
}

func (m *ConversationMapper) MessagesToEntities(msgs []*model.Message) []*entity.Message {
	out := make([]*entity.Message, len(msgs))
	for i, msg := range msgs {
		out[i] = m.MessageToEntity(msg)
	}
	return out
}
