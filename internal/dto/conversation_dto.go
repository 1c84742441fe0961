package dto

import "time"

type ConversationSummaryResponse struct {
	ConversationId string    `json:"conversation_id"`
	SessionId      string    `json:"session_id"`
	UserId         *string   `json:"user_id"`
	Title          *string   `json:"title"`
	TotalMessages  int       `json:"total_messages"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivity   time.Time `json:"last_activity"`
	IsActive       bool      `json:"is_active"`
}

type MessageResponse struct {
	Id             string    `json:"id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	AgentName      *string   `json:"agent_name"`
	AgentUsed      *string   `json:"agent_used"`
	Intent         *string   `json:"intent"`
	Success        *bool     `json:"success"`
	ResponseTimeMs *int      `json:"response_time_ms"`
}

type HistoryQuery struct {
	Limit int `query:"limit" validate:"gte=1,lte=100"`
}

const DefaultHistoryLimit = 50

type MessageResponseBody struct {
	Message string `json:"message"`
}
