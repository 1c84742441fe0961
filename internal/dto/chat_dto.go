package dto

import "nexora-campus-be/pkg/ai/composer"

type ChatRequest struct {
	Message   string  `json:"message" validate:"required,min=1,max=1000"`
	UserId    *string `json:"user_id,omitempty" validate:"omitempty,max=255"`
	SessionId string  `json:"session_id" validate:"required,max=255"`
}

// ChatResponse has the same field set on every branch.
type ChatResponse = composer.Reply
