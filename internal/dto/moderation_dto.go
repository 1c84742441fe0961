package dto

type ModerationCheckRequest struct {
	Content string  `json:"content" validate:"required,min=1,max=2000"`
	Context *string `json:"context,omitempty"`
	UserId  *string `json:"user_id,omitempty"`
}

type ModerationCheckResponse struct {
	Flagged        bool               `json:"flagged"`
	Categories     map[string]bool    `json:"categories"`
	CategoryScores map[string]float64 `json:"category_scores"`
	Reason         *string            `json:"reason"`
	Degraded       bool               `json:"degraded"`
}
