// Package composer shapes a routed turn into the stable chat payload.
package composer

import (
	"nexora-campus-be/pkg/ai/router"
	"nexora-campus-be/pkg/moderation"
)

// Reply is the chat payload. Every field is always present; Error and
// ModerationReason serialise as null when unset.
type Reply struct {
	Response         string  `json:"response"`
	AgentName        string  `json:"agent_name"`
	Intent           string  `json:"intent"`
	AgentUsed        string  `json:"agent_used"`
	Success          bool    `json:"success"`
	Error            *string `json:"error"`
	SessionID        string  `json:"session_id"`
	Moderated        bool    `json:"moderated"`
	ContentFlagged   bool    `json:"content_flagged"`
	ModerationReason *string `json:"moderation_reason"`
}

type Composer struct {
	agentName string
}

func New(agentName string) *Composer {
	return &Composer{agentName: agentName}
}

// Compose never inspects or rewrites the response text.
func (c *Composer) Compose(resp router.ComposedResponse, mod moderation.Result, sessionID string) Reply {
	reply := Reply{
		Response:       resp.ResponseText,
		AgentName:      c.agentName,
		Intent:         string(resp.Intent),
		AgentUsed:      resp.AgentUsed,
		Success:        resp.Success,
		SessionID:      sessionID,
		Moderated:      true,
		ContentFlagged: mod.Flagged,
	}
	if !resp.Success && resp.Error != "" {
		e := resp.Error
		reply.Error = &e
	}
	if mod.Flagged && mod.Reason != "" {
		r := mod.Reason
		reply.ModerationReason = &r
	}
	return reply
}
