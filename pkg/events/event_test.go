package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletedPayload(t *testing.T) {
	at := time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)
	e := ChatCompleted{
		SessionID:      "s-1",
		Intent:         "campus",
		AgentUsed:      "bus",
		Success:        true,
		Tools:          []string{"fetch_bus_routes"},
		ResponseTimeMs: 42,
		OccurredAt:     at,
	}

	assert.Equal(t, TypeChatCompleted, e.EventType())
	assert.Equal(t, at, e.Timestamp())

	raw, err := json.Marshal(e.Payload())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"session_id": "s-1",
		"user_id": "",
		"intent": "campus",
		"agent_used": "bus",
		"success": true,
		"tools": ["fetch_bus_routes"],
		"response_time_ms": 42,
		"occurred_at": "2025-06-14T09:30:00Z"
	}`, string(raw))
}

func TestModerationFlaggedOmitsMessageText(t *testing.T) {
	e := ModerationFlagged{SessionID: "s-2", Categories: []string{"harassment"}, OccurredAt: time.Now()}
	payload := e.Payload()

	assert.Equal(t, TypeModerationFlagged, e.EventType())
	assert.ElementsMatch(t, []string{"session_id", "categories", "degraded", "occurred_at"}, keys(payload))
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
