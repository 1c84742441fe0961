package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"nexora-campus-be/internal/constant"
	"nexora-campus-be/internal/entity"
	"nexora-campus-be/internal/pkg/serverutils"
	"nexora-campus-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleFromMessage(t *testing.T) {
	assert.Equal(t, "Show me bus routes", TitleFromMessage("Show me bus routes"))

	long := strings.Repeat("é", 60)
	title := TitleFromMessage(long)
	assert.Equal(t, strings.Repeat("é", 50)+"...", title)
}

func TestConversationAppendAndSummary(t *testing.T) {
	ctx := context.Background()
	svc := NewConversationService(newTestFactory(t), nopLogger)

	conv, err := svc.GetOrCreate(ctx, "s-1", nil)
	require.NoError(t, err)

	require.NoError(t, svc.AppendMessage(ctx, conv, &entity.Message{Role: constant.ChatMessageRoleUser, Content: "Show me bus routes"}))
	require.NoError(t, svc.AppendMessage(ctx, conv, &entity.Message{
		Role:      constant.ChatMessageRoleAssistant,
		Content:   "Route 12 leaves at 07:30.",
		AgentName: strPtr("Nexora Campus Copilot"),
		AgentUsed: strPtr("bus"),
	}))

	summary, err := svc.GetSummary(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalMessages)
	require.NotNil(t, summary.Title)
	assert.Equal(t, "Show me bus routes", *summary.Title)
	assert.True(t, summary.IsActive)

	again, err := svc.GetOrCreate(ctx, "s-1", strPtr("u-7"))
	require.NoError(t, err)
	assert.Equal(t, conv.Id, again.Id)
	require.NotNil(t, again.UserId)
	assert.Equal(t, "u-7", *again.UserId)
}

func TestConversationHistoryReturnsLatestOldestFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewConversationService(newTestFactory(t), nopLogger)
	conv, err := svc.GetOrCreate(ctx, "s-2", nil)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		role := constant.ChatMessageRoleUser
		if i%2 == 0 {
			role = constant.ChatMessageRoleAssistant
		}
		require.NoError(t, svc.AppendMessage(ctx, conv, &entity.Message{Role: role, Content: fmt.Sprintf("m%d", i)}))
	}

	history, err := svc.GetHistory(ctx, "s-2", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"m3", "m4", "m5"}, []string{history[0].Content, history[1].Content, history[2].Content})

	turns, err := svc.RecentHistory(ctx, conv, 2)
	require.NoError(t, err)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleAssistant, Content: "m4"},
		{Role: llm.RoleUser, Content: "m5"},
	}, turns)
}

func TestConversationDeactivate(t *testing.T) {
	ctx := context.Background()
	svc := NewConversationService(newTestFactory(t), nopLogger)
	_, err := svc.GetOrCreate(ctx, "s-3", nil)
	require.NoError(t, err)

	res, err := svc.Deactivate(ctx, "s-3")
	require.NoError(t, err)
	assert.Equal(t, "Conversation s-3 deactivated successfully", res.Message)

	summary, err := svc.GetSummary(ctx, "s-3")
	require.NoError(t, err)
	assert.False(t, summary.IsActive)

	// A new turn reopens it.
	conv, err := svc.GetOrCreate(ctx, "s-3", nil)
	require.NoError(t, err)
	assert.True(t, conv.IsActive)
}

func TestConversationNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewConversationService(newTestFactory(t), nopLogger)

	var notFound *serverutils.NotFoundError
	_, err := svc.GetSummary(ctx, "missing")
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Conversation not found", notFound.Message)

	_, err = svc.GetHistory(ctx, "missing", 10)
	assert.ErrorAs(t, err, &notFound)

	_, err = svc.Deactivate(ctx, "missing")
	assert.ErrorAs(t, err, &notFound)
}
