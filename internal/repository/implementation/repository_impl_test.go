package implementation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"nexora-campus-be/internal/entity"
	"nexora-campus-be/internal/model"
	"nexora-campus-be/internal/repository/specification"
	"nexora-campus-be/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("sqlite:file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db, false))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func strPtr(s string) *string { return &s }

func TestConversationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(newTestDB(t))

	conv := &entity.Conversation{SessionId: "s-1", UserId: strPtr("u-1"), Title: strPtr("Bus times"), IsActive: true}
	require.NoError(t, repo.Create(ctx, conv))
	assert.NotEmpty(t, conv.Id)
	assert.False(t, conv.LastActivity.IsZero())

	found, err := repo.FindOne(ctx, specification.BySessionID{SessionID: "s-1"})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, conv.Id, found.Id)
	assert.Equal(t, "Bus times", *found.Title)

	missing, err := repo.FindOne(ctx, specification.BySessionID{SessionID: "nope"})
	require.NoError(t, err)
	assert.Nil(t, missing)

	at := time.Now().UTC().Add(time.Minute)
	total, err := repo.RecordMessage(ctx, conv.Id, at)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	total, err = repo.RecordMessage(ctx, conv.Id, at)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	require.NoError(t, repo.Deactivate(ctx, conv.Id))
	found, err = repo.FindOne(ctx, specification.ByID{ID: conv.Id})
	require.NoError(t, err)
	assert.False(t, found.IsActive)
	assert.Equal(t, 2, found.TotalMessages)

	n, err := repo.Count(ctx, specification.ActiveOnly{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMessageRepositoryOrdering(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	convs := NewConversationRepository(db)
	msgs := NewMessageRepository(db)

	conv := &entity.Conversation{SessionId: "s-2", IsActive: true}
	require.NoError(t, convs.Create(ctx, conv))

	// Same timestamp for every row; sequence alone must order them.
	at := time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)
	for i, content := range []string{"first", "second", "third"} {
		ok := true
		require.NoError(t, msgs.Create(ctx, &entity.Message{
			ConversationId: conv.Id,
			Role:           "user",
			Content:        content,
			Sequence:       i + 1,
			CreatedAt:      at,
			Success:        &ok,
			Usage:          map[string]interface{}{"tools": float64(i)},
		}))
	}

	latest, err := msgs.FindAll(ctx,
		specification.ByConversationID{ConversationID: conv.Id},
		specification.Newest{},
		specification.Pagination{Limit: 2},
	)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "third", latest[0].Content)
	assert.Equal(t, "second", latest[1].Content)
	assert.Equal(t, float64(2), latest[0].Usage["tools"])

	n, err := msgs.Count(ctx, specification.ByConversationID{ConversationID: conv.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
