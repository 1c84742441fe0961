package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"nexora-campus-be/internal/model"
	"nexora-campus-be/internal/pkg/logger"
	"nexora-campus-be/internal/repository/unitofwork"
	"nexora-campus-be/pkg/database"
	"nexora-campus-be/pkg/events"

	"github.com/stretchr/testify/require"
)

var nopLogger = logger.NewNopLogger()

func newTestFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.NewGormDBFromDSN(fmt.Sprintf("sqlite:file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db, false))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return unitofwork.NewRepositoryFactory(db)
}

type spyPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *spyPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *spyPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func strPtr(s string) *string { return &s }
