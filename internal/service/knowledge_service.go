package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nexora-campus-be/internal/constant"
	"nexora-campus-be/internal/dto"
	"nexora-campus-be/internal/pkg/logger"
	"nexora-campus-be/pkg/events"
	"nexora-campus-be/pkg/knowledge"
	"nexora-campus-be/pkg/metrics"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IKnowledgeService owns the knowledge base lifecycle. Reload requests from
// the file watcher and the event bus are queued on an in-process topic and
// applied one at a time.
type IKnowledgeService interface {
	Start(ctx context.Context) error
	RequestReload(ctx context.Context, reason string) error
	ReloadNow(ctx context.Context) (*dto.KnowledgeReloadResponse, error)
	Status() *dto.KnowledgeStatusResponse
	HandleReloadEvent(ctx context.Context, event events.Event) error
}

type KnowledgeOptions struct {
	Backend   string
	Directory string
	Topic     string
	Watch     bool
}

type reloadJob struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

type knowledgeService struct {
	base   *knowledge.Base
	pubSub *gochannel.GoChannel
	opts   KnowledgeOptions
	logger logger.ILogger
}

func NewKnowledgeService(base *knowledge.Base, pubSub *gochannel.GoChannel, opts KnowledgeOptions, logger logger.ILogger) IKnowledgeService {
	if opts.Topic == "" {
		opts.Topic = "KNOWLEDGE_RELOAD"
	}
	return &knowledgeService{base: base, pubSub: pubSub, opts: opts, logger: logger}
}

// Start loads the index, then serves queued reloads and, if enabled,
// watches the document directory. A failed first load is logged; the
// service keeps running in degraded mode.
func (s *knowledgeService) Start(ctx context.Context) error {
	if err := s.reload(ctx, "startup"); err != nil {
		s.logger.Warn(constant.ModuleKnowledge, "Initial knowledge load failed, continuing without knowledge base", map[string]interface{}{
			"error": err.Error(),
		})
	}

	messages, err := s.pubSub.Subscribe(ctx, s.opts.Topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.opts.Topic, err)
	}
	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	if s.opts.Watch && s.opts.Directory != "" {
		watcher, err := knowledge.NewWatcher(s.opts.Directory, 2*time.Second, func(ctx context.Context) {
			if err := s.RequestReload(ctx, "file change"); err != nil {
				s.logger.Error(constant.ModuleKnowledge, "Failed to queue reload", map[string]interface{}{"error": err.Error()})
			}
		})
		if err != nil {
			s.logger.Warn(constant.ModuleKnowledge, "File watcher disabled", map[string]interface{}{"error": err.Error()})
		} else {
			go watcher.Run(ctx)
		}
	}
	return nil
}

func (s *knowledgeService) RequestReload(_ context.Context, reason string) error {
	payload, err := json.Marshal(reloadJob{Reason: reason, RequestedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return s.pubSub.Publish(s.opts.Topic, message.NewMessage(watermill.NewUUID(), payload))
}

func (s *knowledgeService) ReloadNow(ctx context.Context) (*dto.KnowledgeReloadResponse, error) {
	if err := s.reload(ctx, "api"); err != nil {
		return nil, err
	}
	return &dto.KnowledgeReloadResponse{
		Message:                 "Knowledge base reloaded",
		KnowledgeStatusResponse: *s.Status(),
	}, nil
}

func (s *knowledgeService) Status() *dto.KnowledgeStatusResponse {
	return &dto.KnowledgeStatusResponse{
		Backend:   s.opts.Backend,
		Directory: s.opts.Directory,
		Stats:     s.base.Stats(),
	}
}

// HandleReloadEvent queues a reload for an event received from the bus.
func (s *knowledgeService) HandleReloadEvent(ctx context.Context, event events.Event) error {
	reason := "event"
	if r, ok := event.Payload()["reason"].(string); ok && r != "" {
		reason = r
	}
	return s.RequestReload(ctx, reason)
}

func (s *knowledgeService) processMessage(ctx context.Context, msg *message.Message) {
	var job reloadJob
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		s.logger.Error(constant.ModuleKnowledge, "Invalid reload job", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if err := s.reload(ctx, job.Reason); err != nil {
		s.logger.Error(constant.ModuleKnowledge, "Queued reload failed, previous index kept", map[string]interface{}{
			"reason": job.Reason,
			"error":  err.Error(),
		})
	}
	// A failed rebuild is not retried; the next trigger rebuilds again.
	msg.Ack()
}

func (s *knowledgeService) reload(ctx context.Context, reason string) error {
	started := time.Now()
	err := s.base.Reload(ctx)
	metrics.KnowledgeReloads.WithLabelValues(metrics.Outcome(err == nil)).Inc()
	if err != nil {
		return err
	}

	stats := s.base.Stats()
	metrics.KnowledgeChunks.Set(float64(stats.Chunks))
	s.logger.Info(constant.ModuleKnowledge, "Knowledge base reloaded", map[string]interface{}{
		"reason":      reason,
		"documents":   stats.Documents,
		"chunks":      stats.Chunks,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	return nil
}
