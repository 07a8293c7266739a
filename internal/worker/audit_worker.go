package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/user-scoring-service/internal/events"
)

// AuditWorker writes every user lifecycle event to the service log.
type AuditWorker struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditWorker creates the worker.
func NewAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) *AuditWorker {
	return &AuditWorker{dispatcher: dispatcher, logger: logger}
}

// Start subscribes the worker to the lifecycle events.
func (w *AuditWorker) Start() {
	if w.dispatcher == nil {
		return
	}
	w.dispatcher.Subscribe(events.EventUserCreated, w.handleUserCreated)
	w.dispatcher.Subscribe(events.EventUserScoreChanged, w.handleScoreChanged)
	w.dispatcher.Subscribe(events.EventUserStatusChanged, w.handleStatusChanged)
}

func (w *AuditWorker) handleUserCreated(_ context.Context, event events.Event) error {
	w.logger.Info("UserCreated",
		zap.String("event_id", event.ID),
		zap.String("username", event.Username),
		zap.Any("payload", event.Payload))
	return nil
}

func (w *AuditWorker) handleScoreChanged(_ context.Context, event events.Event) error {
	w.logger.Info("UserScoreChanged",
		zap.String("event_id", event.ID),
		zap.String("username", event.Username),
		zap.Any("payload", event.Payload))
	return nil
}

func (w *AuditWorker) handleStatusChanged(_ context.Context, event events.Event) error {
	w.logger.Info("UserStatusChanged",
		zap.String("event_id", event.ID),
		zap.String("username", event.Username),
		zap.Any("payload", event.Payload))
	return nil
}
