package notifications

import (
	"context"

	"go.uber.org/zap"
)

type EventSink interface {
	Append(ctx context.Context, userID *int64, name string, props map[string]any) error
}

// Service appends domain events for downstream delivery. Emission is
// best-effort: a failed append is logged and never propagates into the flow
// that produced the event.
type Service struct {
	sink EventSink
	log  *zap.Logger
}

func NewService(sink EventSink, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		sink: sink,
		log:  log,
	}
}

func (s *Service) Emit(ctx context.Context, userID *int64, name string, props map[string]any) {
	if s.sink == nil || name == "" {
		return
	}

	if err := s.sink.Append(ctx, userID, name, props); err != nil {
		s.log.Warn("append event failed",
			zap.String("event", name),
			zap.Error(err),
		)
	}
}
