package audit

import (
	"context"
	"log/slog"
)

// Service fans a record out to every configured sink. Submission is
// fire-and-forget: a failing sink is logged and the decision already made
// is unaffected.
type Service interface {
	Submit(ctx context.Context, record Record)
}

type service struct {
	sinks []Sink
}

func NewService(sinks ...Sink) Service {
	return &service{sinks: sinks}
}

func (s *service) Submit(ctx context.Context, record Record) {
	ctx, span := tracer.Start(ctx, "Audit.Service.Submit")
	defer span.End()

	for _, sink := range s.sinks {
		if err := sink.Submit(ctx, record); err != nil {
			span.RecordError(err)
			slog.ErrorContext(ctx, "audit sink submission failed",
				slog.String("requestId", record.RequestID),
				slog.String("error", err.Error()),
			)
		}
	}
}
