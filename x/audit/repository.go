//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=mock/repository.go
package audit

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("audit")

// Sink receives decision records. Sinks must never influence the decision
// that produced the record; errors are the caller's to log and drop.
type Sink interface {
	Submit(ctx context.Context, record Record) error
}

type slogSink struct{}

// NewSlogSink writes records to the structured log. Always available,
// even with no database configured.
func NewSlogSink() Sink {
	return &slogSink{}
}

func (s *slogSink) Submit(ctx context.Context, record Record) error {
	slog.InfoContext(ctx, "audit",
		slog.String("outcome", record.Outcome),
		slog.String("reason", record.Reason),
		slog.String("block", record.Block),
		slog.String("requestId", record.RequestID),
		slog.String("action", record.Action),
		slog.String("indices", strings.Join(record.Indices, ",")),
		slog.String("user", record.User),
		slog.Int64("durationMs", record.DurationMs),
	)
	return nil
}

type gormSink struct {
	db *gorm.DB
}

// NewGormSink persists records to the audit table.
func NewGormSink(db *gorm.DB) Sink {
	return &gormSink{db: db}
}

func (s *gormSink) Submit(ctx context.Context, record Record) error {
	ctx, span := tracer.Start(ctx, "Audit.Sink.Submit")
	defer span.End()

	err := s.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		span.RecordError(err)
	}
	return err
}
