//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mock/store.go
package cache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("cache")

// Store is a TTL-bounded key/value store shared by the caching decorators.
// Implementations must be safe for concurrent use; racing writers on the
// same key are last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
