package outbox

import (
	"context"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
)

// OutboxRepository интерфейс репозитория исходящих событий
type OutboxRepository interface {
	ListPending(ctx context.Context, limit uint64) ([]*domain.BookingEvent, error)
	MarkDispatched(ctx context.Context, id int64) error
}

// EventPublisher публикует события в exchange
type EventPublisher interface {
	PublishRaw(ctx context.Context, key string, body []byte) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
