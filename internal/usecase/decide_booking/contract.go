package decide_booking

import (
	"context"
	"time"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ApplyDecision(ctx context.Context, id int64, from, to domain.BookingStatus, notes *string, proposedDate *time.Time, proposedStartTime *types.TimeString) error
}

// SlotRepository интерфейс репозитория слотов
// Commit и release hold'ов выполняются внутри транзакции решения
type SlotRepository interface {
	CommitHold(ctx context.Context, holdID string) error
	ReleaseHold(ctx context.Context, holdID string) error
}

// ValidationRepository интерфейс репозитория аудита решений
type ValidationRepository interface {
	Create(ctx context.Context, rec *domain.AdminValidationRecord) error
}

// OutboxRepository интерфейс репозитория исходящих событий
type OutboxRepository interface {
	Create(ctx context.Context, event *domain.BookingEvent) error
}

// PaymentService интерфейс платежного оркестратора
type PaymentService interface {
	Refund(ctx context.Context, transactionID string, amountMinor int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
