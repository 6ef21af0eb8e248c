package respond_alternative

import (
	"context"
	"time"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatusIf(ctx context.Context, id int64, from, to domain.BookingStatus) error
	ReassignSlot(ctx context.Context, id int64, from, to domain.BookingStatus, slotID int64, holdID string, lessonDate time.Time, startTime types.TimeString) error
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	CommitHold(ctx context.Context, holdID string) error
}

// OutboxRepository интерфейс репозитория исходящих событий
type OutboxRepository interface {
	Create(ctx context.Context, event *domain.BookingEvent) error
}

// LedgerService интерфейс сервиса учета доступности
type LedgerService interface {
	FindSlot(ctx context.Context, professionalID int64, date time.Time, startTime types.TimeString) (*domain.AvailabilitySlot, error)
	Reserve(ctx context.Context, slotID int64, players int) (*domain.ReservationHold, error)
	Release(ctx context.Context, holdID string) error
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
