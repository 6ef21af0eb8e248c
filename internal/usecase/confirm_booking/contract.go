package confirm_booking

import (
	"context"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Booking, error)
}

// OutboxRepository интерфейс репозитория исходящих событий
type OutboxRepository interface {
	Create(ctx context.Context, event *domain.BookingEvent) error
}

// LedgerService интерфейс сервиса учета доступности
type LedgerService interface {
	GetSlot(ctx context.Context, slotID int64) (*domain.AvailabilitySlot, error)
	GetHold(ctx context.Context, holdID string) (*domain.ReservationHold, error)
	Reserve(ctx context.Context, slotID int64, players int) (*domain.ReservationHold, error)
	Release(ctx context.Context, holdID string) error
}

// PaymentService интерфейс платежного оркестратора
type PaymentService interface {
	CheckStatus(ctx context.Context, transactionID string) (*domain.PaymentTransaction, error)
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
