package bookings

import (
	"context"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByAmateurID(ctx context.Context, amateurID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByProfessionalWithFilter(ctx context.Context, filter domain.ProfessionalBookingsFilter) ([]*domain.Booking, error)
	UpdateStatusIf(ctx context.Context, id int64, from, to domain.BookingStatus) error
}

// SlotRepository интерфейс репозитория слотов (только release hold'ов)
// Вызывается внутри транзакции отмены, поэтому сервис работает с репозиторием
// напрямую, а не через ledger-сервис с его собственными транзакциями
type SlotRepository interface {
	ForceReleaseHold(ctx context.Context, holdID string) error
}

// OutboxRepository интерфейс репозитория исходящих событий
type OutboxRepository interface {
	Create(ctx context.Context, event *domain.BookingEvent) error
}

// ValidationRepository интерфейс репозитория аудита решений администраторов
type ValidationRepository interface {
	ListByBookingID(ctx context.Context, bookingID int64) ([]*domain.AdminValidationRecord, error)
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
