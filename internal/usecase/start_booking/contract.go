package start_booking

import (
	"context"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/payments"
)

// LedgerService интерфейс сервиса учета доступности
type LedgerService interface {
	GetSlot(ctx context.Context, slotID int64) (*domain.AvailabilitySlot, error)
	Reserve(ctx context.Context, slotID int64, players int) (*domain.ReservationHold, error)
	Release(ctx context.Context, holdID string) error
}

// PaymentService интерфейс платежного оркестратора
type PaymentService interface {
	CreateTransaction(ctx context.Context, params payments.CreateTransactionParams) (*domain.PaymentTransaction, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
