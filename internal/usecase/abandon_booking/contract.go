package abandon_booking

import (
	"context"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
)

// LedgerService интерфейс сервиса учета доступности
type LedgerService interface {
	Release(ctx context.Context, holdID string) error
}

// PaymentService интерфейс платежного оркестратора
type PaymentService interface {
	GetTransaction(ctx context.Context, transactionID string) (*domain.PaymentTransaction, error)
	CancelTransaction(ctx context.Context, transactionID string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
