package sweeper

import (
	"context"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
)

// LedgerService сервис учёта доступности слотов
type LedgerService interface {
	ReleaseExpired(ctx context.Context, limit uint64) ([]*domain.ReservationHold, error)
}

// PaymentService платежный оркестратор
type PaymentService interface {
	CancelPendingForHold(ctx context.Context, holdID string) error
	RetryPendingRefunds(ctx context.Context, limit uint64) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
