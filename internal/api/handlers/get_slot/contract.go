package get_slot

import (
	"context"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
)

// LedgerService сервис учёта доступности слотов
type LedgerService interface {
	GetSlot(ctx context.Context, slotID int64) (*domain.AvailabilitySlot, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
