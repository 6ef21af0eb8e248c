package ledger

import (
	"context"
	"time"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// SlotRepository интерфейс репозитория слотов и hold'ов
type SlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.AvailabilitySlot, error)
	GetByProfessionalDateTime(ctx context.Context, professionalID int64, date time.Time, startTime types.TimeString) (*domain.AvailabilitySlot, error)
	ReserveCapacity(ctx context.Context, slotID int64, players int) error
	CreateHold(ctx context.Context, hold *domain.ReservationHold) error
	GetHold(ctx context.Context, holdID string) (*domain.ReservationHold, error)
	CommitHold(ctx context.Context, holdID string) error
	ReleaseHold(ctx context.Context, holdID string) error
	ForceReleaseHold(ctx context.Context, holdID string) error
	ListExpiredActiveHolds(ctx context.Context, now time.Time, limit uint64) ([]*domain.ReservationHold, error)
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
