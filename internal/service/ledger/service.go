package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	slotRepo "github.com/fairwaylabs/GLM-BookingService/internal/infra/storage/slot"
	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// Service сервис учета доступности (availability ledger)
// Единственная точка изменения счетчиков слотов: резервация, commit и release
// hold'ов. Все мутации выполняются в SERIALIZABLE транзакциях.
type Service struct {
	slotRepo  SlotRepository
	txManager TransactionManager
	holdTTL   time.Duration
	logger    Logger
}

// NewService создает новый экземпляр сервиса учета доступности
func NewService(
	slotRepo SlotRepository,
	txManager TransactionManager,
	holdTTL time.Duration,
	logger Logger,
) *Service {
	if holdTTL <= 0 {
		holdTTL = time.Duration(domain.DefaultHoldTTLMinutes) * time.Minute
	}
	return &Service{
		slotRepo:  slotRepo,
		txManager: txManager,
		holdTTL:   holdTTL,
		logger:    logger,
	}
}

// GetSlot получает слот по ID
func (s *Service) GetSlot(ctx context.Context, slotID int64) (*domain.AvailabilitySlot, error) {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("%w: GetSlot - repository error: %v", ErrInternal, err)
	}
	return slot, nil
}

// FindSlot ищет слот профессионала на конкретную дату и время
// Используется при принятии альтернативы, предложенной администратором
func (s *Service) FindSlot(ctx context.Context, professionalID int64, date time.Time, startTime types.TimeString) (*domain.AvailabilitySlot, error) {
	slot, err := s.slotRepo.GetByProfessionalDateTime(ctx, professionalID, date, startTime)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("%w: FindSlot - repository error: %v", ErrInternal, err)
	}
	return slot, nil
}

// Reserve атомарно резервирует places мест в слоте и создает hold
// Проверка вместимости и инкремент счетчика выполняются одним условным
// UPDATE в одной транзакции с созданием hold'а: два конкурентных запроса
// на последнее место не могут пройти оба.
func (s *Service) Reserve(ctx context.Context, slotID int64, players int) (*domain.ReservationHold, error) {
	if players < domain.MinPlayersPerBooking || players > domain.MaxPlayersPerBooking {
		s.logger.Warn("Reserve: invalid players count %d for slot=%d", players, slotID)
		return nil, ErrInvalidPlayers
	}

	hold := &domain.ReservationHold{
		ID:        uuid.NewString(),
		SlotID:    slotID,
		Players:   players,
		Status:    domain.HoldStatusActive,
		ExpiresAt: time.Now().Add(s.holdTTL),
	}

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := s.slotRepo.ReserveCapacity(ctx, slotID, players); err != nil {
			return err
		}
		return s.slotRepo.CreateHold(ctx, hold)
	})

	if err != nil {
		switch {
		case errors.Is(err, slotRepo.ErrSlotNotFound):
			s.logger.Warn("Reserve: slot=%d not found", slotID)
			return nil, ErrSlotNotFound
		case errors.Is(err, slotRepo.ErrSlotFull):
			s.logger.Info("Reserve: slot=%d cannot fit %d players", slotID, players)
			return nil, ErrSlotUnavailable
		default:
			s.logger.Error("Reserve: transaction failed for slot=%d: %v", slotID, err)
			return nil, fmt.Errorf("%w: Reserve - transaction failed: %v", ErrInternal, err)
		}
	}

	s.logger.Info("Reserve: created hold=%s for slot=%d, players=%d, expires_at=%s",
		hold.ID, slotID, players, hold.ExpiresAt.Format(time.RFC3339))
	return hold, nil
}

// GetHold получает hold по ID
func (s *Service) GetHold(ctx context.Context, holdID string) (*domain.ReservationHold, error) {
	hold, err := s.slotRepo.GetHold(ctx, holdID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrHoldNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, fmt.Errorf("%w: GetHold - repository error: %v", ErrInternal, err)
	}
	return hold, nil
}

// Commit окончательно закрепляет зарезервированные места (active -> committed)
// Счетчик слота не меняется: места были заняты при резервации
// Повторный commit - идемпотентный no-op
func (s *Service) Commit(ctx context.Context, holdID string) error {
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		return s.slotRepo.CommitHold(ctx, holdID)
	})

	if err != nil {
		switch {
		case errors.Is(err, slotRepo.ErrHoldNotFound):
			return ErrHoldNotFound
		case errors.Is(err, slotRepo.ErrHoldReleased):
			s.logger.Warn("Commit: hold=%s already released", holdID)
			return ErrHoldReleased
		default:
			s.logger.Error("Commit: transaction failed for hold=%s: %v", holdID, err)
			return fmt.Errorf("%w: Commit - transaction failed: %v", ErrInternal, err)
		}
	}

	s.logger.Info("Commit: hold=%s committed", holdID)
	return nil
}

// Release освобождает активный hold и возвращает места в слот
// Повторный release и release закоммиченного hold'а - идемпотентный no-op:
// счетчик декрементируется ровно один раз
func (s *Service) Release(ctx context.Context, holdID string) error {
	return s.release(ctx, holdID, false)
}

// ForceRelease освобождает hold, даже если он был закоммичен
// Используется только при отмене подтвержденного бронирования
func (s *Service) ForceRelease(ctx context.Context, holdID string) error {
	return s.release(ctx, holdID, true)
}

func (s *Service) release(ctx context.Context, holdID string, force bool) error {
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if force {
			return s.slotRepo.ForceReleaseHold(ctx, holdID)
		}
		return s.slotRepo.ReleaseHold(ctx, holdID)
	})

	if err != nil {
		if errors.Is(err, slotRepo.ErrHoldNotFound) {
			return ErrHoldNotFound
		}
		s.logger.Error("Release: transaction failed for hold=%s: %v", holdID, err)
		return fmt.Errorf("%w: Release - transaction failed: %v", ErrInternal, err)
	}

	s.logger.Info("Release: hold=%s released (force=%t)", holdID, force)
	return nil
}

// ReleaseExpired освобождает активные hold'ы с истекшим сроком,
// не привязанные к живым бронированиям. Возвращает освобожденные hold'ы,
// чтобы вызывающая сторона могла отменить связанные платежные транзакции.
func (s *Service) ReleaseExpired(ctx context.Context, limit uint64) ([]*domain.ReservationHold, error) {
	holds, err := s.slotRepo.ListExpiredActiveHolds(ctx, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: ReleaseExpired - list expired holds: %v", ErrInternal, err)
	}

	released := make([]*domain.ReservationHold, 0, len(holds))
	for _, hold := range holds {
		if err := s.Release(ctx, hold.ID); err != nil {
			// Не прерываем обход: остальные hold'ы все равно нужно освободить
			s.logger.Error("ReleaseExpired: failed to release hold=%s: %v", hold.ID, err)
			continue
		}
		released = append(released, hold)
	}

	if len(released) > 0 {
		s.logger.Info("ReleaseExpired: released %d expired holds", len(released))
	}
	return released, nil
}
