package start_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/ledger"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/payments"
)

// UseCase use case старта бронирования: резервация мест + открытие платежа
// Бронирование на этом шаге еще не создается - оно появится только после
// подтверждения платежа. До тех пор попытку представляют hold и транзакция.
type UseCase struct {
	ledgerService  LedgerService
	paymentService PaymentService
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	ledgerService LedgerService,
	paymentService PaymentService,
	logger Logger,
) *UseCase {
	return &UseCase{
		ledgerService:  ledgerService,
		paymentService: paymentService,
		logger:         logger,
	}
}

// Execute выполняет use case старта бронирования
// Порядок строгий: сначала резервация мест, затем открытие платежа.
// Если платеж открыть не удалось, резервация откатывается компенсирующим
// release - клиент никогда не платит за места, которых нет.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("StartBooking: amateur=%d, slot=%d, players=%d", req.AmateurID, req.SlotID, req.Players)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("StartBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем слот: цена и валюта нужны для суммы платежа
	slot, err := uc.ledgerService.GetSlot(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, ledger.ErrSlotNotFound) {
			uc.logger.Warn("StartBooking: slot id=%d not found", req.SlotID)
			return nil, ErrSlotNotFound
		}
		uc.logger.Error("StartBooking: failed to get slot id=%d: %v", req.SlotID, err)
		return nil, fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
	}

	// 3. Атомарно резервируем места
	hold, err := uc.ledgerService.Reserve(ctx, req.SlotID, req.Players)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrSlotNotFound):
			return nil, ErrSlotNotFound
		case errors.Is(err, ledger.ErrSlotUnavailable):
			uc.logger.Info("StartBooking: slot id=%d unavailable for %d players", req.SlotID, req.Players)
			return nil, ErrSlotUnavailable
		case errors.Is(err, ledger.ErrInvalidPlayers):
			return nil, fmt.Errorf("%w: invalid players count", ErrInvalidInput)
		default:
			uc.logger.Error("StartBooking: reserve failed for slot id=%d: %v", req.SlotID, err)
			return nil, fmt.Errorf("%w: reserve failed: %v", ErrInternal, err)
		}
	}

	// 4. Открываем платежную транзакцию на сумму за всех игроков
	amount := slot.TotalAmount(req.Players)
	description := fmt.Sprintf("Golf lesson on %s at %s, %d player(s)",
		slot.Date.Format(domain.DateFormat), slot.StartTime, req.Players)

	transaction, err := uc.paymentService.CreateTransaction(ctx, payments.CreateTransactionParams{
		HoldID:         hold.ID,
		SlotID:         slot.ID,
		AmateurID:      req.AmateurID,
		ProfessionalID: slot.ProfessionalID,
		AmountMinor:    amount,
		Currency:       slot.Currency,
		Description:    description,
	})
	if err != nil {
		// Компенсирующий release: места возвращаются немедленно,
		// не дожидаясь истечения hold'а
		uc.logger.Error("StartBooking: payment creation failed for hold=%s, releasing: %v", hold.ID, err)
		if releaseErr := uc.ledgerService.Release(ctx, hold.ID); releaseErr != nil {
			uc.logger.Error("StartBooking: compensating release failed for hold=%s: %v", hold.ID, releaseErr)
		}

		if errors.Is(err, payments.ErrProcessorUnavailable) {
			return nil, ErrPaymentUnavailable
		}
		return nil, fmt.Errorf("%w: payment creation failed: %v", ErrInternal, err)
	}

	uc.logger.Info("StartBooking: hold=%s, transaction=%s, amount=%d %s, expires_at=%s",
		hold.ID, transaction.ID, amount, slot.Currency, hold.ExpiresAt.Format(time.RFC3339))

	return &Response{
		HoldID:        hold.ID,
		TransactionID: transaction.ID,
		ClientSecret:  transaction.ClientSecret,
		SlotID:        slot.ID,
		Players:       req.Players,
		AmountMinor:   amount,
		Currency:      slot.Currency,
		ExpiresAt:     hold.ExpiresAt,
	}, nil
}
