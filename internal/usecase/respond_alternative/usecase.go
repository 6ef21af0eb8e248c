package respond_alternative

import (
	"context"
	"errors"
	"fmt"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	bookingRepo "github.com/fairwaylabs/GLM-BookingService/internal/infra/storage/booking"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings/models"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/ledger"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/payments"
)

// UseCase use case ответа любителя на альтернативное предложение администратора
// Принятие переносит бронирование на предложенный слот: места резервируются
// заново (исходные были освобождены при предложении) и сразу коммитятся.
// Отклонение закрывает бронирование с полным возвратом средств.
type UseCase struct {
	bookingRepo    BookingRepository
	slotRepo       SlotRepository
	outboxRepo     OutboxRepository
	ledgerService  LedgerService
	paymentService PaymentService
	txManager      TransactionManager
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	outboxRepo OutboxRepository,
	ledgerService LedgerService,
	paymentService PaymentService,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		slotRepo:       slotRepo,
		outboxRepo:     outboxRepo,
		ledgerService:  ledgerService,
		paymentService: paymentService,
		txManager:      txManager,
		logger:         logger,
	}
}

// Execute выполняет use case ответа на альтернативное предложение
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RespondAlternative: amateur=%d, booking=%d, accept=%t", req.AmateurID, req.BookingID, req.Accept)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RespondAlternative: validation failed: %v", err)
		return nil, err
	}

	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RespondAlternative: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if booking.AmateurID != req.AmateurID {
		uc.logger.Warn("RespondAlternative: access denied for amateur=%d to booking id=%d", req.AmateurID, req.BookingID)
		return nil, ErrAccessDenied
	}

	if !booking.AwaitsAmateurResponse() {
		uc.logger.Warn("RespondAlternative: booking id=%d is %s, no alternative to respond to",
			req.BookingID, booking.Status)
		return nil, ErrNoAlternativeProposed
	}

	var refundPending bool
	if req.Accept {
		err = uc.accept(ctx, booking)
	} else {
		refundPending, err = uc.decline(ctx, booking)
	}
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			uc.logger.Warn("RespondAlternative: booking id=%d changed status concurrently", req.BookingID)
			return nil, ErrStatusConflict
		}
		return nil, err
	}

	updated, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to re-read booking: %v", ErrInternal, err)
	}

	uc.logger.Info("RespondAlternative: booking id=%d -> %s", req.BookingID, updated.Status)
	return &Response{Booking: models.FromDomainBooking(updated), RefundPending: refundPending}, nil
}

// accept переносит бронирование на предложенный слот и подтверждает его
// Места нового слота резервируются до транзакции переноса; если перенос не
// применился, резервация откатывается компенсирующим release
func (uc *UseCase) accept(ctx context.Context, booking *domain.Booking) error {
	if booking.ProposedDate == nil || booking.ProposedStartTime == nil {
		return fmt.Errorf("%w: booking id=%d has no proposed slot data", ErrInternal, booking.ID)
	}

	slot, err := uc.ledgerService.FindSlot(ctx, booking.ProfessionalID, *booking.ProposedDate, *booking.ProposedStartTime)
	if err != nil {
		if errors.Is(err, ledger.ErrSlotNotFound) {
			uc.logger.Warn("RespondAlternative: proposed slot not found for booking id=%d", booking.ID)
			return ErrAlternativeSlotUnavailable
		}
		return fmt.Errorf("%w: failed to find proposed slot: %v", ErrInternal, err)
	}

	hold, err := uc.ledgerService.Reserve(ctx, slot.ID, booking.Players)
	if err != nil {
		if errors.Is(err, ledger.ErrSlotUnavailable) {
			uc.logger.Warn("RespondAlternative: proposed slot id=%d full for booking id=%d", slot.ID, booking.ID)
			return ErrAlternativeSlotUnavailable
		}
		return fmt.Errorf("%w: reserve on proposed slot failed: %v", ErrInternal, err)
	}

	err = uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		// Перенос на новый слот фиксирует принятие альтернативы
		if err := uc.bookingRepo.ReassignSlot(ctx, booking.ID,
			domain.StatusAlternativeProposed, domain.StatusAlternativeAccepted,
			slot.ID, hold.ID, slot.Date, slot.StartTime); err != nil {
			return err
		}
		// Принятая альтернатива сразу подтверждается: повторная проверка
		// администратором не требуется
		if err := uc.bookingRepo.UpdateStatusIf(ctx, booking.ID,
			domain.StatusAlternativeAccepted, domain.StatusConfirmed); err != nil {
			return err
		}
		if err := uc.slotRepo.CommitHold(ctx, hold.ID); err != nil {
			return err
		}
		return uc.outboxRepo.Create(ctx, bookings.BuildEvent(
			domain.EventBookingConfirmed, booking, domain.StatusConfirmed, "alternative accepted"))
	})

	if err != nil {
		// Возвращаем места нового слота: перенос не состоялся
		if releaseErr := uc.ledgerService.Release(ctx, hold.ID); releaseErr != nil {
			uc.logger.Error("RespondAlternative: compensating release failed for hold=%s: %v", hold.ID, releaseErr)
		}
		return err
	}

	return nil
}

// decline отклоняет альтернативу и закрывает бронирование с полным возвратом
// Места не освобождаются - они были освобождены еще при предложении альтернативы
func (uc *UseCase) decline(ctx context.Context, booking *domain.Booking) (bool, error) {
	err := uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := uc.bookingRepo.UpdateStatusIf(ctx, booking.ID,
			domain.StatusAlternativeProposed, domain.StatusAlternativeDeclined); err != nil {
			return err
		}
		if err := uc.bookingRepo.UpdateStatusIf(ctx, booking.ID,
			domain.StatusAlternativeDeclined, domain.StatusRejected); err != nil {
			return err
		}
		return uc.outboxRepo.Create(ctx, bookings.BuildEvent(
			domain.EventBookingRejected, booking, domain.StatusRejected, "alternative declined"))
	})
	if err != nil {
		return false, err
	}

	if err := uc.paymentService.Refund(ctx, booking.PaymentTransactionID, 0); err != nil {
		if errors.Is(err, payments.ErrRefundFailed) {
			uc.logger.Warn("RespondAlternative: refund pending for booking id=%d: %v", booking.ID, err)
			return true, nil
		}
		uc.logger.Error("RespondAlternative: refund failed for booking id=%d: %v", booking.ID, err)
		return true, nil
	}

	return false, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AmateurID <= 0 {
		return fmt.Errorf("%w: amateurID must be positive", ErrInvalidInput)
	}
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	return nil
}
