package confirm_booking

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

// UseCase use case подтверждения бронирования после оплаты
// Ключ идемпотентности - ID платежной транзакции: сколько бы раз клиент ни
// повторил запрос, будет создано ровно одно бронирование и списан ровно
// один платеж.
type UseCase struct {
	bookingRepo    BookingRepository
	outboxRepo     OutboxRepository
	ledgerService  LedgerService
	paymentService PaymentService
	txManager      TransactionManager
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	outboxRepo OutboxRepository,
	ledgerService LedgerService,
	paymentService PaymentService,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		outboxRepo:     outboxRepo,
		ledgerService:  ledgerService,
		paymentService: paymentService,
		txManager:      txManager,
		logger:         logger,
	}
}

// Execute выполняет use case подтверждения бронирования
// Статус платежа проверяется у процессора, а не берется из запроса клиента.
// Бронирование создается с ON CONFLICT по transaction id: конкурентный повтор
// получает уже созданную запись.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ConfirmBooking: amateur=%d, transaction=%s", req.AmateurID, req.TransactionID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ConfirmBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Идемпотентный повтор: бронирование уже существует
	if existing, err := uc.bookingRepo.GetByTransactionID(ctx, req.TransactionID); err == nil {
		uc.logger.Info("ConfirmBooking: booking id=%d already exists for transaction=%s",
			existing.ID, req.TransactionID)
		return &Response{Booking: models.FromDomainBooking(existing), AlreadyExisted: true}, nil
	} else if !errors.Is(err, bookingRepo.ErrBookingNotFound) {
		uc.logger.Error("ConfirmBooking: lookup by transaction=%s failed: %v", req.TransactionID, err)
		return nil, fmt.Errorf("%w: lookup by transaction failed: %v", ErrInternal, err)
	}

	// 3. Сверяем статус платежа с процессором
	transaction, err := uc.paymentService.CheckStatus(ctx, req.TransactionID)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrTransactionNotFound):
			return nil, ErrTransactionNotFound
		case errors.Is(err, payments.ErrProcessorUnavailable):
			uc.logger.Warn("ConfirmBooking: processor unavailable for transaction=%s", req.TransactionID)
			return nil, ErrPaymentUnavailable
		default:
			uc.logger.Error("ConfirmBooking: status check failed for transaction=%s: %v", req.TransactionID, err)
			return nil, fmt.Errorf("%w: status check failed: %v", ErrInternal, err)
		}
	}

	if transaction.AmateurID != req.AmateurID {
		uc.logger.Warn("ConfirmBooking: transaction=%s belongs to amateur=%d, requested by %d",
			req.TransactionID, transaction.AmateurID, req.AmateurID)
		return nil, ErrAccessDenied
	}

	// 4. Платеж не прошел - закрываем попытку
	switch transaction.Status {
	case domain.PaymentStatusSucceeded:
		// Продолжаем
	case domain.PaymentStatusFailed, domain.PaymentStatusCanceled:
		uc.logger.Info("ConfirmBooking: transaction=%s is %s, releasing hold=%s",
			req.TransactionID, transaction.Status, transaction.HoldID)
		if err := uc.ledgerService.Release(ctx, transaction.HoldID); err != nil {
			uc.logger.Error("ConfirmBooking: release failed for hold=%s: %v", transaction.HoldID, err)
		}
		return nil, ErrPaymentFailed
	default:
		// created / requires_confirmation: оплата еще идет, hold сохраняем
		uc.logger.Info("ConfirmBooking: transaction=%s still %s", req.TransactionID, transaction.Status)
		return nil, ErrPaymentNotConfirmed
	}

	// 5. Проверяем, что резервация пережила окно оплаты
	hold, err := uc.ensureHold(ctx, transaction)
	if err != nil {
		return nil, err
	}

	slot, err := uc.ledgerService.GetSlot(ctx, hold.SlotID)
	if err != nil {
		uc.logger.Error("ConfirmBooking: failed to get slot id=%d: %v", hold.SlotID, err)
		return nil, fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
	}

	// 6. Создаем бронирование и событие в одной транзакции
	booking := &domain.Booking{
		AmateurID:            transaction.AmateurID,
		ProfessionalID:       slot.ProfessionalID,
		SlotID:               slot.ID,
		CourseID:             slot.CourseID,
		LessonDate:           slot.Date,
		StartTime:            slot.StartTime,
		Players:              hold.Players,
		AmountMinor:          transaction.AmountMinor,
		Currency:             transaction.Currency,
		SpecialRequests:      req.SpecialRequests,
		PaymentTransactionID: transaction.ID,
		PaymentStatus:        transaction.Status,
		HoldID:               hold.ID,
		Status:               domain.StatusPendingAdminValidation,
	}

	var created *domain.Booking
	err = uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		var createErr error
		created, createErr = uc.bookingRepo.Create(ctx, booking)
		if createErr != nil {
			return createErr
		}
		return uc.outboxRepo.Create(ctx, bookings.BuildEvent(
			domain.EventBookingPending, created, domain.StatusPendingAdminValidation, ""))
	})

	if err != nil {
		// Конкурентный повтор успел создать бронирование первым
		if errors.Is(err, bookingRepo.ErrDuplicateTransaction) {
			existing, getErr := uc.bookingRepo.GetByTransactionID(ctx, req.TransactionID)
			if getErr != nil {
				return nil, fmt.Errorf("%w: duplicate lookup failed: %v", ErrInternal, getErr)
			}
			uc.logger.Info("ConfirmBooking: lost creation race, returning booking id=%d", existing.ID)
			return &Response{Booking: models.FromDomainBooking(existing), AlreadyExisted: true}, nil
		}
		uc.logger.Error("ConfirmBooking: creation failed for transaction=%s: %v", req.TransactionID, err)
		return nil, fmt.Errorf("%w: creation failed: %v", ErrInternal, err)
	}

	uc.logger.Info("ConfirmBooking: created booking id=%d for transaction=%s", created.ID, req.TransactionID)
	return &Response{Booking: models.FromDomainBooking(created)}, nil
}

// ensureHold возвращает hold транзакции, который еще удерживает места
// Если sweeper успел освободить истекший hold, места пытаемся занять заново;
// не вышло - возвращаем платеж целиком и сообщаем клиенту об отказе
func (uc *UseCase) ensureHold(ctx context.Context, transaction *domain.PaymentTransaction) (*domain.ReservationHold, error) {
	hold, err := uc.ledgerService.GetHold(ctx, transaction.HoldID)
	if err != nil {
		uc.logger.Error("ConfirmBooking: failed to get hold=%s: %v", transaction.HoldID, err)
		return nil, fmt.Errorf("%w: failed to get hold: %v", ErrInternal, err)
	}

	if hold.Status != domain.HoldStatusReleased {
		return hold, nil
	}

	uc.logger.Warn("ConfirmBooking: hold=%s was released, re-reserving slot=%d", hold.ID, hold.SlotID)

	newHold, err := uc.ledgerService.Reserve(ctx, hold.SlotID, hold.Players)
	if err != nil {
		if errors.Is(err, ledger.ErrSlotUnavailable) || errors.Is(err, ledger.ErrSlotNotFound) {
			uc.logger.Warn("ConfirmBooking: slot=%d gone after hold expiry, refunding transaction=%s",
				hold.SlotID, transaction.ID)
			if refundErr := uc.paymentService.Refund(ctx, transaction.ID, 0); refundErr != nil {
				uc.logger.Error("ConfirmBooking: refund failed for transaction=%s: %v", transaction.ID, refundErr)
			}
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("%w: re-reserve failed: %v", ErrInternal, err)
	}

	return newHold, nil
}
