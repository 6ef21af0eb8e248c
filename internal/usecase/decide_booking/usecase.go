package decide_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	bookingRepo "github.com/fairwaylabs/GLM-BookingService/internal/infra/storage/booking"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings/models"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/payments"
	"github.com/fairwaylabs/GLM-BookingService/pkg/ptr"
)

// UseCase use case решения администратора по бронированию
// Решение применяется условным UPDATE от pending_admin_validation: из двух
// конкурентных решений выигрывает ровно одно, второе получает ErrAlreadyDecided.
// Каждое решение фиксируется в append-only аудите.
type UseCase struct {
	bookingRepo    BookingRepository
	slotRepo       SlotRepository
	validationRepo ValidationRepository
	outboxRepo     OutboxRepository
	paymentService PaymentService
	txManager      TransactionManager
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	validationRepo ValidationRepository,
	outboxRepo OutboxRepository,
	paymentService PaymentService,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		slotRepo:       slotRepo,
		validationRepo: validationRepo,
		outboxRepo:     outboxRepo,
		paymentService: paymentService,
		txManager:      txManager,
		logger:         logger,
	}
}

// Execute выполняет use case решения администратора
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("DecideBooking: admin=%d, booking=%d, decision=%s", req.AdminID, req.BookingID, req.Decision)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("DecideBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бронирование
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("DecideBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("DecideBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if booking.IsDecided() {
		uc.logger.Warn("DecideBooking: booking id=%d already decided, status=%s", req.BookingID, booking.Status)
		return nil, ErrAlreadyDecided
	}

	// 3. Применяем решение
	decision := domain.AdminDecision(req.Decision)

	var refundPending bool
	switch decision {
	case domain.DecisionConfirm:
		err = uc.confirm(ctx, booking, req)
	case domain.DecisionReject:
		refundPending, err = uc.reject(ctx, booking, req)
	case domain.DecisionProposeAlternative:
		err = uc.proposeAlternative(ctx, booking, req)
	}

	if err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			// Проиграли гонку конкурентному решению
			uc.logger.Warn("DecideBooking: booking id=%d decided concurrently", req.BookingID)
			return nil, ErrAlreadyDecided
		}
		uc.logger.Error("DecideBooking: decision %s failed for booking id=%d: %v", decision, req.BookingID, err)
		return nil, err
	}

	// 4. Перечитываем бронирование после применения решения
	updated, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to re-read booking: %v", ErrInternal, err)
	}

	uc.logger.Info("DecideBooking: booking id=%d -> %s by admin=%d", req.BookingID, updated.Status, req.AdminID)
	return &Response{Booking: models.FromDomainBooking(updated), RefundPending: refundPending}, nil
}

// confirm подтверждает бронирование: переход в confirmed + commit hold'а
// Места из hold'а становятся окончательно потребленными
func (uc *UseCase) confirm(ctx context.Context, booking *domain.Booking, req *Request) error {
	return uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := uc.bookingRepo.ApplyDecision(ctx, booking.ID,
			domain.StatusPendingAdminValidation, domain.StatusConfirmed,
			notesOrNil(req.Notes), nil, nil); err != nil {
			return err
		}
		if err := uc.slotRepo.CommitHold(ctx, booking.HoldID); err != nil {
			return err
		}
		if err := uc.validationRepo.Create(ctx, auditRecord(booking.ID, req)); err != nil {
			return err
		}
		return uc.outboxRepo.Create(ctx, bookings.BuildEvent(
			domain.EventBookingConfirmed, booking, domain.StatusConfirmed, req.Notes))
	})
}

// reject отклоняет бронирование: переход в rejected + release hold'а
// Возврат средств выполняется после фиксации транзакции; его неудача не
// откатывает отклонение - транзакция помечается refund_pending и возврат
// повторяется sweeper'ом
func (uc *UseCase) reject(ctx context.Context, booking *domain.Booking, req *Request) (bool, error) {
	err := uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := uc.bookingRepo.ApplyDecision(ctx, booking.ID,
			domain.StatusPendingAdminValidation, domain.StatusRejected,
			notesOrNil(req.Notes), nil, nil); err != nil {
			return err
		}
		if err := uc.slotRepo.ReleaseHold(ctx, booking.HoldID); err != nil {
			return err
		}
		if err := uc.validationRepo.Create(ctx, auditRecord(booking.ID, req)); err != nil {
			return err
		}
		return uc.outboxRepo.Create(ctx, bookings.BuildEvent(
			domain.EventBookingRejected, booking, domain.StatusRejected, req.Notes))
	})
	if err != nil {
		return false, err
	}

	// Полный возврат средств отклоненного бронирования
	if err := uc.paymentService.Refund(ctx, booking.PaymentTransactionID, 0); err != nil {
		if errors.Is(err, payments.ErrRefundFailed) {
			uc.logger.Warn("DecideBooking: refund pending for booking id=%d: %v", booking.ID, err)
			return true, nil
		}
		uc.logger.Error("DecideBooking: refund failed for booking id=%d: %v", booking.ID, err)
		return true, nil
	}

	return false, nil
}

// proposeAlternative предлагает альтернативную дату/время
// Исходные места освобождаются сразу: удерживать их под отклоненное
// предложение нельзя. Новые места резервируются только если любитель
// примет альтернативу.
func (uc *UseCase) proposeAlternative(ctx context.Context, booking *domain.Booking, req *Request) error {
	return uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := uc.bookingRepo.ApplyDecision(ctx, booking.ID,
			domain.StatusPendingAdminValidation, domain.StatusAlternativeProposed,
			notesOrNil(req.Notes), req.AlternativeDate, req.AlternativeStartTime); err != nil {
			return err
		}
		if err := uc.slotRepo.ReleaseHold(ctx, booking.HoldID); err != nil {
			return err
		}
		if err := uc.validationRepo.Create(ctx, auditRecord(booking.ID, req)); err != nil {
			return err
		}
		details := fmt.Sprintf("proposed %s %s",
			req.AlternativeDate.Format(domain.DateFormat), *req.AlternativeStartTime)
		return uc.outboxRepo.Create(ctx, bookings.BuildEvent(
			domain.EventAlternativeOffered, booking, domain.StatusAlternativeProposed, details))
	})
}

// auditRecord собирает запись аудита для решения
func auditRecord(bookingID int64, req *Request) *domain.AdminValidationRecord {
	return &domain.AdminValidationRecord{
		BookingID:            bookingID,
		AdminID:              req.AdminID,
		Decision:             domain.AdminDecision(req.Decision),
		Notes:                req.Notes,
		AlternativeDate:      req.AlternativeDate,
		AlternativeStartTime: req.AlternativeStartTime,
	}
}

// notesOrNil возвращает nil для пустых заметок
func notesOrNil(notes string) *string {
	if notes == "" {
		return nil
	}
	return ptr.Ptr(notes)
}
