package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	bookingRepo "github.com/fairwaylabs/GLM-BookingService/internal/infra/storage/booking"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings/models"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/payments"
)

// Service сервис для чтения и отмены бронирований
type Service struct {
	bookingRepo    BookingRepository
	slotRepo       SlotRepository
	outboxRepo     OutboxRepository
	validationRepo ValidationRepository
	paymentService PaymentService
	txManager      TransactionManager
	logger         Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	outboxRepo OutboxRepository,
	validationRepo ValidationRepository,
	paymentService PaymentService,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:    bookingRepo,
		slotRepo:       slotRepo,
		outboxRepo:     outboxRepo,
		validationRepo: validationRepo,
		paymentService: paymentService,
		txManager:      txManager,
		logger:         logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь видит только бронирования, в которых участвует:
// как любитель или как профессионал
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.AmateurID != userID && booking.ProfessionalID != userID {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetAmateurBookings получает историю бронирований любителя
// Опционально фильтрует по статусу
func (s *Service) GetAmateurBookings(ctx context.Context, req *models.GetAmateurBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetAmateurBookings: fetching bookings for amateur=%d, status=%v", req.AmateurID, req.Status)

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetAmateurBookings: invalid status=%s for amateur=%d", *req.Status, req.AmateurID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByAmateurID(ctx, req.AmateurID, domainStatus)
	if err != nil {
		s.logger.Error("GetAmateurBookings: repository error for amateur=%d: %v", req.AmateurID, err)
		return nil, fmt.Errorf("%w: GetAmateurBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetAmateurBookings: fetched %d bookings for amateur=%d", len(bookings), req.AmateurID)
	return models.FromDomainBookingList(bookings), nil
}

// GetProfessionalBookings получает бронирования профессионала с фильтрацией
// по полю, периоду и статусу. Закрытые бронирования по умолчанию скрыты.
func (s *Service) GetProfessionalBookings(ctx context.Context, req *models.GetProfessionalBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetProfessionalBookings: fetching bookings for professional=%d", req.ProfessionalID)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProfessionalBookings: invalid filter for professional=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByProfessionalWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProfessionalBookings: repository error for professional=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: GetProfessionalBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProfessionalBookings: fetched %d bookings for professional=%d", len(bookings), req.ProfessionalID)
	return models.FromDomainBookingList(bookings), nil
}

// GetValidationHistory получает историю решений администраторов по бронированию
// Доступна участникам бронирования
func (s *Service) GetValidationHistory(ctx context.Context, bookingID int64, userID int64) (*models.ValidationHistoryResponse, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.AmateurID != userID && booking.ProfessionalID != userID {
		return nil, ErrAccessDenied
	}

	records, err := s.validationRepo.ListByBookingID(ctx, bookingID)
	if err != nil {
		s.logger.Error("GetValidationHistory: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: GetValidationHistory - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainValidationRecords(records), nil
}

// Cancel отменяет бронирование
// Любитель может отменить только своё бронирование и только до завершения
// урока. Смена статуса, освобождение мест и запись события выполняются в
// одной транзакции; возврат средств - после её фиксации, поскольку обращение
// к процессору внутри транзакции держало бы блокировки на время сетевого вызова.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by amateur=%d", bookingID, req.AmateurID)

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.AmateurID != req.AmateurID {
		s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.AmateurID, bookingID)
		return nil, ErrAccessDenied
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return nil, ErrCannotCancel
	}

	fromStatus := booking.Status

	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := s.bookingRepo.UpdateStatusIf(ctx, bookingID, fromStatus, domain.StatusCancelled); err != nil {
			return err
		}
		// Отмена возвращает места в слот, даже если hold был закоммичен
		// при подтверждении
		if err := s.slotRepo.ForceReleaseHold(ctx, booking.HoldID); err != nil {
			return err
		}
		return s.outboxRepo.Create(ctx, BuildEvent(domain.EventBookingCancelled, booking, domain.StatusCancelled, req.Reason))
	})

	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrStatusConflict):
			s.logger.Warn("Cancel: booking id=%d changed status concurrently", bookingID)
			return nil, ErrStatusConflict
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			return nil, ErrBookingNotFound
		default:
			s.logger.Error("Cancel: transaction failed for booking id=%d: %v", bookingID, err)
			return nil, fmt.Errorf("%w: Cancel - transaction failed: %v", ErrInternal, err)
		}
	}

	booking.Status = domain.StatusCancelled

	// Возврат средств после фиксации отмены. Неудача возврата не откатывает
	// отмену: транзакция помечена refund_pending и будет повторена sweeper'ом.
	if booking.PaymentStatus == domain.PaymentStatusSucceeded {
		if err := s.refundCancelled(ctx, booking); err != nil {
			s.logger.Error("Cancel: refund failed for booking id=%d: %v", bookingID, err)
		}
	}

	s.logger.Info("Cancel: booking id=%d cancelled", bookingID)
	return models.FromDomainBooking(booking), nil
}

// refundCancelled возвращает полную сумму отмененного бронирования
// и переводит его в refunded при успехе
func (s *Service) refundCancelled(ctx context.Context, booking *domain.Booking) error {
	if err := s.paymentService.Refund(ctx, booking.PaymentTransactionID, 0); err != nil {
		if errors.Is(err, payments.ErrRefundFailed) {
			// Бронирование остается cancelled до успешного повтора возврата
			return err
		}
		return err
	}

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := s.bookingRepo.UpdateStatusIf(ctx, booking.ID, domain.StatusCancelled, domain.StatusRefunded); err != nil {
			return err
		}
		return s.outboxRepo.Create(ctx, BuildEvent(domain.EventBookingRefunded, booking, domain.StatusRefunded, ""))
	})
	if err != nil {
		return fmt.Errorf("%w: refundCancelled - transition to refunded: %v", ErrInternal, err)
	}

	booking.Status = domain.StatusRefunded
	return nil
}

func (s *Service) getBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: getBooking - repository error: %v", ErrInternal, err)
	}
	return booking, nil
}

// BuildEvent собирает запись outbox для события смены статуса бронирования
// Payload сериализуется сразу: запись попадает в БД в той же транзакции,
// что и смена статуса
func BuildEvent(eventType domain.EventType, booking *domain.Booking, newStatus domain.BookingStatus, details string) *domain.BookingEvent {
	payload, _ := json.Marshal(domain.BookingEventPayload{
		BookingID:      booking.ID,
		NewStatus:      string(newStatus),
		AmateurID:      booking.AmateurID,
		ProfessionalID: booking.ProfessionalID,
		Details:        details,
	})

	return &domain.BookingEvent{
		BookingID: booking.ID,
		Type:      eventType,
		Payload:   payload,
	}
}
