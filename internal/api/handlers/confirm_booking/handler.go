package confirm_booking

import (
	"errors"
	"net/http"

	"github.com/fairwaylabs/GLM-BookingService/internal/api/handlers"
	"github.com/fairwaylabs/GLM-BookingService/internal/api/middleware"
	confirmBooking "github.com/fairwaylabs/GLM-BookingService/internal/usecase/confirm_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgTransactionNotFound = "платежная транзакция не найдена"
	msgForbidden           = "доступ запрещен"
	msgPaymentNotConfirmed = "платеж еще не подтвержден, повторите запрос после оплаты"
	msgPaymentFailed       = "платеж не прошел, бронирование не создано"
	msgSlotUnavailable     = "места уже заняты, платеж возвращен"
	msgPaymentUnavailable  = "платежный сервис временно недоступен, попробуйте позже"
	msgInvalidInput        = "некорректные параметры запроса"
)

// ConfirmBookingRequest HTTP request model
type ConfirmBookingRequest struct {
	TransactionID   string  `json:"transactionId"`
	SpecialRequests *string `json:"specialRequests,omitempty"`
}

type Handler struct {
	useCase ConfirmBookingUseCase
	logger  Logger
}

func NewHandler(useCase ConfirmBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/confirm
// Идемпотентен по transactionId: повтор возвращает 200 с уже созданным
// бронированием вместо 201
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	amateurID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/confirm - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ConfirmBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/confirm - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &confirmBooking.Request{
		AmateurID:       amateurID,
		TransactionID:   req.TransactionID,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		switch {
		case errors.Is(err, confirmBooking.ErrTransactionNotFound):
			h.logger.Warn("POST /bookings/confirm - Transaction not found: transaction_id=%s", req.TransactionID)
			handlers.RespondNotFound(w, msgTransactionNotFound)

		case errors.Is(err, confirmBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/confirm - Access denied: transaction_id=%s, user_id=%d",
				req.TransactionID, amateurID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, confirmBooking.ErrPaymentNotConfirmed):
			h.logger.Info("POST /bookings/confirm - Payment not confirmed yet: transaction_id=%s", req.TransactionID)
			handlers.RespondConflict(w, msgPaymentNotConfirmed)

		case errors.Is(err, confirmBooking.ErrPaymentFailed):
			h.logger.Info("POST /bookings/confirm - Payment failed: transaction_id=%s", req.TransactionID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgPaymentFailed)

		case errors.Is(err, confirmBooking.ErrSlotUnavailable):
			h.logger.Warn("POST /bookings/confirm - Slot gone after hold expiry: transaction_id=%s", req.TransactionID)
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, confirmBooking.ErrPaymentUnavailable):
			h.logger.Error("POST /bookings/confirm - Payment processor unavailable: transaction_id=%s", req.TransactionID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgPaymentUnavailable)

		case errors.Is(err, confirmBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/confirm - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings/confirm - Failed to confirm booking: transaction_id=%s, error=%v",
				req.TransactionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}

	h.logger.Info("POST /bookings/confirm - Booking confirmed: booking_id=%d, transaction_id=%s, existed=%t",
		result.Booking.ID, req.TransactionID, result.AlreadyExisted)
	handlers.RespondJSON(w, status, result.Booking)
}
