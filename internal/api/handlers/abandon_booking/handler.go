package abandon_booking

import (
	"errors"
	"net/http"

	"github.com/fairwaylabs/GLM-BookingService/internal/api/handlers"
	"github.com/fairwaylabs/GLM-BookingService/internal/api/middleware"
	abandonBooking "github.com/fairwaylabs/GLM-BookingService/internal/usecase/abandon_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgTransactionNotFound = "платежная транзакция не найдена"
	msgForbidden           = "доступ запрещен"
	msgAlreadyPaid         = "платеж уже прошел, используйте отмену бронирования"
	msgInvalidInput        = "некорректные параметры запроса"
)

// AbandonBookingRequest HTTP request model
type AbandonBookingRequest struct {
	TransactionID string `json:"transactionId"`
}

type Handler struct {
	useCase AbandonBookingUseCase
	logger  Logger
}

func NewHandler(useCase AbandonBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/abandon
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	amateurID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/abandon - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req AbandonBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/abandon - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	err := h.useCase.Execute(r.Context(), &abandonBooking.Request{
		AmateurID:     amateurID,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, abandonBooking.ErrTransactionNotFound):
			h.logger.Warn("POST /bookings/abandon - Transaction not found: transaction_id=%s", req.TransactionID)
			handlers.RespondNotFound(w, msgTransactionNotFound)

		case errors.Is(err, abandonBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/abandon - Access denied: transaction_id=%s, user_id=%d",
				req.TransactionID, amateurID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, abandonBooking.ErrAlreadyPaid):
			h.logger.Warn("POST /bookings/abandon - Transaction already paid: transaction_id=%s", req.TransactionID)
			handlers.RespondConflict(w, msgAlreadyPaid)

		case errors.Is(err, abandonBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/abandon - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings/abandon - Failed to abandon booking: transaction_id=%s, error=%v",
				req.TransactionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/abandon - Booking attempt abandoned: transaction_id=%s, user_id=%d",
		req.TransactionID, amateurID)
	handlers.RespondNoContent(w)
}
