package respond_alternative

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fairwaylabs/GLM-BookingService/internal/api/handlers"
	"github.com/fairwaylabs/GLM-BookingService/internal/api/middleware"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings/models"
	respondAlternative "github.com/fairwaylabs/GLM-BookingService/internal/usecase/respond_alternative"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgBookingNotFound    = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgNoAlternative      = "бронирование не ожидает ответа на альтернативное предложение"
	msgSlotUnavailable    = "предложенный слот уже занят, предложение можно отклонить"
	msgStatusConflict     = "статус бронирования изменился, обновите данные"
)

// RespondAlternativeRequest HTTP request model
type RespondAlternativeRequest struct {
	Accept bool `json:"accept"`
}

// RespondAlternativeResponse HTTP response model
type RespondAlternativeResponse struct {
	Booking       *models.BookingResponse `json:"booking"`
	RefundPending bool                    `json:"refundPending,omitempty"`
}

type Handler struct {
	useCase RespondAlternativeUseCase
	logger  Logger
}

func NewHandler(useCase RespondAlternativeUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/respond-alternative
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/respond-alternative - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	amateurID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/respond-alternative - Missing user ID: booking_id=%d", bookingID)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RespondAlternativeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/respond-alternative - Invalid request body: booking_id=%d, error=%v",
			bookingID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &respondAlternative.Request{
		AmateurID: amateurID,
		BookingID: bookingID,
		Accept:    req.Accept,
	})
	if err != nil {
		switch {
		case errors.Is(err, respondAlternative.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/respond-alternative - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, respondAlternative.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/respond-alternative - Access denied: booking_id=%d, user_id=%d",
				bookingID, amateurID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, respondAlternative.ErrNoAlternativeProposed):
			h.logger.Info("POST /bookings/{id}/respond-alternative - No alternative pending: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgNoAlternative)

		case errors.Is(err, respondAlternative.ErrAlternativeSlotUnavailable):
			h.logger.Info("POST /bookings/{id}/respond-alternative - Alternative slot unavailable: booking_id=%d",
				bookingID)
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, respondAlternative.ErrStatusConflict):
			h.logger.Warn("POST /bookings/{id}/respond-alternative - Status conflict: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgStatusConflict)

		default:
			h.logger.Error("POST /bookings/{id}/respond-alternative - Failed to process response: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/respond-alternative - Response processed: booking_id=%d, accept=%t, status=%s",
		bookingID, req.Accept, result.Booking.Status)
	handlers.RespondJSON(w, http.StatusOK, &RespondAlternativeResponse{
		Booking:       result.Booking,
		RefundPending: result.RefundPending,
	})
}
