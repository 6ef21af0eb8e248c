package start_booking

import (
	"errors"
	"net/http"

	"github.com/fairwaylabs/GLM-BookingService/internal/api/handlers"
	"github.com/fairwaylabs/GLM-BookingService/internal/api/middleware"
	startBooking "github.com/fairwaylabs/GLM-BookingService/internal/usecase/start_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgSlotNotFound       = "слот не найден"
	msgSlotUnavailable    = "недостаточно свободных мест в слоте"
	msgPaymentUnavailable = "платежный сервис временно недоступен, попробуйте позже"
	msgInvalidInput       = "некорректные параметры бронирования"
)

type Handler struct {
	useCase StartBookingUseCase
	logger  Logger
}

func NewHandler(useCase StartBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/start
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	amateurID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/start - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req StartBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/start - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(amateurID))
	if err != nil {
		switch {
		case errors.Is(err, startBooking.ErrSlotNotFound):
			h.logger.Warn("POST /bookings/start - Slot not found: slot_id=%d", req.SlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, startBooking.ErrSlotUnavailable):
			h.logger.Warn("POST /bookings/start - Slot unavailable: slot_id=%d, players=%d", req.SlotID, req.Players)
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, startBooking.ErrPaymentUnavailable):
			h.logger.Error("POST /bookings/start - Payment processor unavailable: slot_id=%d", req.SlotID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgPaymentUnavailable)

		case errors.Is(err, startBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/start - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings/start - Failed to start booking: slot_id=%d, user_id=%d, error=%v",
				req.SlotID, amateurID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/start - Booking started: hold_id=%s, transaction_id=%s, user_id=%d",
		result.HoldID, result.TransactionID, amateurID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
