package decide_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fairwaylabs/GLM-BookingService/internal/api/handlers"
	"github.com/fairwaylabs/GLM-BookingService/internal/api/middleware"
	decideBooking "github.com/fairwaylabs/GLM-BookingService/internal/usecase/decide_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingAdminID     = "отсутствует ID администратора"
	msgBookingNotFound    = "бронирование не найдено"
	msgAlreadyDecided     = "решение по бронированию уже принято"
	msgInvalidDecision    = "некорректный тип решения"
	msgAlternativeNeeded  = "для альтернативы требуются дата и время"
	msgInvalidInput       = "некорректные параметры запроса"
	msgInvalidAltDate     = "некорректный формат альтернативной даты, ожидается YYYY-MM-DD"
	msgInvalidAltTime     = "некорректный формат альтернативного времени, ожидается HH:MM"
)

type Handler struct {
	useCase DecideBookingUseCase
	logger  Logger
}

func NewHandler(useCase DecideBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/bookings/{bookingId}/decision
// Первое примененное решение окончательно: повтор получает 409
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /admin/bookings/{id}/decision - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	adminID, ok := middleware.GetAdminID(r.Context())
	if !ok {
		h.logger.Warn("POST /admin/bookings/{id}/decision - Missing admin ID: booking_id=%d", bookingID)
		handlers.RespondUnauthorized(w, msgMissingAdminID)
		return
	}

	var req DecideBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/bookings/{id}/decision - Invalid request body: booking_id=%d, error=%v",
			bookingID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ucReq, err := req.ToUseCaseRequest(adminID, bookingID)
	if err != nil {
		h.logger.Warn("POST /admin/bookings/{id}/decision - Invalid alternative: booking_id=%d, error=%v",
			bookingID, err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.useCase.Execute(r.Context(), ucReq)
	if err != nil {
		switch {
		case errors.Is(err, decideBooking.ErrBookingNotFound):
			h.logger.Warn("POST /admin/bookings/{id}/decision - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, decideBooking.ErrAlreadyDecided):
			h.logger.Info("POST /admin/bookings/{id}/decision - Already decided: booking_id=%d, admin_id=%d",
				bookingID, adminID)
			handlers.RespondConflict(w, msgAlreadyDecided)

		case errors.Is(err, decideBooking.ErrInvalidDecision):
			h.logger.Warn("POST /admin/bookings/{id}/decision - Invalid decision: booking_id=%d, decision=%s",
				bookingID, req.Decision)
			handlers.RespondBadRequest(w, msgInvalidDecision)

		case errors.Is(err, decideBooking.ErrAlternativeRequired):
			h.logger.Warn("POST /admin/bookings/{id}/decision - Alternative incomplete: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgAlternativeNeeded)

		case errors.Is(err, decideBooking.ErrInvalidInput):
			h.logger.Warn("POST /admin/bookings/{id}/decision - Invalid input: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /admin/bookings/{id}/decision - Failed to apply decision: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/bookings/{id}/decision - Decision applied: booking_id=%d, admin_id=%d, decision=%s, refund_pending=%t",
		bookingID, adminID, req.Decision, result.RefundPending)
	handlers.RespondJSON(w, http.StatusOK, &DecideBookingResponse{
		Booking:       result.Booking,
		RefundPending: result.RefundPending,
	})
}
