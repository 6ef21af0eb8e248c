package get_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fairwaylabs/GLM-BookingService/internal/api/handlers"
	"github.com/fairwaylabs/GLM-BookingService/internal/api/middleware"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgForbidden        = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, userID, ok := h.parseRequest(w, r, "GET /bookings/{id}")
	if !ok {
		return
	}

	booking, err := h.service.GetByID(r.Context(), bookingID, userID)
	if err != nil {
		h.respondServiceError(w, err, bookingID, userID, "GET /bookings/{id}")
		return
	}

	h.logger.Info("GET /bookings/{id} - Booking retrieved: booking_id=%d, user_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}

// HandleValidationHistory GET /api/v1/bookings/{bookingId}/validation-history
func (h *Handler) HandleValidationHistory(w http.ResponseWriter, r *http.Request) {
	bookingID, userID, ok := h.parseRequest(w, r, "GET /bookings/{id}/validation-history")
	if !ok {
		return
	}

	history, err := h.service.GetValidationHistory(r.Context(), bookingID, userID)
	if err != nil {
		h.respondServiceError(w, err, bookingID, userID, "GET /bookings/{id}/validation-history")
		return
	}

	h.logger.Info("GET /bookings/{id}/validation-history - History retrieved: booking_id=%d, records=%d",
		bookingID, len(history.Records))
	handlers.RespondJSON(w, http.StatusOK, history)
}

func (h *Handler) parseRequest(w http.ResponseWriter, r *http.Request, op string) (int64, int64, bool) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s - Invalid booking ID: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return 0, 0, false
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", op)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return 0, 0, false
	}

	return bookingID, userID, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, bookingID, userID int64, op string) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		h.logger.Warn("%s - Booking not found: booking_id=%d", op, bookingID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, bookings.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: booking_id=%d, user_id=%d", op, bookingID, userID)
		handlers.RespondForbidden(w, msgForbidden)

	default:
		h.logger.Error("%s - Failed: booking_id=%d, error=%v", op, bookingID, err)
		handlers.RespondInternalError(w)
	}
}
