package get_amateur_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fairwaylabs/GLM-BookingService/internal/api/handlers"
	"github.com/fairwaylabs/GLM-BookingService/internal/api/middleware"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings/models"
)

const (
	msgInvalidUserID = "некорректный ID пользователя"
	msgMissingUserID = "отсутствует ID пользователя"
	msgForbidden     = "доступ запрещен"
	msgInvalidStatus = "некорректный статус бронирования"
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

// Handle GET /api/v1/amateurs/{amateurId}/bookings
// Любитель видит только собственную историю бронирований
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	amateurID, err := strconv.ParseInt(vars["amateurId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /amateurs/{id}/bookings - Invalid amateur ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /amateurs/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if userID != amateurID {
		h.logger.Warn("GET /amateurs/{id}/bookings - Access denied: amateur_id=%d, user_id=%d", amateurID, userID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	var statusPtr *string
	if status := r.URL.Query().Get("status"); status != "" {
		statusPtr = &status
	}

	result, err := h.service.GetAmateurBookings(r.Context(), &models.GetAmateurBookingsRequest{
		AmateurID: amateurID,
		Status:    statusPtr,
	})
	if err != nil {
		if errors.Is(err, bookings.ErrInvalidInput) {
			h.logger.Warn("GET /amateurs/{id}/bookings - Invalid status filter: amateur_id=%d", amateurID)
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /amateurs/{id}/bookings - Failed to get bookings: amateur_id=%d, error=%v",
			amateurID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /amateurs/{id}/bookings - Bookings retrieved: amateur_id=%d, count=%d",
		amateurID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
