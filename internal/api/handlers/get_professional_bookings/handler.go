package get_professional_bookings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fairwaylabs/GLM-BookingService/internal/api/handlers"
	"github.com/fairwaylabs/GLM-BookingService/internal/api/middleware"
	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings/models"
)

const (
	msgInvalidUserID   = "некорректный ID профессионала"
	msgMissingUserID   = "отсутствует ID пользователя"
	msgForbidden       = "доступ запрещен"
	msgInvalidCourseID = "некорректный ID поля"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidStatus   = "некорректный статус бронирования"
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

// Handle GET /api/v1/professionals/{professionalId}/bookings
// Query параметры: courseId, startDate, endDate, status, includeClosed
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	professionalID, err := strconv.ParseInt(vars["professionalId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /professionals/{id}/bookings - Invalid professional ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /professionals/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if userID != professionalID {
		h.logger.Warn("GET /professionals/{id}/bookings - Access denied: professional_id=%d, user_id=%d",
			professionalID, userID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	req, err := h.parseQuery(r, professionalID)
	if err != nil {
		h.logger.Warn("GET /professionals/{id}/bookings - Invalid query: professional_id=%d, error=%v",
			professionalID, err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.service.GetProfessionalBookings(r.Context(), req)
	if err != nil {
		if errors.Is(err, bookings.ErrInvalidInput) {
			h.logger.Warn("GET /professionals/{id}/bookings - Invalid status filter: professional_id=%d",
				professionalID)
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /professionals/{id}/bookings - Failed to get bookings: professional_id=%d, error=%v",
			professionalID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /professionals/{id}/bookings - Bookings retrieved: professional_id=%d, count=%d",
		professionalID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) parseQuery(r *http.Request, professionalID int64) (*models.GetProfessionalBookingsRequest, error) {
	query := r.URL.Query()

	req := &models.GetProfessionalBookingsRequest{
		ProfessionalID: professionalID,
	}

	if raw := query.Get("courseId"); raw != "" {
		courseID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || courseID <= 0 {
			return nil, errors.New(msgInvalidCourseID)
		}
		req.CourseID = &courseID
	}

	if raw := query.Get("startDate"); raw != "" {
		startDate, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, errors.New(msgInvalidDate)
		}
		req.StartDate = &startDate
	}

	if raw := query.Get("endDate"); raw != "" {
		endDate, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, errors.New(msgInvalidDate)
		}
		req.EndDate = &endDate
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if raw := query.Get("includeClosed"); raw != "" {
		includeClosed, err := strconv.ParseBool(raw)
		if err == nil {
			req.IncludeClosed = includeClosed
		}
	}

	return req, nil
}
