package get_professional_bookings

import (
	"context"

	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings/models"
)

// BookingService сервис бронирований
type BookingService interface {
	GetProfessionalBookings(ctx context.Context, req *models.GetProfessionalBookingsRequest) (*models.BookingListResponse, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
