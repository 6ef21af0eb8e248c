package get_amateur_bookings

import (
	"context"

	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetAmateurBookings(ctx context.Context, req *models.GetAmateurBookingsRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
