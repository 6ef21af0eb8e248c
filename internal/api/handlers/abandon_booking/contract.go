package abandon_booking

import (
	"context"

	abandonBooking "github.com/fairwaylabs/GLM-BookingService/internal/usecase/abandon_booking"
)

type AbandonBookingUseCase interface {
	Execute(ctx context.Context, req *abandonBooking.Request) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
