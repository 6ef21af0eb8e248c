package decide_booking

import (
	"errors"
	"time"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings/models"
	decideBooking "github.com/fairwaylabs/GLM-BookingService/internal/usecase/decide_booking"
	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// DecideBookingRequest HTTP request model
type DecideBookingRequest struct {
	Decision string `json:"decision"` // confirm | reject | propose_alternative
	Notes    string `json:"notes,omitempty"`

	AlternativeDate      *string `json:"alternativeDate,omitempty"`      // "2026-04-18"
	AlternativeStartTime *string `json:"alternativeStartTime,omitempty"` // "10:00"
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *DecideBookingRequest) ToUseCaseRequest(adminID, bookingID int64) (*decideBooking.Request, error) {
	req := &decideBooking.Request{
		AdminID:   adminID,
		BookingID: bookingID,
		Decision:  r.Decision,
		Notes:     r.Notes,
	}

	if r.AlternativeDate != nil {
		date, err := time.Parse(domain.DateFormat, *r.AlternativeDate)
		if err != nil {
			return nil, errors.New(msgInvalidAltDate)
		}
		req.AlternativeDate = &date
	}

	if r.AlternativeStartTime != nil {
		startTime := types.TimeString(*r.AlternativeStartTime)
		if err := startTime.Validate(); err != nil {
			return nil, errors.New(msgInvalidAltTime)
		}
		req.AlternativeStartTime = &startTime
	}

	return req, nil
}

// DecideBookingResponse HTTP response model
type DecideBookingResponse struct {
	Booking       *models.BookingResponse `json:"booking"`
	RefundPending bool                    `json:"refundPending,omitempty"`
}
