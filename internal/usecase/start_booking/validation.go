package start_booking

import (
	"fmt"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AmateurID <= 0 {
		return fmt.Errorf("%w: amateurID must be positive", ErrInvalidInput)
	}

	if req.SlotID <= 0 {
		return fmt.Errorf("%w: slotID must be positive", ErrInvalidInput)
	}

	if req.Players < domain.MinPlayersPerBooking || req.Players > domain.MaxPlayersPerBooking {
		return fmt.Errorf("%w: players must be between %d and %d",
			ErrInvalidInput, domain.MinPlayersPerBooking, domain.MaxPlayersPerBooking)
	}

	if req.SpecialRequests != nil && len(*req.SpecialRequests) > domain.MaxSpecialRequestsLength {
		return fmt.Errorf("%w: specialRequests exceeds %d characters",
			ErrInvalidInput, domain.MaxSpecialRequestsLength)
	}

	return nil
}
