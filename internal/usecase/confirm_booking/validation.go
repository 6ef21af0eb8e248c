package confirm_booking

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AmateurID <= 0 {
		return fmt.Errorf("%w: amateurID must be positive", ErrInvalidInput)
	}

	if req.TransactionID == "" {
		return fmt.Errorf("%w: transactionID is required", ErrInvalidInput)
	}

	if _, err := uuid.Parse(req.TransactionID); err != nil {
		return fmt.Errorf("%w: transactionID must be a valid uuid", ErrInvalidInput)
	}

	if req.SpecialRequests != nil && len(*req.SpecialRequests) > domain.MaxSpecialRequestsLength {
		return fmt.Errorf("%w: specialRequests exceeds %d characters",
			ErrInvalidInput, domain.MaxSpecialRequestsLength)
	}

	return nil
}
