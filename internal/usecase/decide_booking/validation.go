package decide_booking

import (
	"fmt"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AdminID <= 0 {
		return fmt.Errorf("%w: adminID must be positive", ErrInvalidInput)
	}

	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	decision := domain.AdminDecision(req.Decision)
	if !decision.IsValid() {
		return ErrInvalidDecision
	}

	if len(req.Notes) > domain.MaxAdminNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxAdminNotesLength)
	}

	switch decision {
	case domain.DecisionReject:
		// Отклонение без причины не принимается
		if req.Notes == "" {
			return fmt.Errorf("%w: notes are required for reject", ErrInvalidInput)
		}
	case domain.DecisionProposeAlternative:
		if req.AlternativeDate == nil || req.AlternativeDate.IsZero() {
			return ErrAlternativeRequired
		}
		if req.AlternativeStartTime == nil || req.AlternativeStartTime.IsZero() {
			return ErrAlternativeRequired
		}
		if err := req.AlternativeStartTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid alternative start time: %v", ErrInvalidInput, err)
		}
	}

	return nil
}
