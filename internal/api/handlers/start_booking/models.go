package start_booking

import (
	"time"

	startBooking "github.com/fairwaylabs/GLM-BookingService/internal/usecase/start_booking"
)

// StartBookingRequest HTTP request model
type StartBookingRequest struct {
	SlotID          int64   `json:"slotId"`
	Players         int     `json:"players"`
	SpecialRequests *string `json:"specialRequests,omitempty"`
}

// StartBookingResponse HTTP response model
type StartBookingResponse struct {
	HoldID        string `json:"holdId"`
	TransactionID string `json:"transactionId"`
	ClientSecret  string `json:"clientSecret"`
	SlotID        int64  `json:"slotId"`
	Players       int    `json:"players"`
	AmountMinor   int64  `json:"amountMinor"`
	Currency      string `json:"currency"`
	ExpiresAt     string `json:"expiresAt"` // ISO 8601
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *StartBookingRequest) ToUseCaseRequest(amateurID int64) *startBooking.Request {
	return &startBooking.Request{
		AmateurID:       amateurID,
		SlotID:          r.SlotID,
		Players:         r.Players,
		SpecialRequests: r.SpecialRequests,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *startBooking.Response) *StartBookingResponse {
	return &StartBookingResponse{
		HoldID:        resp.HoldID,
		TransactionID: resp.TransactionID,
		ClientSecret:  resp.ClientSecret,
		SlotID:        resp.SlotID,
		Players:       resp.Players,
		AmountMinor:   resp.AmountMinor,
		Currency:      resp.Currency,
		ExpiresAt:     resp.ExpiresAt.Format(time.RFC3339),
	}
}
