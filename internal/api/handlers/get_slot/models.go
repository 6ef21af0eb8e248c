package get_slot

import (
	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
)

// SlotResponse публичное представление слота
type SlotResponse struct {
	ID             int64  `json:"id"`
	ProfessionalID int64  `json:"professionalId"`
	CourseID       int64  `json:"courseId"`
	Date           string `json:"date"`      // "2026-04-18"
	StartTime      string `json:"startTime"` // "10:00"
	EndTime        string `json:"endTime"`   // "11:00"
	MaxPlayers     int    `json:"maxPlayers"`
	SeatsLeft      int    `json:"seatsLeft"`
	PricePerPlayer int64  `json:"pricePerPlayer"` // в минорных единицах валюты
	Currency       string `json:"currency"`
}

func fromDomainSlot(slot *domain.AvailabilitySlot) *SlotResponse {
	return &SlotResponse{
		ID:             slot.ID,
		ProfessionalID: slot.ProfessionalID,
		CourseID:       slot.CourseID,
		Date:           slot.Date.Format(domain.DateFormat),
		StartTime:      slot.StartTime.String(),
		EndTime:        slot.EndTime.String(),
		MaxPlayers:     slot.MaxPlayers,
		SeatsLeft:      slot.SeatsLeft(),
		PricePerPlayer: slot.PricePerPlayer,
		Currency:       slot.Currency,
	}
}
