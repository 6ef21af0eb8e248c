package domain

import (
	"time"

	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// AvailabilitySlot represents a dated, timed block of a professional's
// capacity at a golf course. current_bookings is incremented at reservation
// time (optimistic hold) and may only move through the reserve/commit/release
// operations; the backing store enforces
// 0 <= current_bookings <= max_players with a conditional update.
type AvailabilitySlot struct {
	ID              int64
	ProfessionalID  int64
	CourseID        int64
	Date            time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	MaxPlayers      int
	CurrentBookings int
	PricePerPlayer  int64 // minor currency units per player
	Currency        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SeatsLeft returns the number of seats still available
func (s *AvailabilitySlot) SeatsLeft() int {
	return s.MaxPlayers - s.CurrentBookings
}

// IsFull returns true if the slot has no seats left
func (s *AvailabilitySlot) IsFull() bool {
	return s.SeatsLeft() <= 0
}

// CanFit returns true if the slot can hold the requested number of players
func (s *AvailabilitySlot) CanFit(players int) bool {
	return players > 0 && s.CurrentBookings+players <= s.MaxPlayers
}

// TotalAmount returns the total price for the requested number of players
func (s *AvailabilitySlot) TotalAmount(players int) int64 {
	return s.PricePerPlayer * int64(players)
}

// HoldStatus represents the status of a reservation hold
type HoldStatus string

const (
	HoldStatusActive    HoldStatus = "active"
	HoldStatusCommitted HoldStatus = "committed"
	HoldStatusReleased  HoldStatus = "released"
)

// ReservationHold is a provisional, already-capacity-incrementing claim on a
// slot. The capacity was incremented when the hold was taken, so:
//   - commit marks the seats as permanently consumed (no counter change);
//   - release decrements the counter, exactly once, via a conditional
//     active -> released transition (re-releasing is a no-op).
type ReservationHold struct {
	ID        string // uuid token handed to the caller
	SlotID    int64
	Players   int
	Status    HoldStatus
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the hold still backs unconfirmed seats
func (h *ReservationHold) IsActive() bool {
	return h.Status == HoldStatusActive
}

// IsExpired returns true if the hold passed its expiry and was never decided
func (h *ReservationHold) IsExpired(now time.Time) bool {
	return h.Status == HoldStatusActive && now.After(h.ExpiresAt)
}
