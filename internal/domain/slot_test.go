package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAvailabilitySlot_CanFit(t *testing.T) {
	slot := &AvailabilitySlot{MaxPlayers: 4, CurrentBookings: 2}

	assert.True(t, slot.CanFit(1))
	assert.True(t, slot.CanFit(2))
	assert.False(t, slot.CanFit(3))
	assert.False(t, slot.CanFit(0))
	assert.False(t, slot.CanFit(-1))
}

func TestAvailabilitySlot_SeatsLeft(t *testing.T) {
	slot := &AvailabilitySlot{MaxPlayers: 4, CurrentBookings: 3}
	assert.Equal(t, 1, slot.SeatsLeft())
	assert.False(t, slot.IsFull())

	slot.CurrentBookings = 4
	assert.Equal(t, 0, slot.SeatsLeft())
	assert.True(t, slot.IsFull())
}

func TestAvailabilitySlot_TotalAmount(t *testing.T) {
	slot := &AvailabilitySlot{PricePerPlayer: 5000}
	assert.Equal(t, int64(15000), slot.TotalAmount(3))
}

func TestReservationHold_IsExpired(t *testing.T) {
	now := time.Now()

	active := &ReservationHold{Status: HoldStatusActive, ExpiresAt: now.Add(time.Minute)}
	assert.False(t, active.IsExpired(now))

	stale := &ReservationHold{Status: HoldStatusActive, ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, stale.IsExpired(now))

	// Released holds never count as expired even past their deadline
	released := &ReservationHold{Status: HoldStatusReleased, ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, released.IsExpired(now))
}
