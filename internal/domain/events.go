package domain

import "time"

// EventType тип события изменения состояния бронирования
// Используется как routing key при публикации в exchange
type EventType string

const (
	EventBookingPending     EventType = "booking.pending_validation"
	EventBookingConfirmed   EventType = "booking.confirmed"
	EventBookingRejected    EventType = "booking.rejected"
	EventAlternativeOffered EventType = "booking.alternative_proposed"
	EventBookingCancelled   EventType = "booking.cancelled"
	EventBookingRefunded    EventType = "booking.refunded"
)

// BookingEvent запись transactional outbox
// Создается в той же транзакции, что и смена статуса бронирования,
// и публикуется диспетчером после фиксации транзакции (write state, then emit)
type BookingEvent struct {
	ID           int64
	BookingID    int64
	Type         EventType
	Payload      []byte // JSON BookingEventPayload
	CreatedAt    time.Time
	DispatchedAt *time.Time
}

// BookingEventPayload тело события для внешнего Notification Dispatch
type BookingEventPayload struct {
	BookingID      int64  `json:"bookingId"`
	NewStatus      string `json:"newStatus"`
	AmateurID      int64  `json:"amateurId"`
	ProfessionalID int64  `json:"professionalId"`
	Details        string `json:"details,omitempty"`
}
