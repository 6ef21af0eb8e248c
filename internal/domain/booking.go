package domain

import (
	"time"

	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPendingAdminValidation BookingStatus = "pending_admin_validation"
	StatusConfirmed              BookingStatus = "confirmed"
	StatusRejected               BookingStatus = "rejected"
	StatusAlternativeProposed    BookingStatus = "alternative_proposed"
	StatusAlternativeAccepted    BookingStatus = "alternative_accepted"
	StatusAlternativeDeclined    BookingStatus = "alternative_declined"
	StatusCancelled              BookingStatus = "cancelled"
	StatusRefunded               BookingStatus = "refunded"
)

// AllowedTransitions defines the valid booking status transitions.
// The key is the current status, the value is the set of valid target statuses.
// Every persisted transition is applied as a conditional update (status must
// still equal the expected source status), so a losing concurrent writer gets
// zero affected rows instead of silently overwriting the decision.
var AllowedTransitions = map[BookingStatus][]BookingStatus{
	StatusPendingAdminValidation: {
		StatusConfirmed,
		StatusRejected,
		StatusAlternativeProposed,
		StatusCancelled,
	},
	StatusConfirmed: {
		StatusCancelled,
	},
	StatusAlternativeProposed: {
		StatusAlternativeAccepted,
		StatusAlternativeDeclined,
		StatusCancelled,
	},
	StatusAlternativeAccepted: {
		StatusConfirmed,
	},
	StatusAlternativeDeclined: {
		StatusRejected,
	},
	StatusCancelled: {
		StatusRefunded,
	},
	StatusRejected: {}, // terminal (refund tracked on the transaction)
	StatusRefunded: {}, // terminal
}

// CanTransition returns true if a transition between the two statuses is allowed
func CanTransition(from, to BookingStatus) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Booking represents a paid lesson booking awaiting or past admin validation
type Booking struct {
	ID              int64
	AmateurID       int64
	ProfessionalID  int64
	SlotID          int64
	CourseID        int64
	LessonDate      time.Time
	StartTime       types.TimeString
	Players         int
	AmountMinor     int64 // total amount in minor currency units
	Currency        string
	SpecialRequests *string

	// Payment correlation: exactly one transaction per booking for its lifetime.
	// The transaction id is the idempotency key for booking creation.
	PaymentTransactionID string
	PaymentStatus        PaymentStatus

	HoldID string // reservation hold backing the seat(s)

	Status     BookingStatus
	AdminNotes *string

	// Set when an administrator proposes an alternative date/time
	ProposedDate      *time.Time
	ProposedStartTime *types.TimeString

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDecided returns true if an administrator decision has already been applied
func (b *Booking) IsDecided() bool {
	return b.Status != StatusPendingAdminValidation
}

// IsTerminal returns true if no further transition is expected
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusRejected || b.Status == StatusRefunded
}

// CanBeCancelled returns true if the booking can be cancelled by the amateur
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPendingAdminValidation ||
		b.Status == StatusConfirmed ||
		b.Status == StatusAlternativeProposed
}

// AwaitsAmateurResponse returns true if the booking waits for the amateur to
// accept or decline a proposed alternative
func (b *Booking) AwaitsAmateurResponse() bool {
	return b.Status == StatusAlternativeProposed
}

// ProfessionalBookingsFilter фильтр для получения бронирований профессионала
type ProfessionalBookingsFilter struct {
	ProfessionalID int64          // Обязательный параметр
	CourseID       *int64         // Фильтр по полю (опционально)
	StartDate      *time.Time     // Начало периода (опционально)
	EndDate        *time.Time     // Конец периода (опционально)
	Status         *BookingStatus // Фильтр по статусу (опционально)
	IncludeClosed  bool           // Включать ли закрытые бронирования (rejected, cancelled, refunded)
}
