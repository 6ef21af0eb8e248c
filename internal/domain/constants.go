package domain

// Default configuration values
const (
	DefaultHoldTTLMinutes    = 15 // payment window before a hold is sweepable
	DefaultPaymentMaxRetries = 3
	DefaultPaymentBackoffMS  = 200
)

// Business validation constants
const (
	MinPlayersPerBooking     = 1
	MaxPlayersPerBooking     = 4
	MaxSpecialRequestsLength = 500
	MaxAdminNotesLength      = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// LiveStatuses статусы, при которых бронирование удерживает место в слоте
// Используется sweeper'ом: hold с таким бронированием не освобождается
var LiveStatuses = []BookingStatus{
	StatusPendingAdminValidation,
	StatusConfirmed,
	StatusAlternativeProposed,
	StatusAlternativeAccepted,
}

// ClosedStatuses статусы закрытых бронирований
// Используется для фильтрации в списках по умолчанию
var ClosedStatuses = []BookingStatus{
	StatusRejected,
	StatusAlternativeDeclined,
	StatusCancelled,
	StatusRefunded,
}
