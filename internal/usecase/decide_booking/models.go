package decide_booking

import (
	"time"

	"github.com/fairwaylabs/GLM-BookingService/internal/service/bookings/models"
	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// Request модель запроса на решение администратора по бронированию
type Request struct {
	AdminID   int64  // ID администратора
	BookingID int64  // ID бронирования
	Decision  string // confirm | reject | propose_alternative
	Notes     string // Комментарий администратора (обязателен для reject)

	// Только для propose_alternative
	AlternativeDate      *time.Time       // Альтернативная дата
	AlternativeStartTime *types.TimeString // Альтернативное время начала
}

// Response модель ответа с бронированием после применения решения
type Response struct {
	Booking *models.BookingResponse
	// RefundPending true, если возврат не прошел и будет повторен out-of-band
	RefundPending bool
}
