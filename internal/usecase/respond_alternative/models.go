package respond_alternative

import "github.com/fairwaylabs/GLM-BookingService/internal/service/bookings/models"

// Request модель ответа любителя на альтернативное предложение
type Request struct {
	AmateurID int64 // ID любителя
	BookingID int64 // ID бронирования
	Accept    bool  // true - принять, false - отклонить
}

// Response модель ответа с бронированием после обработки
type Response struct {
	Booking *models.BookingResponse
	// RefundPending true, если возврат при отклонении не прошел
	// и будет повторен out-of-band
	RefundPending bool
}
