package confirm_booking

import "github.com/fairwaylabs/GLM-BookingService/internal/service/bookings/models"

// Request модель запроса на подтверждение бронирования после оплаты
type Request struct {
	AmateurID       int64   // ID любителя
	TransactionID   string  // ID платежной транзакции из start_booking
	SpecialRequests *string // Пожелания к уроку (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *models.BookingResponse
	// AlreadyExisted true, если бронирование было создано ранее
	// (идемпотентный повтор по тому же TransactionID)
	AlreadyExisted bool
}
