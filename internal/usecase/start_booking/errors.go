package start_booking

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("start_booking: slot not found")

	// ErrSlotUnavailable возвращается, когда в слоте недостаточно мест
	ErrSlotUnavailable = errors.New("start_booking: slot is not available")

	// ErrPaymentUnavailable возвращается, когда платежный процессор недоступен
	// Резервация откатывается, клиент может повторить попытку
	ErrPaymentUnavailable = errors.New("start_booking: payment processor unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("start_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("start_booking: internal error")
)
