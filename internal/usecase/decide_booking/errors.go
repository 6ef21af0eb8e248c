package decide_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("decide_booking: booking not found")

	// ErrAlreadyDecided возвращается, когда решение по бронированию уже принято
	// Первое примененное решение окончательно, второе отклоняется
	ErrAlreadyDecided = errors.New("decide_booking: booking already decided")

	// ErrInvalidDecision возвращается при неизвестном типе решения
	ErrInvalidDecision = errors.New("decide_booking: invalid decision")

	// ErrAlternativeRequired возвращается, когда propose_alternative подан
	// без даты или времени альтернативы
	ErrAlternativeRequired = errors.New("decide_booking: alternative date and time are required")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("decide_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("decide_booking: internal error")
)
