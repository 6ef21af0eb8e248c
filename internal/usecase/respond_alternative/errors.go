package respond_alternative

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("respond_alternative: booking not found")

	// ErrAccessDenied возвращается, когда бронирование принадлежит другому пользователю
	ErrAccessDenied = errors.New("respond_alternative: access denied")

	// ErrNoAlternativeProposed возвращается, когда бронирование не ждет
	// ответа на альтернативное предложение
	ErrNoAlternativeProposed = errors.New("respond_alternative: no alternative proposed")

	// ErrAlternativeSlotUnavailable возвращается, когда предложенный слот
	// уже занят или не существует. Бронирование остается в alternative_proposed,
	// любитель может отклонить предложение.
	ErrAlternativeSlotUnavailable = errors.New("respond_alternative: alternative slot is not available")

	// ErrStatusConflict возвращается при проигранной гонке со встречным изменением статуса
	ErrStatusConflict = errors.New("respond_alternative: booking status changed concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("respond_alternative: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("respond_alternative: internal error")
)
