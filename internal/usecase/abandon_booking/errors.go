package abandon_booking

import "errors"

var (
	// ErrTransactionNotFound возвращается, когда транзакция не найдена
	ErrTransactionNotFound = errors.New("abandon_booking: transaction not found")

	// ErrAccessDenied возвращается, когда транзакция принадлежит другому пользователю
	ErrAccessDenied = errors.New("abandon_booking: access denied")

	// ErrAlreadyPaid возвращается при попытке бросить уже оплаченную попытку
	// Оплаченная попытка завершается через confirm или cancel, не через abandon
	ErrAlreadyPaid = errors.New("abandon_booking: transaction already succeeded")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("abandon_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("abandon_booking: internal error")
)
