package stripeproc

import "errors"

var (
	// ErrProcessorUnavailable возвращается при сетевых ошибках и 5xx от процессора
	// Вызывающая сторона может повторить запрос
	ErrProcessorUnavailable = errors.New("payment processor unavailable")

	// ErrIntentNotFound возвращается, когда процессор не знает такой транзакции
	ErrIntentNotFound = errors.New("payment intent not found")

	// ErrPaymentDeclined возвращается при отклонении платежа процессором
	// Повтор с той же картой бесполезен
	ErrPaymentDeclined = errors.New("payment declined by processor")

	// ErrTransactionNotSucceeded возвращается при попытке возврата по транзакции,
	// которая не достигла статуса succeeded
	ErrTransactionNotSucceeded = errors.New("transaction is not in a refundable state")

	// ErrAlreadyRefunded возвращается, когда процессор сообщает, что средства
	// по транзакции уже возвращены полностью
	ErrAlreadyRefunded = errors.New("transaction already fully refunded")

	// ErrInvalidRequest возвращается при некорректных параметрах запроса к процессору
	ErrInvalidRequest = errors.New("invalid payment processor request")
)
