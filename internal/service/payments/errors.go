package payments

import "errors"

var (
	// ErrTransactionNotFound возвращается, когда транзакция не найдена
	ErrTransactionNotFound = errors.New("payment transaction not found")

	// ErrProcessorUnavailable возвращается, когда процессор недоступен
	// после исчерпания повторных попыток
	ErrProcessorUnavailable = errors.New("payment processor unavailable")

	// ErrPaymentNotConfirmed возвращается, когда платеж не достиг статуса succeeded
	ErrPaymentNotConfirmed = errors.New("payment not confirmed by processor")

	// ErrNotRefundable возвращается при попытке возврата по транзакции,
	// которая не может быть возвращена
	ErrNotRefundable = errors.New("transaction is not refundable")

	// ErrRefundFailed возвращается, когда возврат не прошел
	// Транзакция помечена refund_pending и будет повторена out-of-band
	ErrRefundFailed = errors.New("refund attempt failed, scheduled for retry")

	// ErrInvalidAmount возвращается при некорректной сумме
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("payments service: internal error")
)
