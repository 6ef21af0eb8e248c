package confirm_booking

import "errors"

var (
	// ErrTransactionNotFound возвращается, когда транзакция не найдена
	ErrTransactionNotFound = errors.New("confirm_booking: transaction not found")

	// ErrAccessDenied возвращается, когда транзакция принадлежит другому пользователю
	ErrAccessDenied = errors.New("confirm_booking: access denied")

	// ErrPaymentNotConfirmed возвращается, когда процессор еще не подтвердил платеж
	// Клиент может повторить запрос после завершения оплаты
	ErrPaymentNotConfirmed = errors.New("confirm_booking: payment not confirmed")

	// ErrPaymentFailed возвращается, когда платеж отклонен или отменен
	// Резервация освобождена, попытка закрыта
	ErrPaymentFailed = errors.New("confirm_booking: payment failed")

	// ErrSlotUnavailable возвращается, когда резервация истекла и места уже
	// выкуплены другими. Платеж возвращен.
	ErrSlotUnavailable = errors.New("confirm_booking: slot no longer available, payment refunded")

	// ErrPaymentUnavailable возвращается, когда процессор недоступен
	// и статус платежа проверить нельзя
	ErrPaymentUnavailable = errors.New("confirm_booking: payment processor unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("confirm_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("confirm_booking: internal error")
)
