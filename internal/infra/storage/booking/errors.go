package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrDuplicateTransaction возвращается при попытке создать второе
	// бронирование с тем же payment_transaction_id (идемпотентный ключ)
	ErrDuplicateTransaction = errors.New("booking.repository: duplicate payment transaction")

	// ErrStatusConflict возвращается, когда условный переход статуса не
	// применился - текущий статус уже не совпадает с ожидаемым
	ErrStatusConflict = errors.New("booking.repository: booking status conflict")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
