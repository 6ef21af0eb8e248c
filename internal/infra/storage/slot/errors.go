package slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrSlotFull возвращается, когда в слоте недостаточно свободных мест
	ErrSlotFull = errors.New("slot.repository: slot is full")

	// ErrHoldNotFound возвращается, когда hold не найден
	ErrHoldNotFound = errors.New("slot.repository: hold not found")

	// ErrHoldReleased возвращается при попытке закоммитить освобожденный hold
	ErrHoldReleased = errors.New("slot.repository: hold already released")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
