package ledger

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("availability slot not found")

	// ErrSlotUnavailable возвращается, когда в слоте недостаточно свободных мест
	ErrSlotUnavailable = errors.New("slot has no capacity for requested players")

	// ErrHoldNotFound возвращается, когда hold не найден
	ErrHoldNotFound = errors.New("reservation hold not found")

	// ErrHoldReleased возвращается при попытке закоммитить освобожденный hold
	ErrHoldReleased = errors.New("reservation hold already released")

	// ErrInvalidPlayers возвращается при некорректном количестве игроков
	ErrInvalidPlayers = errors.New("invalid players count")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("ledger service: internal error")
)
