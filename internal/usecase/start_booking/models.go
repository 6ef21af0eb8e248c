package start_booking

import "time"

// Request модель запроса на старт бронирования
type Request struct {
	AmateurID       int64   // ID любителя
	SlotID          int64   // ID слота доступности
	Players         int     // Количество игроков (1-4)
	SpecialRequests *string // Пожелания к уроку (опционально)
}

// Response модель ответа: зарезервированные места и открытая платежная транзакция
type Response struct {
	HoldID        string    // Токен резервации
	TransactionID string    // ID платежной транзакции (ключ идемпотентности подтверждения)
	ClientSecret  string    // Секрет процессора для завершения платежа на клиенте
	SlotID        int64     // ID слота
	Players       int       // Количество игроков
	AmountMinor   int64     // Сумма к оплате в минимальных единицах валюты
	Currency      string    // Валюта
	ExpiresAt     time.Time // Срок жизни резервации
}
