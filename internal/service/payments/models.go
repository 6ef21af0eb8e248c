package payments

// CreateTransactionParams параметры создания платежной транзакции
type CreateTransactionParams struct {
	HoldID         string
	SlotID         int64
	AmateurID      int64
	ProfessionalID int64
	AmountMinor    int64
	Currency       string
	Description    string
}
