package stripeproc

import (
	"github.com/stripe/stripe-go/v76"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
)

// Intent снимок состояния платежной транзакции на стороне процессора
type Intent struct {
	ProviderTxID string
	Status       domain.PaymentStatus
	AmountMinor  int64
	Currency     string
	ClientSecret string
}

// CreateIntentParams параметры создания платежной транзакции
type CreateIntentParams struct {
	AmountMinor   int64
	Currency      string
	Description   string
	CorrelationID string // локальный id транзакции, кладется в metadata и idempotency key
}

// RefundResult результат запроса возврата
type RefundResult struct {
	RefundID    string
	AmountMinor int64
	Succeeded   bool
}

// mapIntentStatus переводит статус процессора в доменный
// Промежуточные состояния подтверждения (requires_payment_method,
// requires_action, processing) схлопываются в requires_confirmation:
// для бизнес-логики важно лишь то, что исход еще не определен
func mapIntentStatus(status stripe.PaymentIntentStatus) domain.PaymentStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.PaymentStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return domain.PaymentStatusCanceled
	case stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresCapture,
		stripe.PaymentIntentStatusProcessing:
		return domain.PaymentStatusRequiresConfirmation
	default:
		return domain.PaymentStatusCreated
	}
}
