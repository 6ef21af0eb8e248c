package payments

import (
	"context"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/internal/integrations/stripeproc"
)

// TransactionRepository интерфейс репозитория платежных транзакций
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.PaymentTransaction) error
	GetByID(ctx context.Context, id string) (*domain.PaymentTransaction, error)
	GetPendingByHoldID(ctx context.Context, holdID string) (*domain.PaymentTransaction, error)
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error
	RecordRefund(ctx context.Context, id string, refundedAmount int64, pending bool) error
	ListRefundPending(ctx context.Context, limit uint64) ([]*domain.PaymentTransaction, error)
}

// ProcessorClient интерфейс клиента платежного процессора
type ProcessorClient interface {
	CreateIntent(ctx context.Context, params stripeproc.CreateIntentParams) (*stripeproc.Intent, error)
	GetIntent(ctx context.Context, providerTxID string) (*stripeproc.Intent, error)
	CancelIntent(ctx context.Context, providerTxID string) error
	Refund(ctx context.Context, providerTxID string, amountMinor int64, idempotencyKey string) (*stripeproc.RefundResult, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
