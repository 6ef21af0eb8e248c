package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	paymentRepo "github.com/fairwaylabs/GLM-BookingService/internal/infra/storage/payment"
	"github.com/fairwaylabs/GLM-BookingService/internal/integrations/stripeproc"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 200 * time.Millisecond
)

// Service оркестратор платежей
// Владеет корреляцией локальных транзакций с транзакциями процессора.
// Статус процессора авторитетен: локальная запись лишь кэширует его
// и обновляется при каждой проверке.
type Service struct {
	txRepo      TransactionRepository
	processor   ProcessorClient
	maxAttempts int
	backoff     time.Duration
	logger      Logger
}

// NewService создает новый экземпляр платежного оркестратора
func NewService(
	txRepo TransactionRepository,
	processor ProcessorClient,
	maxAttempts int,
	backoff time.Duration,
	logger Logger,
) *Service {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &Service{
		txRepo:      txRepo,
		processor:   processor,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger,
	}
}

// CreateTransaction создает платежную транзакцию у процессора и локальную
// запись корреляции. Если у hold'а уже есть незавершенная транзакция
// (повтор после сбоя), она переиспользуется - вторая не открывается.
func (s *Service) CreateTransaction(ctx context.Context, params CreateTransactionParams) (*domain.PaymentTransaction, error) {
	if params.AmountMinor <= 0 {
		return nil, ErrInvalidAmount
	}

	// Переиспользуем живую транзакцию этого hold'а, если она есть
	existing, err := s.txRepo.GetPendingByHoldID(ctx, params.HoldID)
	if err == nil {
		s.logger.Info("CreateTransaction: reusing pending transaction=%s for hold=%s", existing.ID, params.HoldID)
		return existing, nil
	}
	if !errors.Is(err, paymentRepo.ErrTransactionNotFound) {
		return nil, fmt.Errorf("%w: CreateTransaction - lookup pending transaction: %v", ErrInternal, err)
	}

	correlationID := uuid.NewString()

	// Корреляционный id используется как idempotency key процессора:
	// повтор этого вызова не создаст второй платеж
	var intent *stripeproc.Intent
	err = s.withRetry(ctx, "CreateIntent", func() error {
		var createErr error
		intent, createErr = s.processor.CreateIntent(ctx, stripeproc.CreateIntentParams{
			AmountMinor:   params.AmountMinor,
			Currency:      params.Currency,
			Description:   params.Description,
			CorrelationID: correlationID,
		})
		return createErr
	})
	if err != nil {
		if errors.Is(err, stripeproc.ErrProcessorUnavailable) {
			return nil, fmt.Errorf("%w: CreateTransaction - %v", ErrProcessorUnavailable, err)
		}
		return nil, fmt.Errorf("%w: CreateTransaction - processor error: %v", ErrInternal, err)
	}

	transaction := &domain.PaymentTransaction{
		ID:             correlationID,
		ProviderTxID:   intent.ProviderTxID,
		ClientSecret:   intent.ClientSecret,
		HoldID:         params.HoldID,
		SlotID:         params.SlotID,
		AmateurID:      params.AmateurID,
		ProfessionalID: params.ProfessionalID,
		AmountMinor:    params.AmountMinor,
		Currency:       params.Currency,
		Description:    params.Description,
		Status:         intent.Status,
	}

	if err := s.txRepo.Create(ctx, transaction); err != nil {
		// Локальная запись не создана - отменяем платеж у процессора,
		// чтобы не оставить некоррелированную транзакцию
		s.logger.Error("CreateTransaction: failed to persist transaction=%s, canceling intent %s: %v",
			correlationID, intent.ProviderTxID, err)
		if cancelErr := s.processor.CancelIntent(ctx, intent.ProviderTxID); cancelErr != nil {
			s.logger.Error("CreateTransaction: failed to cancel orphan intent %s: %v", intent.ProviderTxID, cancelErr)
		}
		return nil, fmt.Errorf("%w: CreateTransaction - persist transaction: %v", ErrInternal, err)
	}

	s.logger.Info("CreateTransaction: created transaction=%s, provider_tx=%s, hold=%s, amount=%d %s",
		transaction.ID, transaction.ProviderTxID, params.HoldID, params.AmountMinor, params.Currency)
	return transaction, nil
}

// GetTransaction получает транзакцию по локальному ID
func (s *Service) GetTransaction(ctx context.Context, transactionID string) (*domain.PaymentTransaction, error) {
	transaction, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("%w: GetTransaction - repository error: %v", ErrInternal, err)
	}
	return transaction, nil
}

// CheckStatus сверяет локальный статус транзакции с процессором
// Перед любым решением, зависящим от исхода платежа, вызывается именно
// этот метод: клиентскому сообщению об успехе не доверяем
func (s *Service) CheckStatus(ctx context.Context, transactionID string) (*domain.PaymentTransaction, error) {
	transaction, err := s.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if transaction.Status.IsTerminal() {
		return transaction, nil
	}

	var intent *stripeproc.Intent
	err = s.withRetry(ctx, "GetIntent", func() error {
		var getErr error
		intent, getErr = s.processor.GetIntent(ctx, transaction.ProviderTxID)
		return getErr
	})
	if err != nil {
		if errors.Is(err, stripeproc.ErrProcessorUnavailable) {
			return nil, fmt.Errorf("%w: CheckStatus - %v", ErrProcessorUnavailable, err)
		}
		return nil, fmt.Errorf("%w: CheckStatus - processor error: %v", ErrInternal, err)
	}

	if intent.Status != transaction.Status {
		if err := s.txRepo.UpdateStatus(ctx, transaction.ID, intent.Status); err != nil {
			return nil, fmt.Errorf("%w: CheckStatus - update status: %v", ErrInternal, err)
		}
		s.logger.Info("CheckStatus: transaction=%s status %s -> %s", transaction.ID, transaction.Status, intent.Status)
		transaction.Status = intent.Status
	}

	return transaction, nil
}

// CancelTransaction отменяет незавершенную транзакцию
// Отмена терминальной транзакции - no-op
func (s *Service) CancelTransaction(ctx context.Context, transactionID string) error {
	transaction, err := s.GetTransaction(ctx, transactionID)
	if err != nil {
		return err
	}

	if transaction.Status.IsTerminal() {
		return nil
	}

	if err := s.processor.CancelIntent(ctx, transaction.ProviderTxID); err != nil {
		s.logger.Warn("CancelTransaction: processor cancel failed for transaction=%s: %v", transactionID, err)
	}

	if err := s.txRepo.UpdateStatus(ctx, transaction.ID, domain.PaymentStatusCanceled); err != nil {
		return fmt.Errorf("%w: CancelTransaction - update status: %v", ErrInternal, err)
	}

	s.logger.Info("CancelTransaction: transaction=%s canceled", transactionID)
	return nil
}

// CancelPendingForHold отменяет незавершенную транзакцию, привязанную
// к hold'у. Используется sweeper'ом после release истекшего hold'а.
// Отсутствие незавершенной транзакции - no-op.
func (s *Service) CancelPendingForHold(ctx context.Context, holdID string) error {
	transaction, err := s.txRepo.GetPendingByHoldID(ctx, holdID)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrTransactionNotFound) {
			return nil
		}
		return fmt.Errorf("%w: CancelPendingForHold - get transaction: %v", ErrInternal, err)
	}

	return s.CancelTransaction(ctx, transaction.ID)
}

// Refund возвращает amountMinor по успешной транзакции
// amountMinor <= 0 означает полный возврат остатка. При недоступности
// процессора транзакция помечается refund_pending и возврат повторяется
// sweeper'ом; вызывающая сторона получает ErrRefundFailed и не должна
// откатывать уже выполненную смену статуса бронирования.
func (s *Service) Refund(ctx context.Context, transactionID string, amountMinor int64) error {
	transaction, err := s.GetTransaction(ctx, transactionID)
	if err != nil {
		return err
	}

	if !transaction.IsRefundable() {
		if transaction.RefundPending {
			// Ничего возвращать не осталось - снимаем флаг повторной попытки
			return s.txRepo.RecordRefund(ctx, transaction.ID, transaction.RefundedAmountMinor, false)
		}
		return ErrNotRefundable
	}

	remaining := transaction.RemainingRefundable()
	if amountMinor <= 0 || amountMinor > remaining {
		amountMinor = remaining
	}

	// Ключ идемпотентности привязан к уже возвращенной сумме: повтор той же
	// попытки не вернет средства дважды
	idempotencyKey := fmt.Sprintf("refund-%s-%d", transaction.ID, transaction.RefundedAmountMinor)

	refundErr := s.withRetry(ctx, "Refund", func() error {
		_, err := s.processor.Refund(ctx, transaction.ProviderTxID, amountMinor, idempotencyKey)
		return err
	})

	switch {
	case refundErr == nil:
		if err := s.txRepo.RecordRefund(ctx, transaction.ID, transaction.RefundedAmountMinor+amountMinor, false); err != nil {
			return fmt.Errorf("%w: Refund - record refund: %v", ErrInternal, err)
		}
		s.logger.Info("Refund: transaction=%s refunded %d (total %d of %d)",
			transaction.ID, amountMinor, transaction.RefundedAmountMinor+amountMinor, transaction.AmountMinor)
		return nil

	case errors.Is(refundErr, stripeproc.ErrAlreadyRefunded):
		// Процессор уже вернул все - синхронизируем локальную запись
		if err := s.txRepo.RecordRefund(ctx, transaction.ID, transaction.AmountMinor, false); err != nil {
			return fmt.Errorf("%w: Refund - record refund: %v", ErrInternal, err)
		}
		s.logger.Warn("Refund: transaction=%s already fully refunded at processor", transaction.ID)
		return nil

	case errors.Is(refundErr, stripeproc.ErrTransactionNotSucceeded):
		return ErrNotRefundable

	default:
		// Помечаем для повторной попытки sweeper'ом, сумма не меняется
		if err := s.txRepo.RecordRefund(ctx, transaction.ID, transaction.RefundedAmountMinor, true); err != nil {
			s.logger.Error("Refund: failed to mark transaction=%s refund_pending: %v", transaction.ID, err)
		}
		s.logger.Error("Refund: transaction=%s refund failed, scheduled for retry: %v", transaction.ID, refundErr)
		return fmt.Errorf("%w: %v", ErrRefundFailed, refundErr)
	}
}

// RetryPendingRefunds повторяет незавершенные возвраты
// Вызывается sweeper'ом периодически
func (s *Service) RetryPendingRefunds(ctx context.Context, limit uint64) (int, error) {
	transactions, err := s.txRepo.ListRefundPending(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("%w: RetryPendingRefunds - list pending: %v", ErrInternal, err)
	}

	succeeded := 0
	for _, transaction := range transactions {
		if err := s.Refund(ctx, transaction.ID, 0); err != nil {
			s.logger.Warn("RetryPendingRefunds: transaction=%s still failing: %v", transaction.ID, err)
			continue
		}
		succeeded++
	}

	if len(transactions) > 0 {
		s.logger.Info("RetryPendingRefunds: retried %d refunds, %d succeeded", len(transactions), succeeded)
	}
	return succeeded, nil
}

// withRetry повторяет fn с линейным backoff при недоступности процессора
// Бизнес-ошибки (отклонение платежа, невалидный запрос) не повторяются
func (s *Service) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.backoff * time.Duration(attempt-1)):
			}
			s.logger.Warn("%s: retry attempt %d/%d", op, attempt, s.maxAttempts)
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, stripeproc.ErrProcessorUnavailable) {
			return err
		}
		lastErr = err
	}

	return lastErr
}
