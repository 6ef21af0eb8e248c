package abandon_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/payments"
)

// Request модель запроса на отказ от незавершенной попытки бронирования
type Request struct {
	AmateurID     int64  // ID любителя
	TransactionID string // ID платежной транзакции из start_booking
}

// UseCase use case явного отказа от попытки бронирования до оплаты
// Отменяет платежную транзакцию и немедленно возвращает места в слот,
// не дожидаясь истечения hold'а. Повторный вызов - идемпотентный no-op.
type UseCase struct {
	ledgerService  LedgerService
	paymentService PaymentService
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	ledgerService LedgerService,
	paymentService PaymentService,
	logger Logger,
) *UseCase {
	return &UseCase{
		ledgerService:  ledgerService,
		paymentService: paymentService,
		logger:         logger,
	}
}

// Execute выполняет use case отказа от попытки бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) error {
	uc.logger.Info("AbandonBooking: amateur=%d, transaction=%s", req.AmateurID, req.TransactionID)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("AbandonBooking: validation failed: %v", err)
		return err
	}

	transaction, err := uc.paymentService.GetTransaction(ctx, req.TransactionID)
	if err != nil {
		if errors.Is(err, payments.ErrTransactionNotFound) {
			return ErrTransactionNotFound
		}
		uc.logger.Error("AbandonBooking: failed to get transaction=%s: %v", req.TransactionID, err)
		return fmt.Errorf("%w: failed to get transaction: %v", ErrInternal, err)
	}

	if transaction.AmateurID != req.AmateurID {
		uc.logger.Warn("AbandonBooking: transaction=%s belongs to amateur=%d, requested by %d",
			req.TransactionID, transaction.AmateurID, req.AmateurID)
		return ErrAccessDenied
	}

	// Успешно оплаченную попытку бросить нельзя: деньги уже списаны,
	// выход из нее - confirm и затем cancel с возвратом
	if transaction.Status == domain.PaymentStatusSucceeded {
		uc.logger.Warn("AbandonBooking: transaction=%s already succeeded", req.TransactionID)
		return ErrAlreadyPaid
	}

	if err := uc.paymentService.CancelTransaction(ctx, req.TransactionID); err != nil {
		uc.logger.Error("AbandonBooking: cancel failed for transaction=%s: %v", req.TransactionID, err)
		return fmt.Errorf("%w: cancel transaction failed: %v", ErrInternal, err)
	}

	if err := uc.ledgerService.Release(ctx, transaction.HoldID); err != nil {
		uc.logger.Error("AbandonBooking: release failed for hold=%s: %v", transaction.HoldID, err)
		return fmt.Errorf("%w: release hold failed: %v", ErrInternal, err)
	}

	uc.logger.Info("AbandonBooking: transaction=%s canceled, hold=%s released", req.TransactionID, transaction.HoldID)
	return nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AmateurID <= 0 {
		return fmt.Errorf("%w: amateurID must be positive", ErrInvalidInput)
	}
	if req.TransactionID == "" {
		return fmt.Errorf("%w: transactionID is required", ErrInvalidInput)
	}
	if _, err := uuid.Parse(req.TransactionID); err != nil {
		return fmt.Errorf("%w: transactionID must be a valid uuid", ErrInvalidInput)
	}
	return nil
}
