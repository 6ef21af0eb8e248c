package payment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/pkg/dbmetrics"
	"github.com/fairwaylabs/GLM-BookingService/pkg/psqlbuilder"
)

// Repository репозиторий корреляции платежных транзакций
// Хранит только состояние транзакций, данными бронирований не владеет
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория платежных транзакций
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

var transactionColumns = []string{
	"id",
	"provider_tx_id",
	"client_secret",
	"hold_id",
	"slot_id",
	"amateur_id",
	"professional_id",
	"amount_minor",
	"currency",
	"description",
	"status",
	"refunded_amount_minor",
	"refund_pending",
	"created_at",
	"updated_at",
}

// Create создает запись корреляции транзакции
func (r *Repository) Create(ctx context.Context, t *domain.PaymentTransaction) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payment_transactions").
		Columns(
			"id",
			"provider_tx_id",
			"client_secret",
			"hold_id",
			"slot_id",
			"amateur_id",
			"professional_id",
			"amount_minor",
			"currency",
			"description",
			"status",
		).
		Values(
			t.ID,
			t.ProviderTxID,
			t.ClientSecret,
			t.HoldID,
			t.SlotID,
			t.AmateurID,
			t.ProfessionalID,
			t.AmountMinor,
			t.Currency,
			t.Description,
			t.Status,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time

	return nil
}

// GetByID получает транзакцию по локальному correlation id
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.PaymentTransaction, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetPendingByHoldID получает нетерминальную транзакцию данного hold'а
// Используется для переиспользования еще живой транзакции при ретрае
// создания платежа вместо открытия второй
func (r *Repository) GetPendingByHoldID(ctx context.Context, holdID string) (*domain.PaymentTransaction, error) {
	return r.getOne(ctx, squirrel.Eq{
		"hold_id": holdID,
		"status": []string{
			string(domain.PaymentStatusCreated),
			string(domain.PaymentStatusRequiresConfirmation),
		},
	})
}

// UpdateStatus обновляет статус транзакции
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payment_transactions").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

// RecordRefund фиксирует результат попытки возврата
// refundedAmount - суммарно возвращенная сумма, pending - требуется ли
// повторная попытка out-of-band (sweeper)
func (r *Repository) RecordRefund(ctx context.Context, id string, refundedAmount int64, pending bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payment_transactions").
		Set("refunded_amount_minor", refundedAmount).
		Set("refund_pending", pending).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: RecordRefund - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: RecordRefund - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: RecordRefund - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

// ListRefundPending возвращает транзакции с незавершенным возвратом
// Используется sweeper'ом для повторных попыток
func (r *Repository) ListRefundPending(ctx context.Context, limit uint64) ([]*domain.PaymentTransaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(transactionColumns...).
		From("payment_transactions").
		Where(squirrel.Eq{"refund_pending": true}).
		OrderBy("updated_at ASC").
		Limit(limit).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListRefundPending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListRefundPending - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	transactions := make([]*domain.PaymentTransaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListRefundPending - rows error: %v", ErrScanRow, err)
	}

	return transactions, nil
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Eq) (*domain.PaymentTransaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(transactionColumns...).
		From("payment_transactions").
		Where(where).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getOne - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: getOne - rows error: %v", ErrScanRow, err)
		}
		return nil, ErrTransactionNotFound
	}

	return scanTransaction(rows)
}

func scanTransaction(rows *sql.Rows) (*domain.PaymentTransaction, error) {
	var t domain.PaymentTransaction
	var createdAt, updatedAt sql.NullTime

	err := rows.Scan(
		&t.ID,
		&t.ProviderTxID,
		&t.ClientSecret,
		&t.HoldID,
		&t.SlotID,
		&t.AmateurID,
		&t.ProfessionalID,
		&t.AmountMinor,
		&t.Currency,
		&t.Description,
		&t.Status,
		&t.RefundedAmountMinor,
		&t.RefundPending,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: scanTransaction - scan row: %v", ErrScanRow, err)
	}

	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time

	return &t, nil
}
