package outbox

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/pkg/dbmetrics"
	"github.com/fairwaylabs/GLM-BookingService/pkg/psqlbuilder"
)

// Repository репозиторий transactional outbox
// Create вызывается внутри транзакции изменения состояния бронирования,
// ListPending/MarkDispatched - диспетчером вне транзакций
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория outbox
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create добавляет событие в outbox
// Должен вызываться в той же транзакции, что и смена статуса бронирования
func (r *Repository) Create(ctx context.Context, event *domain.BookingEvent) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_events").
		Columns("booking_id", "event_type", "payload").
		Values(event.BookingID, event.Type, event.Payload).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ListPending возвращает неотправленные события в порядке создания
func (r *Repository) ListPending(ctx context.Context, limit uint64) ([]*domain.BookingEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"event_type",
		"payload",
		"created_at",
		"dispatched_at",
	).
		From("booking_events").
		Where(squirrel.Eq{"dispatched_at": nil}).
		OrderBy("id ASC").
		Limit(limit).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListPending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPending - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]*domain.BookingEvent, 0)
	for rows.Next() {
		var event domain.BookingEvent
		var dispatchedAt sql.NullTime

		err := rows.Scan(
			&event.ID,
			&event.BookingID,
			&event.Type,
			&event.Payload,
			&event.CreatedAt,
			&dispatchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListPending - scan row: %v", ErrScanRow, err)
		}

		if dispatchedAt.Valid {
			event.DispatchedAt = &dispatchedAt.Time
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListPending - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}

// MarkDispatched помечает событие как отправленное
func (r *Repository) MarkDispatched(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_events").
		Set("dispatched_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "dispatched_at": nil}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkDispatched - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkDispatched - execute update: %v", ErrExecQuery, err)
	}

	return nil
}
