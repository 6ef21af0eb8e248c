package validation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/pkg/dbmetrics"
	"github.com/fairwaylabs/GLM-BookingService/pkg/psqlbuilder"
	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// Repository репозиторий аудита решений администраторов
// Записи append-only: создаются один раз, никогда не изменяются и не удаляются
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория аудита
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает запись решения администратора
func (r *Repository) Create(ctx context.Context, rec *domain.AdminValidationRecord) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("admin_validation_records").
		Columns(
			"booking_id",
			"admin_id",
			"decision",
			"notes",
			"alternative_date",
			"alternative_start_time",
		).
		Values(
			rec.BookingID,
			rec.AdminID,
			rec.Decision,
			rec.Notes,
			rec.AlternativeDate,
			rec.AlternativeStartTime,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&rec.ID, &createdAt)
	if err != nil {
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	rec.CreatedAt = createdAt.Time

	return nil
}

// ListByBookingID возвращает историю решений по бронированию
// в хронологическом порядке
func (r *Repository) ListByBookingID(ctx context.Context, bookingID int64) ([]*domain.AdminValidationRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"admin_id",
		"decision",
		"notes",
		"alternative_date",
		"alternative_start_time",
		"created_at",
	).
		From("admin_validation_records").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("created_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBookingID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	records := make([]*domain.AdminValidationRecord, 0)
	for rows.Next() {
		var rec domain.AdminValidationRecord
		var createdAt sql.NullTime
		var altDate sql.NullTime
		var altTime types.TimeString

		err := rows.Scan(
			&rec.ID,
			&rec.BookingID,
			&rec.AdminID,
			&rec.Decision,
			&rec.Notes,
			&altDate,
			&altTime,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByBookingID - scan row: %v", ErrScanRow, err)
		}

		if altDate.Valid {
			rec.AlternativeDate = &altDate.Time
		}
		if !altTime.IsZero() {
			rec.AlternativeStartTime = &altTime
		}
		rec.CreatedAt = createdAt.Time

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByBookingID - rows error: %v", ErrScanRow, err)
	}

	return records, nil
}
