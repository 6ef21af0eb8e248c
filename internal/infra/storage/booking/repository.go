package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/pkg/dbmetrics"
	"github.com/fairwaylabs/GLM-BookingService/pkg/psqlbuilder"
	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var bookingColumns = []string{
	"id",
	"amateur_id",
	"professional_id",
	"slot_id",
	"course_id",
	"lesson_date",
	"start_time",
	"players",
	"amount_minor",
	"currency",
	"special_requests",
	"payment_transaction_id",
	"payment_status",
	"hold_id",
	"status",
	"admin_notes",
	"proposed_date",
	"proposed_start_time",
	"created_at",
	"updated_at",
}

// Create создает бронирование с идемпотентностью по payment_transaction_id
// Вставка выполняется как INSERT ... ON CONFLICT DO NOTHING по уникальному
// индексу на payment_transaction_id: проигравший гонку повтор (ретрай клиента
// после таймаута) получает ErrDuplicateTransaction и перечитывает существующую
// строку вместо создания второго бронирования
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"amateur_id",
			"professional_id",
			"slot_id",
			"course_id",
			"lesson_date",
			"start_time",
			"players",
			"amount_minor",
			"currency",
			"special_requests",
			"payment_transaction_id",
			"payment_status",
			"hold_id",
			"status",
		).
		Values(
			b.AmateurID,
			b.ProfessionalID,
			b.SlotID,
			b.CourseID,
			b.LessonDate,
			b.StartTime,
			b.Players,
			b.AmountMinor,
			b.Currency,
			b.SpecialRequests,
			b.PaymentTransactionID,
			b.PaymentStatus,
			b.HoldID,
			b.Status,
		).
		Suffix("ON CONFLICT (payment_transaction_id) DO NOTHING RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrDuplicateTransaction
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByTransactionID получает бронирование по идемпотентному ключу
// (локальному correlation id платежной транзакции)
func (r *Repository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"payment_transaction_id": transactionID})
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Eq) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(where).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getOne - build select query: %v", ErrBuildQuery, err)
	}

	bookings, err := r.queryBookings(ctx, executor, query, args)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, ErrBookingNotFound
	}

	return bookings[0], nil
}

// GetByAmateurID получает список бронирований любителя
// Опционально фильтрует по статусу
func (r *Repository) GetByAmateurID(ctx context.Context, amateurID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"amateur_id": amateurID}).
		OrderBy("lesson_date DESC, start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAmateurID - build select query: %v", ErrBuildQuery, err)
	}

	return r.queryBookings(ctx, executor, query, args)
}

// GetByProfessionalWithFilter получает бронирования профессионала с фильтрацией
// по полю, периоду и статусу; закрытые бронирования исключаются по умолчанию
func (r *Repository) GetByProfessionalWithFilter(ctx context.Context, filter domain.ProfessionalBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"professional_id": filter.ProfessionalID})

	if filter.CourseID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"course_id": *filter.CourseID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"lesson_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"lesson_date": *filter.EndDate})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeClosed {
		closedStatusStrings := make([]string, len(domain.ClosedStatuses))
		for i, s := range domain.ClosedStatuses {
			closedStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": closedStatusStrings})
	}

	selectBuilder = selectBuilder.OrderBy("lesson_date DESC, start_time DESC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProfessionalWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	return r.queryBookings(ctx, executor, query, args)
}

// UpdateStatusIf выполняет условный переход статуса: UPDATE применяется только
// если текущий статус совпадает с ожидаемым. Ноль затронутых строк при
// существующем бронировании означает проигранную гонку - ErrStatusConflict
func (r *Repository) UpdateStatusIf(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	return r.conditionalUpdate(ctx, id, from, func(b squirrel.UpdateBuilder) squirrel.UpdateBuilder {
		return b.Set("status", to)
	})
}

// ApplyDecision применяет решение администратора одним условным UPDATE:
// переход статуса + заметки + данные альтернативы (для propose_alternative)
func (r *Repository) ApplyDecision(
	ctx context.Context,
	id int64,
	from, to domain.BookingStatus,
	notes *string,
	proposedDate *time.Time,
	proposedStartTime *types.TimeString,
) error {
	return r.conditionalUpdate(ctx, id, from, func(b squirrel.UpdateBuilder) squirrel.UpdateBuilder {
		return b.
			Set("status", to).
			Set("admin_notes", notes).
			Set("proposed_date", proposedDate).
			Set("proposed_start_time", proposedStartTime)
	})
}

// ReassignSlot переводит бронирование на альтернативный слот
// (принятие альтернативного предложения): новый слот, hold, дата и время
func (r *Repository) ReassignSlot(
	ctx context.Context,
	id int64,
	from, to domain.BookingStatus,
	slotID int64,
	holdID string,
	lessonDate time.Time,
	startTime types.TimeString,
) error {
	return r.conditionalUpdate(ctx, id, from, func(b squirrel.UpdateBuilder) squirrel.UpdateBuilder {
		return b.
			Set("status", to).
			Set("slot_id", slotID).
			Set("hold_id", holdID).
			Set("lesson_date", lessonDate).
			Set("start_time", startTime).
			Set("proposed_date", nil).
			Set("proposed_start_time", nil)
	})
}

func (r *Repository) conditionalUpdate(
	ctx context.Context,
	id int64,
	from domain.BookingStatus,
	apply func(squirrel.UpdateBuilder) squirrel.UpdateBuilder,
) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update("bookings").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from})

	query, args, err := apply(builder).ToSql()
	if err != nil {
		return fmt.Errorf("%w: conditionalUpdate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: conditionalUpdate - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: conditionalUpdate - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrStatusConflict
	}

	return nil
}

// queryBookings выполняет запрос и сканирует результат в слайс бронирований
func (r *Repository) queryBookings(ctx context.Context, executor DBExecutor, query string, args []interface{}) ([]*domain.Booking, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: queryBookings - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var b domain.Booking
		var createdAt, updatedAt sql.NullTime
		var proposedDate sql.NullTime
		var proposedStartTime types.TimeString

		err := rows.Scan(
			&b.ID,
			&b.AmateurID,
			&b.ProfessionalID,
			&b.SlotID,
			&b.CourseID,
			&b.LessonDate,
			&b.StartTime,
			&b.Players,
			&b.AmountMinor,
			&b.Currency,
			&b.SpecialRequests,
			&b.PaymentTransactionID,
			&b.PaymentStatus,
			&b.HoldID,
			&b.Status,
			&b.AdminNotes,
			&proposedDate,
			&proposedStartTime,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: queryBookings - scan row: %v", ErrScanRow, err)
		}

		if proposedDate.Valid {
			b.ProposedDate = &proposedDate.Time
		}
		if !proposedStartTime.IsZero() {
			b.ProposedStartTime = &proposedStartTime
		}
		b.CreatedAt = createdAt.Time
		b.UpdatedAt = updatedAt.Time

		bookings = append(bookings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: queryBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
