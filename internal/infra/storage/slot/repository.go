package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/pkg/dbmetrics"
	"github.com/fairwaylabs/GLM-BookingService/pkg/psqlbuilder"
	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// Repository репозиторий для работы со слотами доступности и hold'ами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.AvailabilitySlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"professional_id",
		"course_id",
		"slot_date",
		"start_time",
		"end_time",
		"max_players",
		"current_bookings",
		"price_per_player",
		"currency",
		"created_at",
		"updated_at",
	).
		From("availability_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanSlot(executor.QueryRowContext(ctx, query, args...))
}

// GetByProfessionalDateTime получает слот профессионала на конкретную дату и время
// Используется при принятии альтернативного предложения администратора
func (r *Repository) GetByProfessionalDateTime(
	ctx context.Context,
	professionalID int64,
	date time.Time,
	startTime types.TimeString,
) (*domain.AvailabilitySlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"professional_id",
		"course_id",
		"slot_date",
		"start_time",
		"end_time",
		"max_players",
		"current_bookings",
		"price_per_player",
		"currency",
		"created_at",
		"updated_at",
	).
		From("availability_slots").
		Where(squirrel.Eq{
			"professional_id": professionalID,
			"slot_date":       date,
			"start_time":      startTime,
		}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByProfessionalDateTime - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanSlot(executor.QueryRowContext(ctx, query, args...))
}

// ReserveCapacity атомарно увеличивает current_bookings на players
// Проверка и инкремент выполняются одним условным UPDATE:
//
//	UPDATE availability_slots
//	SET current_bookings = current_bookings + n
//	WHERE id = $1 AND current_bookings + n <= max_players
//
// Это закрывает гонку между двумя конкурентными бронированиями, читающими
// устаревшее значение счетчика. При нуле затронутых строк различаем
// ErrSlotFull и ErrSlotNotFound дополнительным SELECT.
func (r *Repository) ReserveCapacity(ctx context.Context, slotID int64, players int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_slots").
		Set("current_bookings", squirrel.Expr("current_bookings + ?", players)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slotID}).
		Where(squirrel.Expr("current_bookings + ? <= max_players", players)).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ReserveCapacity - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ReserveCapacity - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: ReserveCapacity - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, slotID); err != nil {
			if errors.Is(err, ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return err
		}
		return ErrSlotFull
	}

	return nil
}

// CreateHold создает запись hold'а
// Вызывается в одной транзакции с ReserveCapacity (см. service/ledger)
func (r *Repository) CreateHold(ctx context.Context, hold *domain.ReservationHold) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("slot_holds").
		Columns("id", "slot_id", "players", "status", "expires_at").
		Values(hold.ID, hold.SlotID, hold.Players, hold.Status, hold.ExpiresAt).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: CreateHold - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		return fmt.Errorf("%w: CreateHold - execute insert: %v", ErrExecQuery, err)
	}

	hold.CreatedAt = createdAt.Time
	hold.UpdatedAt = updatedAt.Time

	return nil
}

// GetHold получает hold по ID
func (r *Repository) GetHold(ctx context.Context, holdID string) (*domain.ReservationHold, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"slot_id",
		"players",
		"status",
		"expires_at",
		"created_at",
		"updated_at",
	).
		From("slot_holds").
		Where(squirrel.Eq{"id": holdID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetHold - build select query: %v", ErrBuildQuery, err)
	}

	var hold domain.ReservationHold
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&hold.ID,
		&hold.SlotID,
		&hold.Players,
		&hold.Status,
		&hold.ExpiresAt,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrHoldNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetHold - scan hold: %v", ErrScanRow, err)
	}

	hold.CreatedAt = createdAt.Time
	hold.UpdatedAt = updatedAt.Time

	return &hold, nil
}

// CommitHold помечает hold как окончательно потребленный (active -> committed)
// Счетчик слота не меняется - места были заняты при резервации.
// Повторный commit уже закоммиченного hold'а - no-op (идемпотентность),
// commit освобожденного hold'а - ErrHoldReleased.
func (r *Repository) CommitHold(ctx context.Context, holdID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slot_holds").
		Set("status", domain.HoldStatusCommitted).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": holdID, "status": domain.HoldStatusActive}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: CommitHold - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: CommitHold - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: CommitHold - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		hold, err := r.GetHold(ctx, holdID)
		if err != nil {
			return err
		}
		switch hold.Status {
		case domain.HoldStatusCommitted:
			return nil // идемпотентный повторный commit
		case domain.HoldStatusReleased:
			return ErrHoldReleased
		default:
			return fmt.Errorf("%w: CommitHold - unexpected hold status %s", ErrExecQuery, hold.Status)
		}
	}

	return nil
}

// ReleaseHold освобождает активный hold: условный переход active -> released
// плюс декремент счетчика слота. Повторный release и release закоммиченного
// hold'а - no-op, счетчик не декрементируется дважды.
func (r *Repository) ReleaseHold(ctx context.Context, holdID string) error {
	return r.releaseHold(ctx, holdID, []domain.HoldStatus{domain.HoldStatusActive})
}

// ForceReleaseHold освобождает hold независимо от того, был ли он закоммичен
// Используется только потоком отмены подтвержденного бронирования, где место
// должно быть возвращено несмотря на состоявшийся commit
func (r *Repository) ForceReleaseHold(ctx context.Context, holdID string) error {
	return r.releaseHold(ctx, holdID, []domain.HoldStatus{
		domain.HoldStatusActive,
		domain.HoldStatusCommitted,
	})
}

func (r *Repository) releaseHold(ctx context.Context, holdID string, from []domain.HoldStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	fromStrings := make([]string, len(from))
	for i, s := range from {
		fromStrings[i] = string(s)
	}

	query, args, err := psqlbuilder.Update("slot_holds").
		Set("status", domain.HoldStatusReleased).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": holdID, "status": fromStrings}).
		Suffix("RETURNING slot_id, players").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: releaseHold - build update query: %v", ErrBuildQuery, err)
	}

	var slotID int64
	var players int

	err = executor.QueryRowContext(ctx, query, args...).Scan(&slotID, &players)
	if err == sql.ErrNoRows {
		// Hold уже released (или не в ожидаемом статусе) - идемпотентный no-op,
		// но отсутствующий hold - ошибка
		if _, getErr := r.GetHold(ctx, holdID); getErr != nil {
			return getErr
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: releaseHold - execute update: %v", ErrExecQuery, err)
	}

	return r.decrementCapacity(ctx, slotID, players)
}

// decrementCapacity уменьшает current_bookings с защитой от ухода ниже нуля
func (r *Repository) decrementCapacity(ctx context.Context, slotID int64, players int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_slots").
		Set("current_bookings", squirrel.Expr("current_bookings - ?", players)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slotID}).
		Where(squirrel.Expr("current_bookings >= ?", players)).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: decrementCapacity - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: decrementCapacity - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: decrementCapacity - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: decrementCapacity - slot id=%d counter underflow", ErrExecQuery, slotID)
	}

	return nil
}

// ListExpiredActiveHolds возвращает активные hold'ы с истекшим expires_at,
// на которые не ссылается ни одно живое бронирование
// Используется sweeper'ом для освобождения брошенных резерваций
func (r *Repository) ListExpiredActiveHolds(ctx context.Context, now time.Time, limit uint64) ([]*domain.ReservationHold, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	liveStatuses := make([]string, len(domain.LiveStatuses))
	for i, s := range domain.LiveStatuses {
		liveStatuses[i] = string(s)
	}

	query, args, err := psqlbuilder.Select(
		"id",
		"slot_id",
		"players",
		"status",
		"expires_at",
		"created_at",
		"updated_at",
	).
		From("slot_holds").
		Where(squirrel.Eq{"status": domain.HoldStatusActive}).
		Where(squirrel.Lt{"expires_at": now}).
		Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM bookings b WHERE b.hold_id = slot_holds.id AND b.status = ANY(?))",
			pq.Array(liveStatuses),
		)).
		OrderBy("expires_at ASC").
		Limit(limit).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredActiveHolds - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredActiveHolds - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	holds := make([]*domain.ReservationHold, 0)
	for rows.Next() {
		var hold domain.ReservationHold
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&hold.ID,
			&hold.SlotID,
			&hold.Players,
			&hold.Status,
			&hold.ExpiresAt,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListExpiredActiveHolds - scan row: %v", ErrScanRow, err)
		}

		hold.CreatedAt = createdAt.Time
		hold.UpdatedAt = updatedAt.Time
		holds = append(holds, &hold)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListExpiredActiveHolds - rows error: %v", ErrScanRow, err)
	}

	return holds, nil
}

// scanSlot сканирует одну строку слота
func (r *Repository) scanSlot(row *sql.Row) (*domain.AvailabilitySlot, error) {
	var s domain.AvailabilitySlot
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.ProfessionalID,
		&s.CourseID,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.MaxPlayers,
		&s.CurrentBookings,
		&s.PricePerPlayer,
		&s.Currency,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanSlot - scan row: %v", ErrScanRow, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}
