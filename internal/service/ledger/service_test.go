package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	slotRepo "github.com/fairwaylabs/GLM-BookingService/internal/infra/storage/slot"
	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// fakeSlotRepo хранит слоты и hold'ы в памяти с семантикой условных UPDATE
// реального репозитория: резервация проверяет вместимость, commit и release
// переводят статус только из допустимого исходного.
type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[int64]*domain.AvailabilitySlot
	holds map[string]*domain.ReservationHold
}

func newFakeSlotRepo(slots ...*domain.AvailabilitySlot) *fakeSlotRepo {
	r := &fakeSlotRepo{
		slots: make(map[int64]*domain.AvailabilitySlot),
		holds: make(map[string]*domain.ReservationHold),
	}
	for _, s := range slots {
		r.slots[s.ID] = s
	}
	return r
}

func (r *fakeSlotRepo) GetByID(_ context.Context, id int64) (*domain.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSlotRepo) GetByProfessionalDateTime(_ context.Context, professionalID int64, date time.Time, startTime types.TimeString) (*domain.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.ProfessionalID == professionalID && s.Date.Equal(date) && s.StartTime == startTime {
			copied := *s
			return &copied, nil
		}
	}
	return nil, slotRepo.ErrSlotNotFound
}

func (r *fakeSlotRepo) ReserveCapacity(_ context.Context, slotID int64, players int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok {
		return slotRepo.ErrSlotNotFound
	}
	if s.CurrentBookings+players > s.MaxPlayers {
		return slotRepo.ErrSlotFull
	}
	s.CurrentBookings += players
	return nil
}

func (r *fakeSlotRepo) CreateHold(_ context.Context, hold *domain.ReservationHold) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *hold
	r.holds[hold.ID] = &copied
	return nil
}

func (r *fakeSlotRepo) GetHold(_ context.Context, holdID string) (*domain.ReservationHold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[holdID]
	if !ok {
		return nil, slotRepo.ErrHoldNotFound
	}
	copied := *h
	return &copied, nil
}

func (r *fakeSlotRepo) CommitHold(_ context.Context, holdID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[holdID]
	if !ok {
		return slotRepo.ErrHoldNotFound
	}
	switch h.Status {
	case domain.HoldStatusCommitted:
		return nil
	case domain.HoldStatusReleased:
		return slotRepo.ErrHoldReleased
	}
	h.Status = domain.HoldStatusCommitted
	return nil
}

func (r *fakeSlotRepo) ReleaseHold(_ context.Context, holdID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[holdID]
	if !ok {
		return slotRepo.ErrHoldNotFound
	}
	if h.Status != domain.HoldStatusActive {
		return nil
	}
	h.Status = domain.HoldStatusReleased
	r.slots[h.SlotID].CurrentBookings -= h.Players
	return nil
}

func (r *fakeSlotRepo) ForceReleaseHold(_ context.Context, holdID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[holdID]
	if !ok {
		return slotRepo.ErrHoldNotFound
	}
	if h.Status == domain.HoldStatusReleased {
		return nil
	}
	h.Status = domain.HoldStatusReleased
	r.slots[h.SlotID].CurrentBookings -= h.Players
	return nil
}

func (r *fakeSlotRepo) ListExpiredActiveHolds(_ context.Context, now time.Time, limit uint64) ([]*domain.ReservationHold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ReservationHold
	for _, h := range r.holds {
		if h.Status == domain.HoldStatusActive && now.After(h.ExpiresAt) {
			copied := *h
			out = append(out, &copied)
			if uint64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

// fakeTxManager выполняет функцию без реальной транзакции
type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func testSlot(id int64, maxPlayers, current int) *domain.AvailabilitySlot {
	return &domain.AvailabilitySlot{
		ID:              id,
		ProfessionalID:  10,
		CourseID:        20,
		Date:            time.Date(2026, 4, 18, 0, 0, 0, 0, time.UTC),
		StartTime:       types.TimeString("10:00"),
		EndTime:         types.TimeString("11:00"),
		MaxPlayers:      maxPlayers,
		CurrentBookings: current,
		PricePerPlayer:  5000,
		Currency:        "EUR",
	}
}

func newTestService(repo *fakeSlotRepo) *Service {
	return NewService(repo, fakeTxManager{}, 15*time.Minute, noopLogger{})
}

func TestService_Reserve(t *testing.T) {
	repo := newFakeSlotRepo(testSlot(1, 4, 0))
	svc := newTestService(repo)

	hold, err := svc.Reserve(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NotNil(t, hold)
	assert.NotEmpty(t, hold.ID)
	assert.Equal(t, domain.HoldStatusActive, hold.Status)
	assert.True(t, hold.ExpiresAt.After(time.Now()))

	slot, err := svc.GetSlot(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, slot.CurrentBookings)
}

func TestService_Reserve_SlotFull(t *testing.T) {
	repo := newFakeSlotRepo(testSlot(1, 4, 3))
	svc := newTestService(repo)

	_, err := svc.Reserve(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Счетчик не изменился
	slot, err := svc.GetSlot(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, slot.CurrentBookings)
}

func TestService_Reserve_InvalidPlayers(t *testing.T) {
	repo := newFakeSlotRepo(testSlot(1, 4, 0))
	svc := newTestService(repo)

	_, err := svc.Reserve(context.Background(), 1, 0)
	assert.ErrorIs(t, err, ErrInvalidPlayers)

	_, err = svc.Reserve(context.Background(), 1, domain.MaxPlayersPerBooking+1)
	assert.ErrorIs(t, err, ErrInvalidPlayers)
}

func TestService_Reserve_SlotNotFound(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo)

	_, err := svc.Reserve(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestService_Reserve_ConcurrentLastSeats(t *testing.T) {
	repo := newFakeSlotRepo(testSlot(1, 4, 0))
	svc := newTestService(repo)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), 1, 2)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrSlotUnavailable)
		}
	}

	// Ровно два запроса по 2 места проходят в слот на 4
	assert.Equal(t, 2, succeeded)
	slot, err := svc.GetSlot(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, slot.CurrentBookings)
}

func TestService_Commit_Idempotent(t *testing.T) {
	repo := newFakeSlotRepo(testSlot(1, 4, 0))
	svc := newTestService(repo)

	hold, err := svc.Reserve(context.Background(), 1, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Commit(context.Background(), hold.ID))
	require.NoError(t, svc.Commit(context.Background(), hold.ID))

	// Счетчик не меняется при commit: места заняты при резервации
	slot, err := svc.GetSlot(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, slot.CurrentBookings)
}

func TestService_Commit_ReleasedHold(t *testing.T) {
	repo := newFakeSlotRepo(testSlot(1, 4, 0))
	svc := newTestService(repo)

	hold, err := svc.Reserve(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Release(context.Background(), hold.ID))

	err = svc.Commit(context.Background(), hold.ID)
	assert.ErrorIs(t, err, ErrHoldReleased)
}

func TestService_Release_Idempotent(t *testing.T) {
	repo := newFakeSlotRepo(testSlot(1, 4, 0))
	svc := newTestService(repo)

	hold, err := svc.Reserve(context.Background(), 1, 3)
	require.NoError(t, err)

	require.NoError(t, svc.Release(context.Background(), hold.ID))
	require.NoError(t, svc.Release(context.Background(), hold.ID))

	// Декремент выполняется ровно один раз
	slot, err := svc.GetSlot(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, slot.CurrentBookings)
}

func TestService_Release_CommittedHoldIsNoop(t *testing.T) {
	repo := newFakeSlotRepo(testSlot(1, 4, 0))
	svc := newTestService(repo)

	hold, err := svc.Reserve(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Commit(context.Background(), hold.ID))

	// Обычный release закоммиченного hold'а не возвращает места
	require.NoError(t, svc.Release(context.Background(), hold.ID))
	slot, err := svc.GetSlot(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, slot.CurrentBookings)
}

func TestService_ForceRelease_CommittedHold(t *testing.T) {
	repo := newFakeSlotRepo(testSlot(1, 4, 0))
	svc := newTestService(repo)

	hold, err := svc.Reserve(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Commit(context.Background(), hold.ID))

	// ForceRelease при отмене подтвержденного бронирования возвращает места
	require.NoError(t, svc.ForceRelease(context.Background(), hold.ID))
	slot, err := svc.GetSlot(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, slot.CurrentBookings)
}

func TestService_ReleaseExpired(t *testing.T) {
	repo := newFakeSlotRepo(testSlot(1, 4, 0))
	// Нулевой TTL недопустим, используем минимальный и подделываем истечение ниже
	svc := NewService(repo, fakeTxManager{}, time.Minute, noopLogger{})

	hold, err := svc.Reserve(context.Background(), 1, 2)
	require.NoError(t, err)

	fresh, err := svc.Reserve(context.Background(), 1, 1)
	require.NoError(t, err)

	// Состариваем первый hold
	repo.mu.Lock()
	repo.holds[hold.ID].ExpiresAt = time.Now().Add(-time.Minute)
	repo.mu.Unlock()

	released, err := svc.ReleaseExpired(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, released, 1)
	assert.Equal(t, hold.ID, released[0].ID)

	// Живой hold не тронут, места истекшего возвращены
	got, err := svc.GetHold(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldStatusActive, got.Status)

	slot, err := svc.GetSlot(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, slot.CurrentBookings)
}
