package respond_alternative

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	bookingRepo "github.com/fairwaylabs/GLM-BookingService/internal/infra/storage/booking"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/ledger"
	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

type fakeBookingRepo struct {
	mu      sync.Mutex
	booking *domain.Booking
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.booking == nil || r.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *r.booking
	return &copied, nil
}

func (r *fakeBookingRepo) UpdateStatusIf(_ context.Context, id int64, from, to domain.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.booking == nil || r.booking.ID != id {
		return bookingRepo.ErrBookingNotFound
	}
	if r.booking.Status != from {
		return bookingRepo.ErrStatusConflict
	}
	r.booking.Status = to
	return nil
}

func (r *fakeBookingRepo) ReassignSlot(_ context.Context, id int64, from, to domain.BookingStatus, slotID int64, holdID string, lessonDate time.Time, startTime types.TimeString) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.booking == nil || r.booking.ID != id {
		return bookingRepo.ErrBookingNotFound
	}
	if r.booking.Status != from {
		return bookingRepo.ErrStatusConflict
	}
	r.booking.Status = to
	r.booking.SlotID = slotID
	r.booking.HoldID = holdID
	r.booking.LessonDate = lessonDate
	r.booking.StartTime = startTime
	r.booking.ProposedDate = nil
	r.booking.ProposedStartTime = nil
	return nil
}

type fakeSlotRepo struct {
	mu        sync.Mutex
	committed []string
}

func (r *fakeSlotRepo) CommitHold(_ context.Context, holdID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, holdID)
	return nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*domain.BookingEvent
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *domain.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

type fakeLedger struct {
	mu         sync.Mutex
	slot       *domain.AvailabilitySlot
	findErr    error
	reserveErr error
	released   []string
	lastHoldID string
}

func (l *fakeLedger) FindSlot(_ context.Context, _ int64, _ time.Time, _ types.TimeString) (*domain.AvailabilitySlot, error) {
	if l.findErr != nil {
		return nil, l.findErr
	}
	copied := *l.slot
	return &copied, nil
}

func (l *fakeLedger) Reserve(_ context.Context, slotID int64, players int) (*domain.ReservationHold, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.reserveErr != nil {
		return nil, l.reserveErr
	}
	hold := &domain.ReservationHold{
		ID:      uuid.NewString(),
		SlotID:  slotID,
		Players: players,
		Status:  domain.HoldStatusActive,
	}
	l.lastHoldID = hold.ID
	return hold, nil
}

func (l *fakeLedger) Release(_ context.Context, holdID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released = append(l.released, holdID)
	return nil
}

type fakePayments struct {
	mu       sync.Mutex
	refunded []string
}

func (p *fakePayments) Refund(_ context.Context, transactionID string, _ int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refunded = append(p.refunded, transactionID)
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

type fixture struct {
	uc       *UseCase
	bookings *fakeBookingRepo
	slots    *fakeSlotRepo
	outbox   *fakeOutboxRepo
	ledger   *fakeLedger
	payments *fakePayments
}

func newFixture() *fixture {
	proposedDate := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	proposedTime := types.TimeString("14:00")

	bookings := &fakeBookingRepo{
		booking: &domain.Booking{
			ID:                   1,
			AmateurID:            100,
			ProfessionalID:       10,
			SlotID:               5,
			Players:              2,
			HoldID:               "hold-old",
			PaymentTransactionID: "tx-1",
			PaymentStatus:        domain.PaymentStatusSucceeded,
			Status:               domain.StatusAlternativeProposed,
			LessonDate:           time.Date(2026, 4, 18, 0, 0, 0, 0, time.UTC),
			StartTime:            types.TimeString("10:00"),
			ProposedDate:         &proposedDate,
			ProposedStartTime:    &proposedTime,
		},
	}

	ledgerFake := &fakeLedger{
		slot: &domain.AvailabilitySlot{
			ID:             7,
			ProfessionalID: 10,
			CourseID:       20,
			Date:           proposedDate,
			StartTime:      proposedTime,
			MaxPlayers:     4,
		},
	}

	slots := &fakeSlotRepo{}
	outbox := &fakeOutboxRepo{}
	paymentsFake := &fakePayments{}

	return &fixture{
		uc:       NewUseCase(bookings, slots, outbox, ledgerFake, paymentsFake, fakeTxManager{}, noopLogger{}),
		bookings: bookings,
		slots:    slots,
		outbox:   outbox,
		ledger:   ledgerFake,
		payments: paymentsFake,
	}
}

func TestUseCase_Execute_Accept(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), &Request{AmateurID: 100, BookingID: 1, Accept: true})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Booking.Status)

	// Бронирование перенесено на предложенный слот, новый hold закоммичен
	assert.Equal(t, int64(7), resp.Booking.SlotID)
	assert.Equal(t, "2026-04-20", resp.Booking.LessonDate)
	assert.Equal(t, "14:00", resp.Booking.StartTime)
	assert.Equal(t, []string{f.ledger.lastHoldID}, f.slots.committed)
	assert.Nil(t, resp.Booking.ProposedDate)

	assert.Empty(t, f.payments.refunded)
	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, domain.EventBookingConfirmed, f.outbox.events[0].Type)
}

func TestUseCase_Execute_Accept_SlotFull(t *testing.T) {
	f := newFixture()
	f.ledger.reserveErr = ledger.ErrSlotUnavailable

	_, err := f.uc.Execute(context.Background(), &Request{AmateurID: 100, BookingID: 1, Accept: true})
	assert.ErrorIs(t, err, ErrAlternativeSlotUnavailable)

	// Бронирование остается в alternative_proposed: любитель может отклонить
	assert.Equal(t, domain.StatusAlternativeProposed, f.bookings.booking.Status)
	assert.Empty(t, f.payments.refunded)
}

func TestUseCase_Execute_Accept_SlotGone(t *testing.T) {
	f := newFixture()
	f.ledger.findErr = ledger.ErrSlotNotFound

	_, err := f.uc.Execute(context.Background(), &Request{AmateurID: 100, BookingID: 1, Accept: true})
	assert.ErrorIs(t, err, ErrAlternativeSlotUnavailable)
}

func TestUseCase_Execute_Accept_ReassignConflictReleasesHold(t *testing.T) {
	f := newFixture()

	// Конкурентная отмена перевела бронирование до переноса
	f.bookings.booking.Status = domain.StatusCancelled
	racing := &racingRepo{inner: f.bookings}
	uc := NewUseCase(racing, f.slots, f.outbox, f.ledger, f.payments, fakeTxManager{}, noopLogger{})

	_, err := uc.Execute(context.Background(), &Request{AmateurID: 100, BookingID: 1, Accept: true})
	assert.ErrorIs(t, err, ErrStatusConflict)

	// Резервация нового слота откатена компенсирующим release
	assert.Equal(t, []string{f.ledger.lastHoldID}, f.ledger.released)
	assert.Empty(t, f.slots.committed)
}

// racingRepo отдает alternative_proposed при чтении, но реальный статус уже другой
type racingRepo struct {
	inner *fakeBookingRepo
}

func (r *racingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Status = domain.StatusAlternativeProposed
	return b, nil
}

func (r *racingRepo) UpdateStatusIf(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	return r.inner.UpdateStatusIf(ctx, id, from, to)
}

func (r *racingRepo) ReassignSlot(ctx context.Context, id int64, from, to domain.BookingStatus, slotID int64, holdID string, lessonDate time.Time, startTime types.TimeString) error {
	return r.inner.ReassignSlot(ctx, id, from, to, slotID, holdID, lessonDate, startTime)
}

func TestUseCase_Execute_Decline(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), &Request{AmateurID: 100, BookingID: 1, Accept: false})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRejected), resp.Booking.Status)
	assert.False(t, resp.RefundPending)

	// Полный возврат средств, места не трогаем - они освобождены при предложении
	assert.Equal(t, []string{"tx-1"}, f.payments.refunded)
	assert.Empty(t, f.ledger.released)

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, domain.EventBookingRejected, f.outbox.events[0].Type)
}

func TestUseCase_Execute_AccessDenied(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{AmateurID: 999, BookingID: 1, Accept: true})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestUseCase_Execute_NoAlternativeProposed(t *testing.T) {
	f := newFixture()
	f.bookings.booking.Status = domain.StatusConfirmed

	_, err := f.uc.Execute(context.Background(), &Request{AmateurID: 100, BookingID: 1, Accept: true})
	assert.ErrorIs(t, err, ErrNoAlternativeProposed)
}

func TestUseCase_Execute_BookingNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{AmateurID: 100, BookingID: 42, Accept: false})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
