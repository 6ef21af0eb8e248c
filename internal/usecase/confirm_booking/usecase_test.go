package confirm_booking

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

// fakeBookingRepo реализует создание с уникальностью по transaction id
type fakeBookingRepo struct {
	mu            sync.Mutex
	nextID        int64
	byTransaction map[string]*domain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{nextID: 1, byTransaction: make(map[string]*domain.Booking)}
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byTransaction[booking.PaymentTransactionID]; exists {
		return nil, bookingRepo.ErrDuplicateTransaction
	}
	copied := *booking
	copied.ID = r.nextID
	r.nextID++
	copied.CreatedAt = time.Now()
	copied.UpdatedAt = copied.CreatedAt
	r.byTransaction[booking.PaymentTransactionID] = &copied
	result := copied
	return &result, nil
}

func (r *fakeBookingRepo) GetByTransactionID(_ context.Context, transactionID string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byTransaction[transactionID]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
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
	mu       sync.Mutex
	slot     *domain.AvailabilitySlot
	holds    map[string]*domain.ReservationHold
	released []string
	// reserveErr подменяет результат повторной резервации
	reserveErr error
}

func (l *fakeLedger) GetSlot(_ context.Context, slotID int64) (*domain.AvailabilitySlot, error) {
	copied := *l.slot
	return &copied, nil
}

func (l *fakeLedger) GetHold(_ context.Context, holdID string) (*domain.ReservationHold, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := l.holds[holdID]
	copied := *h
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
	l.holds[hold.ID] = hold
	return hold, nil
}

func (l *fakeLedger) Release(_ context.Context, holdID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released = append(l.released, holdID)
	return nil
}

type fakePayments struct {
	mu          sync.Mutex
	transaction *domain.PaymentTransaction
	refunded    []string
}

func (p *fakePayments) CheckStatus(_ context.Context, transactionID string) (*domain.PaymentTransaction, error) {
	copied := *p.transaction
	return &copied, nil
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
	outbox   *fakeOutboxRepo
	ledger   *fakeLedger
	payments *fakePayments
	txID     string
	holdID   string
}

func newFixture(paymentStatus domain.PaymentStatus) *fixture {
	txID := uuid.NewString()
	holdID := uuid.NewString()

	slot := &domain.AvailabilitySlot{
		ID:             1,
		ProfessionalID: 10,
		CourseID:       20,
		Date:           time.Date(2026, 4, 18, 0, 0, 0, 0, time.UTC),
		StartTime:      types.TimeString("10:00"),
		MaxPlayers:     4,
		PricePerPlayer: 5000,
		Currency:       "EUR",
	}

	ledgerFake := &fakeLedger{
		slot: slot,
		holds: map[string]*domain.ReservationHold{
			holdID: {ID: holdID, SlotID: 1, Players: 2, Status: domain.HoldStatusActive},
		},
	}

	paymentsFake := &fakePayments{
		transaction: &domain.PaymentTransaction{
			ID:          txID,
			HoldID:      holdID,
			SlotID:      1,
			AmateurID:   100,
			AmountMinor: 10000,
			Currency:    "EUR",
			Status:      paymentStatus,
		},
	}

	bookingsFake := newFakeBookingRepo()
	outboxFake := &fakeOutboxRepo{}

	return &fixture{
		uc:       NewUseCase(bookingsFake, outboxFake, ledgerFake, paymentsFake, fakeTxManager{}, noopLogger{}),
		bookings: bookingsFake,
		outbox:   outboxFake,
		ledger:   ledgerFake,
		payments: paymentsFake,
		txID:     txID,
		holdID:   holdID,
	}
}

func TestUseCase_Execute_CreatesBooking(t *testing.T) {
	f := newFixture(domain.PaymentStatusSucceeded)

	resp, err := f.uc.Execute(context.Background(), &Request{AmateurID: 100, TransactionID: f.txID})
	require.NoError(t, err)
	require.NotNil(t, resp.Booking)
	assert.False(t, resp.AlreadyExisted)
	assert.Equal(t, string(domain.StatusPendingAdminValidation), resp.Booking.Status)
	assert.Equal(t, f.txID, resp.Booking.PaymentTransactionID)
	assert.Equal(t, 2, resp.Booking.Players)

	// Событие создано в той же транзакции
	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, domain.EventBookingPending, f.outbox.events[0].Type)
}

func TestUseCase_Execute_IdempotentRepeat(t *testing.T) {
	f := newFixture(domain.PaymentStatusSucceeded)

	first, err := f.uc.Execute(context.Background(), &Request{AmateurID: 100, TransactionID: f.txID})
	require.NoError(t, err)

	second, err := f.uc.Execute(context.Background(), &Request{AmateurID: 100, TransactionID: f.txID})
	require.NoError(t, err)

	assert.True(t, second.AlreadyExisted)
	assert.Equal(t, first.Booking.ID, second.Booking.ID)

	// Событие опубликовано один раз
	assert.Len(t, f.outbox.events, 1)
}

// racingBookingRepo прячет существующую запись от первого lookup,
// имитируя конкурента, создавшего бронирование между lookup и create
type racingBookingRepo struct {
	*fakeBookingRepo
	lookups int
}

func (r *racingBookingRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Booking, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return r.fakeBookingRepo.GetByTransactionID(ctx, transactionID)
}

func TestUseCase_Execute_DuplicateRace(t *testing.T) {
	f := newFixture(domain.PaymentStatusSucceeded)

	pre := &domain.Booking{
		AmateurID:            100,
		PaymentTransactionID: f.txID,
		HoldID:               f.holdID,
		Status:               domain.StatusPendingAdminValidation,
		LessonDate:           time.Date(2026, 4, 18, 0, 0, 0, 0, time.UTC),
		StartTime:            types.TimeString("10:00"),
	}
	_, err := f.bookings.Create(context.Background(), pre)
	require.NoError(t, err)

	racing := &racingBookingRepo{fakeBookingRepo: f.bookings}
	uc := NewUseCase(racing, f.outbox, f.ledger, f.payments, fakeTxManager{}, noopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{AmateurID: 100, TransactionID: f.txID})
	require.NoError(t, err)
	assert.True(t, resp.AlreadyExisted)

	// Второе бронирование не создано, событие не продублировано
	assert.Equal(t, int64(2), f.bookings.nextID)
	assert.Empty(t, f.outbox.events)
}

func TestUseCase_Execute_PaymentNotConfirmed(t *testing.T) {
	f := newFixture(domain.PaymentStatusRequiresConfirmation)

	_, err := f.uc.Execute(context.Background(), &Request{AmateurID: 100, TransactionID: f.txID})
	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)

	// Hold сохранен для повторной попытки
	assert.Empty(t, f.ledger.released)
}

func TestUseCase_Execute_PaymentFailedReleasesHold(t *testing.T) {
	f := newFixture(domain.PaymentStatusFailed)

	_, err := f.uc.Execute(context.Background(), &Request{AmateurID: 100, TransactionID: f.txID})
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.Equal(t, []string{f.holdID}, f.ledger.released)
}

func TestUseCase_Execute_AccessDenied(t *testing.T) {
	f := newFixture(domain.PaymentStatusSucceeded)

	_, err := f.uc.Execute(context.Background(), &Request{AmateurID: 999, TransactionID: f.txID})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestUseCase_Execute_ExpiredHoldReReserved(t *testing.T) {
	f := newFixture(domain.PaymentStatusSucceeded)

	// Sweeper освободил hold, пока шла оплата
	f.ledger.holds[f.holdID].Status = domain.HoldStatusReleased

	resp, err := f.uc.Execute(context.Background(), &Request{AmateurID: 100, TransactionID: f.txID})
	require.NoError(t, err)
	require.NotNil(t, resp.Booking)

	// Бронирование привязано к новому hold'у, не к освобожденному
	created, err := f.bookings.GetByTransactionID(context.Background(), f.txID)
	require.NoError(t, err)
	assert.NotEqual(t, f.holdID, created.HoldID)
	assert.NotEmpty(t, created.HoldID)
}

func TestUseCase_Execute_SlotGoneRefunds(t *testing.T) {
	f := newFixture(domain.PaymentStatusSucceeded)

	f.ledger.holds[f.holdID].Status = domain.HoldStatusReleased
	f.ledger.reserveErr = ledger.ErrSlotUnavailable

	_, err := f.uc.Execute(context.Background(), &Request{AmateurID: 100, TransactionID: f.txID})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Платеж возвращен целиком
	assert.Equal(t, []string{f.txID}, f.payments.refunded)
}

func TestUseCase_Execute_InvalidInput(t *testing.T) {
	f := newFixture(domain.PaymentStatusSucceeded)

	_, err := f.uc.Execute(context.Background(), &Request{AmateurID: 100, TransactionID: "not-a-uuid"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{AmateurID: 0, TransactionID: f.txID})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
