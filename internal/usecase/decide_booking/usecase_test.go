package decide_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	bookingRepo "github.com/fairwaylabs/GLM-BookingService/internal/infra/storage/booking"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/payments"
	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// fakeBookingRepo применяет решения условным переходом статуса
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

func (r *fakeBookingRepo) ApplyDecision(_ context.Context, id int64, from, to domain.BookingStatus, notes *string, proposedDate *time.Time, proposedStartTime *types.TimeString) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.booking == nil || r.booking.ID != id {
		return bookingRepo.ErrBookingNotFound
	}
	if r.booking.Status != from {
		return bookingRepo.ErrStatusConflict
	}
	r.booking.Status = to
	r.booking.AdminNotes = notes
	r.booking.ProposedDate = proposedDate
	r.booking.ProposedStartTime = proposedStartTime
	return nil
}

type fakeSlotRepo struct {
	mu        sync.Mutex
	committed []string
	released  []string
}

func (r *fakeSlotRepo) CommitHold(_ context.Context, holdID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, holdID)
	return nil
}

func (r *fakeSlotRepo) ReleaseHold(_ context.Context, holdID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = append(r.released, holdID)
	return nil
}

type fakeValidationRepo struct {
	mu      sync.Mutex
	records []*domain.AdminValidationRecord
}

func (r *fakeValidationRepo) Create(_ context.Context, rec *domain.AdminValidationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
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

type fakePayments struct {
	mu              sync.Mutex
	amounts         map[string]int64 // transactionID -> захваченная сумма
	refunded        []string
	refundedAmounts []int64
	refundErr       error
}

// Refund воспроизводит семантику оркестратора: amountMinor <= 0
// означает полный возврат захваченной суммы
func (p *fakePayments) Refund(_ context.Context, transactionID string, amountMinor int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refundErr != nil {
		return p.refundErr
	}
	if amountMinor <= 0 {
		amountMinor = p.amounts[transactionID]
	}
	p.refunded = append(p.refunded, transactionID)
	p.refundedAmounts = append(p.refundedAmounts, amountMinor)
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
	uc         *UseCase
	bookings   *fakeBookingRepo
	slots      *fakeSlotRepo
	validation *fakeValidationRepo
	outbox     *fakeOutboxRepo
	payments   *fakePayments
}

func newFixture() *fixture {
	bookings := &fakeBookingRepo{
		booking: &domain.Booking{
			ID:                   1,
			AmateurID:            100,
			ProfessionalID:       10,
			SlotID:               5,
			HoldID:               "hold-1",
			PaymentTransactionID: "tx-1",
			PaymentStatus:        domain.PaymentStatusSucceeded,
			AmountMinor:          10000,
			Currency:             "EUR",
			Status:               domain.StatusPendingAdminValidation,
			LessonDate:           time.Date(2026, 4, 18, 0, 0, 0, 0, time.UTC),
			StartTime:            types.TimeString("10:00"),
		},
	}
	slots := &fakeSlotRepo{}
	validation := &fakeValidationRepo{}
	outbox := &fakeOutboxRepo{}
	paymentsFake := &fakePayments{amounts: map[string]int64{"tx-1": 10000}}

	return &fixture{
		uc:         NewUseCase(bookings, slots, validation, outbox, paymentsFake, fakeTxManager{}, noopLogger{}),
		bookings:   bookings,
		slots:      slots,
		validation: validation,
		outbox:     outbox,
		payments:   paymentsFake,
	}
}

func TestUseCase_Execute_Confirm(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), &Request{
		AdminID:   1,
		BookingID: 1,
		Decision:  string(domain.DecisionConfirm),
		Notes:     "see you on the green",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Booking.Status)
	assert.False(t, resp.RefundPending)

	assert.Equal(t, []string{"hold-1"}, f.slots.committed)
	assert.Empty(t, f.slots.released)
	assert.Empty(t, f.payments.refunded)

	require.Len(t, f.validation.records, 1)
	assert.Equal(t, domain.DecisionConfirm, f.validation.records[0].Decision)

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, domain.EventBookingConfirmed, f.outbox.events[0].Type)
}

func TestUseCase_Execute_Reject(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), &Request{
		AdminID:   1,
		BookingID: 1,
		Decision:  string(domain.DecisionReject),
		Notes:     "course closed for maintenance",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRejected), resp.Booking.Status)
	assert.False(t, resp.RefundPending)

	// Места освобождены, платеж возвращен целиком: ровно сумма бронирования
	assert.Equal(t, []string{"hold-1"}, f.slots.released)
	assert.Equal(t, []string{"tx-1"}, f.payments.refunded)
	assert.Equal(t, []int64{f.bookings.booking.AmountMinor}, f.payments.refundedAmounts)

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, domain.EventBookingRejected, f.outbox.events[0].Type)
}

func TestUseCase_Execute_RejectRequiresNotes(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{
		AdminID:   1,
		BookingID: 1,
		Decision:  string(domain.DecisionReject),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUseCase_Execute_RejectRefundFailureKeepsRejection(t *testing.T) {
	f := newFixture()
	f.payments.refundErr = payments.ErrRefundFailed

	resp, err := f.uc.Execute(context.Background(), &Request{
		AdminID:   1,
		BookingID: 1,
		Decision:  string(domain.DecisionReject),
		Notes:     "course closed",
	})
	require.NoError(t, err)

	// Отклонение не откатывается, возврат уйдет в повтор
	assert.Equal(t, string(domain.StatusRejected), resp.Booking.Status)
	assert.True(t, resp.RefundPending)
}

func TestUseCase_Execute_ProposeAlternative(t *testing.T) {
	f := newFixture()

	altDate := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	altTime := types.TimeString("14:00")

	resp, err := f.uc.Execute(context.Background(), &Request{
		AdminID:              1,
		BookingID:            1,
		Decision:             string(domain.DecisionProposeAlternative),
		AlternativeDate:      &altDate,
		AlternativeStartTime: &altTime,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusAlternativeProposed), resp.Booking.Status)
	require.NotNil(t, resp.Booking.ProposedDate)
	assert.Equal(t, "2026-04-20", *resp.Booking.ProposedDate)

	// Исходные места освобождены сразу, деньги остаются до ответа любителя
	assert.Equal(t, []string{"hold-1"}, f.slots.released)
	assert.Empty(t, f.payments.refunded)

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, domain.EventAlternativeOffered, f.outbox.events[0].Type)
}

func TestUseCase_Execute_ProposeAlternativeRequiresDateAndTime(t *testing.T) {
	f := newFixture()

	altDate := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	_, err := f.uc.Execute(context.Background(), &Request{
		AdminID:         1,
		BookingID:       1,
		Decision:        string(domain.DecisionProposeAlternative),
		AlternativeDate: &altDate,
	})
	assert.ErrorIs(t, err, ErrAlternativeRequired)
}

func TestUseCase_Execute_AlreadyDecided(t *testing.T) {
	f := newFixture()
	f.bookings.booking.Status = domain.StatusConfirmed

	_, err := f.uc.Execute(context.Background(), &Request{
		AdminID:   2,
		BookingID: 1,
		Decision:  string(domain.DecisionReject),
		Notes:     "too late",
	})
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	// Статус первого решения не перезаписан
	assert.Equal(t, domain.StatusConfirmed, f.bookings.booking.Status)
}

func TestUseCase_Execute_ConcurrentDecisionLosesRace(t *testing.T) {
	f := newFixture()

	// Конкурент перевел бронирование между чтением и ApplyDecision
	racing := &racingBookingRepo{inner: f.bookings}
	uc := NewUseCase(racing, f.slots, f.validation, f.outbox, f.payments, fakeTxManager{}, noopLogger{})

	_, err := uc.Execute(context.Background(), &Request{
		AdminID:   1,
		BookingID: 1,
		Decision:  string(domain.DecisionConfirm),
	})
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

// racingBookingRepo отдает pending при чтении, но проигрывает ApplyDecision
type racingBookingRepo struct {
	inner *fakeBookingRepo
}

func (r *racingBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Status = domain.StatusPendingAdminValidation
	return b, nil
}

func (r *racingBookingRepo) ApplyDecision(_ context.Context, _ int64, _, _ domain.BookingStatus, _ *string, _ *time.Time, _ *types.TimeString) error {
	return bookingRepo.ErrStatusConflict
}

func TestUseCase_Execute_InvalidDecision(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{
		AdminID:   1,
		BookingID: 1,
		Decision:  "postpone",
	})
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestUseCase_Execute_BookingNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{
		AdminID:   1,
		BookingID: 99,
		Decision:  string(domain.DecisionConfirm),
	})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
