package start_booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/ledger"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/payments"
	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// fakeLedger ведет счетчик занятых мест одного слота с семантикой
// условного обновления: reserve сверх вместимости не проходит
type fakeLedger struct {
	mu       sync.Mutex
	slot     domain.AvailabilitySlot
	nextHold int
	holds    map[string]int // holdID -> players
	released []string
}

func newFakeLedger(maxPlayers int) *fakeLedger {
	return &fakeLedger{
		slot: domain.AvailabilitySlot{
			ID:             1,
			ProfessionalID: 10,
			CourseID:       5,
			Date:           time.Date(2026, 4, 18, 0, 0, 0, 0, time.UTC),
			StartTime:      types.TimeString("10:00"),
			EndTime:        types.TimeString("11:00"),
			MaxPlayers:     maxPlayers,
			PricePerPlayer: 5000,
			Currency:       "EUR",
		},
		holds: make(map[string]int),
	}
}

func (l *fakeLedger) GetSlot(_ context.Context, slotID int64) (*domain.AvailabilitySlot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if slotID != l.slot.ID {
		return nil, ledger.ErrSlotNotFound
	}
	cp := l.slot
	return &cp, nil
}

func (l *fakeLedger) Reserve(_ context.Context, slotID int64, players int) (*domain.ReservationHold, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if slotID != l.slot.ID {
		return nil, ledger.ErrSlotNotFound
	}
	if !l.slot.CanFit(players) {
		return nil, ledger.ErrSlotUnavailable
	}
	l.slot.CurrentBookings += players
	l.nextHold++
	holdID := fmt.Sprintf("hold-%d", l.nextHold)
	l.holds[holdID] = players
	return &domain.ReservationHold{
		ID:        holdID,
		SlotID:    slotID,
		Players:   players,
		Status:    domain.HoldStatusActive,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func (l *fakeLedger) Release(_ context.Context, holdID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	players, ok := l.holds[holdID]
	if !ok {
		return ledger.ErrHoldNotFound
	}
	delete(l.holds, holdID)
	l.slot.CurrentBookings -= players
	l.released = append(l.released, holdID)
	return nil
}

// fakePayments программируемый платежный оркестратор
type fakePayments struct {
	mu        sync.Mutex
	nextTx    int
	createErr error
	// onCreate выполняется внутри CreateTransaction до возврата ошибки:
	// позволяет смоделировать конкурента, пришедшего пока платеж открывался
	onCreate func()
}

func (p *fakePayments) CreateTransaction(_ context.Context, params payments.CreateTransactionParams) (*domain.PaymentTransaction, error) {
	p.mu.Lock()
	hook := p.onCreate
	p.onCreate = nil
	p.mu.Unlock()

	if hook != nil {
		hook()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		err := p.createErr
		p.createErr = nil
		return nil, err
	}
	p.nextTx++
	id := fmt.Sprintf("tx-%d", p.nextTx)
	return &domain.PaymentTransaction{
		ID:           id,
		ProviderTxID: "pi_" + id,
		ClientSecret: "cs_" + id,
		HoldID:       params.HoldID,
		SlotID:       params.SlotID,
		AmateurID:    params.AmateurID,
		AmountMinor:  params.AmountMinor,
		Currency:     params.Currency,
		Status:       domain.PaymentStatusRequiresConfirmation,
	}, nil
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func newRequest(players int) *Request {
	return &Request{
		AmateurID: 100,
		SlotID:    1,
		Players:   players,
	}
}

func TestUseCase_Execute(t *testing.T) {
	ledgerSvc := newFakeLedger(4)
	pays := &fakePayments{}
	uc := NewUseCase(ledgerSvc, pays, noopLogger{})

	resp, err := uc.Execute(context.Background(), newRequest(2))
	require.NoError(t, err)

	assert.Equal(t, "hold-1", resp.HoldID)
	assert.Equal(t, "tx-1", resp.TransactionID)
	// Без client secret любитель не сможет завершить платеж
	assert.Equal(t, "cs_tx-1", resp.ClientSecret)
	assert.Equal(t, int64(10000), resp.AmountMinor)
	assert.Equal(t, "EUR", resp.Currency)
	assert.False(t, resp.ExpiresAt.IsZero())
	assert.Equal(t, 2, ledgerSvc.slot.CurrentBookings)
}

// Слот на 2 места: A резервирует оба, B получает отказ, платеж A
// не открывается - места возвращаются, повтор B проходит
func TestUseCase_Execute_SeatsFreedForNextAmateurAfterPaymentFailure(t *testing.T) {
	ledgerSvc := newFakeLedger(2)
	pays := &fakePayments{createErr: payments.ErrProcessorUnavailable}
	uc := NewUseCase(ledgerSvc, pays, noopLogger{})

	requestB := &Request{AmateurID: 200, SlotID: 1, Players: 2}

	// B приходит, пока у A открывается платеж: места держит hold A
	var errB error
	pays.onCreate = func() {
		_, errB = uc.Execute(context.Background(), requestB)
	}

	_, errA := uc.Execute(context.Background(), newRequest(2))
	assert.ErrorIs(t, errA, ErrPaymentUnavailable)
	assert.ErrorIs(t, errB, ErrSlotUnavailable)

	// Компенсирующий release вернул оба места
	assert.Equal(t, []string{"hold-1"}, ledgerSvc.released)
	assert.Equal(t, 0, ledgerSvc.slot.CurrentBookings)

	// Повтор B теперь проходит
	resp, err := uc.Execute(context.Background(), requestB)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Players)
	assert.NotEmpty(t, resp.ClientSecret)
	assert.Equal(t, 2, ledgerSvc.slot.CurrentBookings)
}

func TestUseCase_Execute_SlotFull(t *testing.T) {
	ledgerSvc := newFakeLedger(2)
	ledgerSvc.slot.CurrentBookings = 1
	uc := NewUseCase(ledgerSvc, &fakePayments{}, noopLogger{})

	_, err := uc.Execute(context.Background(), newRequest(2))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestUseCase_Execute_InvalidPlayers(t *testing.T) {
	uc := NewUseCase(newFakeLedger(4), &fakePayments{}, noopLogger{})

	_, err := uc.Execute(context.Background(), newRequest(0))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), newRequest(domain.MaxPlayersPerBooking+1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUseCase_Execute_SlotNotFound(t *testing.T) {
	uc := NewUseCase(newFakeLedger(4), &fakePayments{}, noopLogger{})

	req := newRequest(2)
	req.SlotID = 42
	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}
