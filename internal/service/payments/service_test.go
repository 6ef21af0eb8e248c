package payments

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
	paymentRepo "github.com/fairwaylabs/GLM-BookingService/internal/infra/storage/payment"
	"github.com/fairwaylabs/GLM-BookingService/internal/integrations/stripeproc"
)

// fakeTxRepo хранит транзакции в памяти
type fakeTxRepo struct {
	mu           sync.Mutex
	transactions map[string]*domain.PaymentTransaction
}

func newFakeTxRepo() *fakeTxRepo {
	return &fakeTxRepo{transactions: make(map[string]*domain.PaymentTransaction)}
}

func (r *fakeTxRepo) Create(_ context.Context, t *domain.PaymentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *t
	r.transactions[t.ID] = &copied
	return nil
}

func (r *fakeTxRepo) GetByID(_ context.Context, id string) (*domain.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, paymentRepo.ErrTransactionNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTxRepo) GetPendingByHoldID(_ context.Context, holdID string) (*domain.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.HoldID == holdID && !t.Status.IsTerminal() {
			copied := *t
			return &copied, nil
		}
	}
	return nil, paymentRepo.ErrTransactionNotFound
}

func (r *fakeTxRepo) UpdateStatus(_ context.Context, id string, status domain.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return paymentRepo.ErrTransactionNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTxRepo) RecordRefund(_ context.Context, id string, refundedAmount int64, pending bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return paymentRepo.ErrTransactionNotFound
	}
	t.RefundedAmountMinor = refundedAmount
	t.RefundPending = pending
	return nil
}

func (r *fakeTxRepo) ListRefundPending(_ context.Context, limit uint64) ([]*domain.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PaymentTransaction
	for _, t := range r.transactions {
		if t.RefundPending {
			copied := *t
			out = append(out, &copied)
			if uint64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

// fakeProcessor программируемый клиент процессора
type fakeProcessor struct {
	mu sync.Mutex

	createCalls  int
	createFails  int // первые N вызовов CreateIntent падают с unavailable
	intentStatus domain.PaymentStatus

	getStatus domain.PaymentStatus

	refundCalls int
	refundErr   error
	refundKeys  []string

	canceled []string
}

func (p *fakeProcessor) CreateIntent(_ context.Context, params stripeproc.CreateIntentParams) (*stripeproc.Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createCalls++
	if p.createCalls <= p.createFails {
		return nil, stripeproc.ErrProcessorUnavailable
	}
	status := p.intentStatus
	if status == "" {
		status = domain.PaymentStatusRequiresConfirmation
	}
	return &stripeproc.Intent{
		ProviderTxID: fmt.Sprintf("pi_%s", params.CorrelationID),
		ClientSecret: fmt.Sprintf("cs_%s", params.CorrelationID),
		Status:       status,
		AmountMinor:  params.AmountMinor,
		Currency:     params.Currency,
	}, nil
}

func (p *fakeProcessor) GetIntent(_ context.Context, providerTxID string) (*stripeproc.Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &stripeproc.Intent{ProviderTxID: providerTxID, Status: p.getStatus}, nil
}

func (p *fakeProcessor) CancelIntent(_ context.Context, providerTxID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.canceled = append(p.canceled, providerTxID)
	return nil
}

func (p *fakeProcessor) Refund(_ context.Context, _ string, _ int64, idempotencyKey string) (*stripeproc.RefundResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refundCalls++
	p.refundKeys = append(p.refundKeys, idempotencyKey)
	if p.refundErr != nil {
		return nil, p.refundErr
	}
	return &stripeproc.RefundResult{}, nil
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func newTestService(repo *fakeTxRepo, proc *fakeProcessor) *Service {
	return NewService(repo, proc, 3, time.Millisecond, noopLogger{})
}

func createParams() CreateTransactionParams {
	return CreateTransactionParams{
		HoldID:         "hold-1",
		SlotID:         1,
		AmateurID:      100,
		ProfessionalID: 10,
		AmountMinor:    15000,
		Currency:       "EUR",
		Description:    "Golf lesson",
	}
}

func TestService_CreateTransaction(t *testing.T) {
	repo := newFakeTxRepo()
	proc := &fakeProcessor{}
	svc := newTestService(repo, proc)

	transaction, err := svc.CreateTransaction(context.Background(), createParams())
	require.NoError(t, err)
	assert.NotEmpty(t, transaction.ID)
	assert.Equal(t, "pi_"+transaction.ID, transaction.ProviderTxID)
	assert.Equal(t, domain.PaymentStatusRequiresConfirmation, transaction.Status)

	// Секрет процессора уходит вызывающей стороне: без него клиент
	// не сможет завершить платеж
	assert.Equal(t, "cs_"+transaction.ID, transaction.ClientSecret)

	stored, err := svc.GetTransaction(context.Background(), transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, transaction.ID, stored.ID)
	assert.Equal(t, transaction.ClientSecret, stored.ClientSecret)
}

func TestService_CreateTransaction_ReusesPending(t *testing.T) {
	repo := newFakeTxRepo()
	proc := &fakeProcessor{}
	svc := newTestService(repo, proc)

	first, err := svc.CreateTransaction(context.Background(), createParams())
	require.NoError(t, err)

	second, err := svc.CreateTransaction(context.Background(), createParams())
	require.NoError(t, err)

	// Повтор для того же hold'а не открывает второй платеж
	// и возвращает тот же сохраненный client secret
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ClientSecret, second.ClientSecret)
	assert.NotEmpty(t, second.ClientSecret)
	assert.Equal(t, 1, proc.createCalls)
}

func TestService_CreateTransaction_RetriesUnavailable(t *testing.T) {
	repo := newFakeTxRepo()
	proc := &fakeProcessor{createFails: 2}
	svc := newTestService(repo, proc)

	transaction, err := svc.CreateTransaction(context.Background(), createParams())
	require.NoError(t, err)
	assert.NotEmpty(t, transaction.ID)
	assert.Equal(t, 3, proc.createCalls)
}

func TestService_CreateTransaction_UnavailableAfterRetries(t *testing.T) {
	repo := newFakeTxRepo()
	proc := &fakeProcessor{createFails: 10}
	svc := newTestService(repo, proc)

	_, err := svc.CreateTransaction(context.Background(), createParams())
	assert.ErrorIs(t, err, ErrProcessorUnavailable)
	assert.Equal(t, 3, proc.createCalls)
}

func TestService_CreateTransaction_InvalidAmount(t *testing.T) {
	svc := newTestService(newFakeTxRepo(), &fakeProcessor{})

	params := createParams()
	params.AmountMinor = 0
	_, err := svc.CreateTransaction(context.Background(), params)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestService_CheckStatus_SyncsFromProcessor(t *testing.T) {
	repo := newFakeTxRepo()
	proc := &fakeProcessor{getStatus: domain.PaymentStatusSucceeded}
	svc := newTestService(repo, proc)

	transaction, err := svc.CreateTransaction(context.Background(), createParams())
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStatusRequiresConfirmation, transaction.Status)

	checked, err := svc.CheckStatus(context.Background(), transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSucceeded, checked.Status)

	// Локальная запись обновлена
	stored, err := svc.GetTransaction(context.Background(), transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSucceeded, stored.Status)
}

func TestService_CheckStatus_TerminalSkipsProcessor(t *testing.T) {
	repo := newFakeTxRepo()
	require.NoError(t, repo.Create(context.Background(), &domain.PaymentTransaction{
		ID:     "tx-1",
		Status: domain.PaymentStatusSucceeded,
	}))
	proc := &fakeProcessor{getStatus: domain.PaymentStatusFailed}
	svc := newTestService(repo, proc)

	checked, err := svc.CheckStatus(context.Background(), "tx-1")
	require.NoError(t, err)
	// Терминальный статус не пересверяется и не перезаписывается
	assert.Equal(t, domain.PaymentStatusSucceeded, checked.Status)
}

func TestService_CancelTransaction(t *testing.T) {
	repo := newFakeTxRepo()
	proc := &fakeProcessor{}
	svc := newTestService(repo, proc)

	transaction, err := svc.CreateTransaction(context.Background(), createParams())
	require.NoError(t, err)

	require.NoError(t, svc.CancelTransaction(context.Background(), transaction.ID))

	stored, err := svc.GetTransaction(context.Background(), transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCanceled, stored.Status)
	assert.Contains(t, proc.canceled, transaction.ProviderTxID)

	// Повторная отмена - no-op
	require.NoError(t, svc.CancelTransaction(context.Background(), transaction.ID))
	assert.Len(t, proc.canceled, 1)
}

func TestService_CancelPendingForHold(t *testing.T) {
	repo := newFakeTxRepo()
	proc := &fakeProcessor{}
	svc := newTestService(repo, proc)

	transaction, err := svc.CreateTransaction(context.Background(), createParams())
	require.NoError(t, err)

	require.NoError(t, svc.CancelPendingForHold(context.Background(), "hold-1"))
	stored, err := svc.GetTransaction(context.Background(), transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCanceled, stored.Status)

	// Hold без незавершенной транзакции - no-op
	require.NoError(t, svc.CancelPendingForHold(context.Background(), "hold-unknown"))
}

func succeededTx(id string, amount int64) *domain.PaymentTransaction {
	return &domain.PaymentTransaction{
		ID:           id,
		ProviderTxID: "pi_" + id,
		HoldID:       "hold-" + id,
		AmountMinor:  amount,
		Currency:     "EUR",
		Status:       domain.PaymentStatusSucceeded,
	}
}

func TestService_Refund_Full(t *testing.T) {
	repo := newFakeTxRepo()
	require.NoError(t, repo.Create(context.Background(), succeededTx("tx-1", 15000)))
	proc := &fakeProcessor{}
	svc := newTestService(repo, proc)

	require.NoError(t, svc.Refund(context.Background(), "tx-1", 0))

	stored, err := svc.GetTransaction(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), stored.RefundedAmountMinor)
	assert.False(t, stored.RefundPending)
	assert.Equal(t, []string{"refund-tx-1-0"}, proc.refundKeys)
}

func TestService_Refund_Partial(t *testing.T) {
	repo := newFakeTxRepo()
	require.NoError(t, repo.Create(context.Background(), succeededTx("tx-1", 15000)))
	proc := &fakeProcessor{}
	svc := newTestService(repo, proc)

	require.NoError(t, svc.Refund(context.Background(), "tx-1", 5000))
	require.NoError(t, svc.Refund(context.Background(), "tx-1", 0))

	stored, err := svc.GetTransaction(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), stored.RefundedAmountMinor)

	// Ключ идемпотентности меняется вместе с уже возвращенной суммой
	assert.Equal(t, []string{"refund-tx-1-0", "refund-tx-1-5000"}, proc.refundKeys)
}

func TestService_Refund_NotSucceeded(t *testing.T) {
	repo := newFakeTxRepo()
	require.NoError(t, repo.Create(context.Background(), &domain.PaymentTransaction{
		ID:          "tx-1",
		AmountMinor: 15000,
		Status:      domain.PaymentStatusRequiresConfirmation,
	}))
	svc := newTestService(repo, &fakeProcessor{})

	err := svc.Refund(context.Background(), "tx-1", 0)
	assert.ErrorIs(t, err, ErrNotRefundable)
}

func TestService_Refund_AlreadyRefundedAtProcessor(t *testing.T) {
	repo := newFakeTxRepo()
	require.NoError(t, repo.Create(context.Background(), succeededTx("tx-1", 15000)))
	proc := &fakeProcessor{refundErr: stripeproc.ErrAlreadyRefunded}
	svc := newTestService(repo, proc)

	// Локальная запись догоняет состояние процессора, ошибки нет
	require.NoError(t, svc.Refund(context.Background(), "tx-1", 0))

	stored, err := svc.GetTransaction(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), stored.RefundedAmountMinor)
}

func TestService_Refund_FailureMarksPending(t *testing.T) {
	repo := newFakeTxRepo()
	require.NoError(t, repo.Create(context.Background(), succeededTx("tx-1", 15000)))
	proc := &fakeProcessor{refundErr: stripeproc.ErrProcessorUnavailable}
	svc := newTestService(repo, proc)

	err := svc.Refund(context.Background(), "tx-1", 0)
	assert.ErrorIs(t, err, ErrRefundFailed)

	stored, getErr := svc.GetTransaction(context.Background(), "tx-1")
	require.NoError(t, getErr)
	assert.True(t, stored.RefundPending)
	assert.Equal(t, int64(0), stored.RefundedAmountMinor)
}

func TestService_RetryPendingRefunds(t *testing.T) {
	repo := newFakeTxRepo()
	tx := succeededTx("tx-1", 15000)
	tx.RefundPending = true
	require.NoError(t, repo.Create(context.Background(), tx))

	proc := &fakeProcessor{}
	svc := newTestService(repo, proc)

	succeeded, err := svc.RetryPendingRefunds(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, succeeded)

	stored, err := svc.GetTransaction(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), stored.RefundedAmountMinor)
	assert.False(t, stored.RefundPending)
}
