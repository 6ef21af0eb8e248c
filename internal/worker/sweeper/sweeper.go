package sweeper

import (
	"context"
	"time"

	"github.com/fairwaylabs/GLM-BookingService/pkg/metrics"
)

const (
	defaultInterval  = 30 * time.Second
	defaultBatchSize = 100
)

// Sweeper освобождает истекшие hold'ы и догоняет отложенные возвраты
// Истекший hold освобождается, привязанная к нему незавершенная платежная
// транзакция отменяется best-effort: если отмена не прошла, транзакция
// останется pending и истечет на стороне процессора сама.
type Sweeper struct {
	ledger    LedgerService
	payments  PaymentService
	collector *metrics.Metrics
	interval  time.Duration
	batchSize uint64
	logger    Logger
}

func New(
	ledger LedgerService,
	payments PaymentService,
	collector *metrics.Metrics,
	interval time.Duration,
	batchSize uint64,
	logger Logger,
) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	if batchSize == 0 {
		batchSize = defaultBatchSize
	}
	return &Sweeper{
		ledger:    ledger,
		payments:  payments,
		collector: collector,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run крутит цикл очистки до отмены контекста
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("hold sweeper started: interval=%s, batch_size=%d", s.interval, s.batchSize)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("hold sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	released, err := s.ledger.ReleaseExpired(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("hold sweeper: release expired failed: %v", err)
	}

	for _, hold := range released {
		if s.collector != nil {
			s.collector.HoldsReleasedTotal.WithLabelValues("expired").Inc()
		}
		if err := s.payments.CancelPendingForHold(ctx, hold.ID); err != nil {
			s.logger.Warn("hold sweeper: cancel pending transaction failed: hold_id=%s, error=%v",
				hold.ID, err)
		}
	}

	if len(released) > 0 {
		s.logger.Info("hold sweeper: expired holds released: count=%d", len(released))
	}

	retried, err := s.payments.RetryPendingRefunds(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("hold sweeper: retry pending refunds failed: %v", err)
	}
	if retried > 0 {
		s.logger.Info("hold sweeper: pending refunds completed: count=%d", retried)
	}
}
