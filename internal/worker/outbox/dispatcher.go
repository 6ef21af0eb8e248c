package outbox

import (
	"context"
	"time"

	"github.com/fairwaylabs/GLM-BookingService/pkg/metrics"
)

const (
	defaultInterval  = 5 * time.Second
	defaultBatchSize = 100
)

// Dispatcher публикует записи outbox в exchange
// События создаются в транзакции со сменой статуса бронирования,
// диспетчер доставляет их после фиксации. Доставка at-least-once:
// при сбое между publish и MarkDispatched событие уйдет повторно,
// потребители должны быть идемпотентны по id события.
type Dispatcher struct {
	outboxRepo OutboxRepository
	publisher  EventPublisher
	collector  *metrics.Metrics
	interval   time.Duration
	batchSize  uint64
	logger     Logger
}

func NewDispatcher(
	outboxRepo OutboxRepository,
	publisher EventPublisher,
	collector *metrics.Metrics,
	interval time.Duration,
	batchSize uint64,
	logger Logger,
) *Dispatcher {
	if interval <= 0 {
		interval = defaultInterval
	}
	if batchSize == 0 {
		batchSize = defaultBatchSize
	}
	return &Dispatcher{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		collector:  collector,
		interval:   interval,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// Run крутит цикл публикации до отмены контекста
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("outbox dispatcher started: interval=%s, batch_size=%d", d.interval, d.batchSize)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher stopped")
			return
		case <-ticker.C:
			if err := d.dispatchBatch(ctx); err != nil {
				d.logger.Error("outbox dispatcher: batch failed: %v", err)
			}
		}
	}
}

func (d *Dispatcher) dispatchBatch(ctx context.Context) error {
	events, err := d.outboxRepo.ListPending(ctx, d.batchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		routingKey := string(event.Type)

		if err := d.publisher.PublishRaw(ctx, routingKey, event.Payload); err != nil {
			// Порядок внутри бронирования важен, батч прерывается на первом сбое
			d.logger.Error("outbox dispatcher: publish failed: event_id=%d, type=%s, error=%v",
				event.ID, event.Type, err)
			d.incPublished(routingKey, "error")
			return err
		}

		if err := d.outboxRepo.MarkDispatched(ctx, event.ID); err != nil {
			d.logger.Error("outbox dispatcher: mark dispatched failed: event_id=%d, error=%v", event.ID, err)
			return err
		}

		d.incPublished(routingKey, "ok")
	}

	if len(events) > 0 {
		d.logger.Info("outbox dispatcher: batch published: count=%d", len(events))
	}
	return nil
}

func (d *Dispatcher) incPublished(eventType, status string) {
	if d.collector == nil {
		return
	}
	d.collector.OutboxPublishedTotal.WithLabelValues(eventType, status).Inc()
}
