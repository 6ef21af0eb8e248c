package stripeproc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
)

// Logger интерфейс логгера
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client обертка над API платежного процессора (Stripe)
// API-ключ устанавливается глобально при старте сервиса (stripe.Key)
type Client struct {
	log Logger
}

// NewClient создает новый экземпляр клиента процессора
func NewClient(apiKey string, log Logger) *Client {
	stripe.Key = apiKey
	return &Client{log: log}
}

// CreateIntent создает платежную транзакцию у процессора
// CorrelationID используется как idempotency key: повторный вызов с тем же
// id вернет уже созданную транзакцию, а не создаст дубликат
func (c *Client) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	piParams := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(params.AmountMinor),
		Currency:    stripe.String(params.Currency),
		Description: stripe.String(params.Description),
	}
	piParams.Context = ctx
	piParams.SetIdempotencyKey(params.CorrelationID)
	piParams.AddMetadata("correlation_id", params.CorrelationID)

	pi, err := paymentintent.New(piParams)
	if err != nil {
		return nil, c.mapError("CreateIntent", err)
	}

	c.log.Info("Created payment intent %s for correlation_id=%s, amount=%d %s",
		pi.ID, params.CorrelationID, params.AmountMinor, params.Currency)

	return intentFromStripe(pi), nil
}

// GetIntent запрашивает актуальное состояние транзакции у процессора
// Это авторитетный источник статуса платежа: локальная запись лишь кэширует его
func (c *Client) GetIntent(ctx context.Context, providerTxID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(providerTxID, params)
	if err != nil {
		return nil, c.mapError("GetIntent", err)
	}

	return intentFromStripe(pi), nil
}

// CancelIntent отменяет незавершенную транзакцию у процессора
// Отмена уже отмененной транзакции - no-op
func (c *Client) CancelIntent(ctx context.Context, providerTxID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	_, err := paymentintent.Cancel(providerTxID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeInvalidRequest {
			// Транзакция уже в терминальном статусе - отменять нечего
			c.log.Warn("CancelIntent: intent %s already terminal: %v", providerTxID, err)
			return nil
		}
		return c.mapError("CancelIntent", err)
	}

	c.log.Info("Canceled payment intent %s", providerTxID)
	return nil
}

// Refund запрашивает возврат средств по успешной транзакции
// amountMinor - сумма возврата в минимальных единицах валюты (частичный возврат),
// idempotencyKey защищает от двойного возврата при повторе запроса
func (c *Client) Refund(ctx context.Context, providerTxID string, amountMinor int64, idempotencyKey string) (*RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(providerTxID),
		Amount:        stripe.Int64(amountMinor),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	ref, err := refund.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			switch stripeErr.Code {
			case stripe.ErrorCodeChargeAlreadyRefunded:
				return nil, ErrAlreadyRefunded
			case stripe.ErrorCodePaymentIntentUnexpectedState:
				return nil, ErrTransactionNotSucceeded
			}
		}
		return nil, c.mapError("Refund", err)
	}

	c.log.Info("Refunded %d on intent %s, refund_id=%s, status=%s",
		amountMinor, providerTxID, ref.ID, ref.Status)

	return &RefundResult{
		RefundID:    ref.ID,
		AmountMinor: ref.Amount,
		Succeeded:   ref.Status == stripe.RefundStatusSucceeded || ref.Status == stripe.RefundStatusPending,
	}, nil
}

// mapError переводит ошибки процессора в ошибки пакета
func (c *Client) mapError(op string, err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		// Сетевые ошибки, таймауты - процессор недоступен, можно повторить
		return fmt.Errorf("%w: %s - %v", ErrProcessorUnavailable, op, err)
	}

	switch {
	case stripeErr.HTTPStatusCode == http.StatusNotFound,
		stripeErr.Code == stripe.ErrorCodeResourceMissing:
		return fmt.Errorf("%w: %s - %v", ErrIntentNotFound, op, err)
	case stripeErr.Type == stripe.ErrorTypeCard:
		return fmt.Errorf("%w: %s - %v", ErrPaymentDeclined, op, err)
	case stripeErr.HTTPStatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s - %v", ErrProcessorUnavailable, op, err)
	case stripeErr.Type == stripe.ErrorTypeInvalidRequest:
		return fmt.Errorf("%w: %s - %v", ErrInvalidRequest, op, err)
	default:
		return fmt.Errorf("%w: %s - %v", ErrProcessorUnavailable, op, err)
	}
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ProviderTxID: pi.ID,
		Status:       mapIntentStatus(pi.Status),
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
	}
}
