package domain

import "time"

// PaymentStatus represents the status of a payment transaction,
// mirroring the processor's authoritative state
type PaymentStatus string

const (
	PaymentStatusCreated              PaymentStatus = "created"
	PaymentStatusRequiresConfirmation PaymentStatus = "requires_confirmation"
	PaymentStatusSucceeded            PaymentStatus = "succeeded"
	PaymentStatusFailed               PaymentStatus = "failed"
	PaymentStatusCanceled             PaymentStatus = "canceled"
)

// IsTerminal returns true once the transaction can no longer change status.
// A succeeded transaction can still be refunded afterwards, but the refund
// produces its own record and never reopens the transaction.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSucceeded || s == PaymentStatusFailed || s == PaymentStatusCanceled
}

// PaymentTransaction correlates exactly one payment processor transaction to
// one booking attempt. ID is the local correlation id (uuid); ProviderTxID is
// assigned by the processor.
type PaymentTransaction struct {
	ID           string
	ProviderTxID string

	// ClientSecret is handed to the amateur's client to complete the payment
	// with the processor. Persisted so a retried start returns the same secret.
	ClientSecret string

	HoldID         string
	SlotID         int64
	AmateurID      int64
	ProfessionalID int64
	AmountMinor    int64
	Currency       string
	Description    string
	Status         PaymentStatus

	// Refund bookkeeping. RefundPending is set when a refund attempt failed
	// and must be retried out-of-band by the sweeper.
	RefundedAmountMinor int64
	RefundPending       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRefundable returns true if a refund may still be issued
func (t *PaymentTransaction) IsRefundable() bool {
	return t.Status == PaymentStatusSucceeded && t.RefundedAmountMinor < t.AmountMinor
}

// RemainingRefundable returns the amount that can still be refunded
func (t *PaymentTransaction) RemainingRefundable() int64 {
	if t.Status != PaymentStatusSucceeded {
		return 0
	}
	return t.AmountMinor - t.RefundedAmountMinor
}
