package service

import "errors"

// Domain errors raised before any mutation; the HTTP layer maps them to
// 4xx responses. Infrastructure errors are wrapped with %w and bubble up as 500s.
var (
	ErrNotDraft             = errors.New("document is not in draft status")
	ErrAlreadyCancelled     = errors.New("document is already cancelled")
	ErrAlreadyConverted     = errors.New("document has already been converted")
	ErrAlreadyInvoiced      = errors.New("work order has already been invoiced; cancel the invoice first")
	ErrDocumentCancelled    = errors.New("document is cancelled")
	ErrBankNotFound         = errors.New("bank not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrNoCreditNote         = errors.New("cancellation has no credit note to refund")
	ErrRefundExceedsCredit  = errors.New("refund amount exceeds the remaining credit")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrNumberSpaceExhausted = errors.New("document number space exhausted for this partition")
)
