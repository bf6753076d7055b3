package transactions

import "errors"

var (
	ErrNotFound          = errors.New("transaction not found")
	ErrInvalidStatus     = errors.New("invalid transaction status")
	ErrInvalidTransition = errors.New("transaction status cannot move backwards or leave a final state")
	ErrInvalidPelunasan  = errors.New("invalid payment status")
	ErrCancelled         = errors.New("transaction is cancelled")
	ErrInvoiced          = errors.New("transaction is linked to an invoice")
	ErrOnVoyage          = errors.New("transaction is assigned to another voyage")
)
