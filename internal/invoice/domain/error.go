package domain

import "errors"

var (
	ErrNotFound        = errors.New("invoice_not_found")
	ErrProductNotFound = errors.New("invoice_product_not_found")
	ErrNoItems         = errors.New("invoice_items_required")
	ErrInvalidQuantity = errors.New("invoice_item_quantity_invalid")
	ErrInvalidAmount   = errors.New("payment_amount_invalid")
	ErrExceedsBalance  = errors.New("payment_exceeds_balance")
	ErrOriginalPaid    = errors.New("return_original_fully_paid")
	ErrReturnOfReturn  = errors.New("return_against_return_invoice")
	ErrNotOnInvoice    = errors.New("return_product_not_on_invoice")
	ErrReturnTooLarge  = errors.New("return_quantity_exceeds_sold")
	ErrHasPayments     = errors.New("invoice_has_payments")
	ErrNumberConflict  = errors.New("invoice_number_conflict")
)
