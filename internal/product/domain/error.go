package domain

import "errors"

var (
	ErrNotFound     = errors.New("product_not_found")
	ErrInvalidName  = errors.New("product_name_required")
	ErrInvalidUnit  = errors.New("product_unit_required")
	ErrInvalidPrice = errors.New("product_price_invalid")
)
