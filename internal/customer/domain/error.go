package domain

import "errors"

var (
	ErrNotFound    = errors.New("customer_not_found")
	ErrInvalidName = errors.New("customer_name_required")
)
