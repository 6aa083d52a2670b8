package domain

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrStoreFailure   = errors.New("store failure")
	ErrPaymentFailure = errors.New("payment failure")
	ErrUnavailable    = errors.New("service unavailable")
)
