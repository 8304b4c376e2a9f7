package service

import "errors"

var (
	// ErrValidation rejects a draft before anything is persisted. A message
	// that fails validation is never broadcast.
	ErrValidation = errors.New("validation failed")

	// ErrStoreUnavailable reports a persistence failure. Nothing was durably
	// created, so no broadcast occurs; the caller may retry.
	ErrStoreUnavailable = errors.New("message store unavailable")
)
