package services

import "errors"

// Failure taxonomy shared across services. Handlers map these onto
// user-visible messages; import row errors are tallied, never propagated.
var (
	ErrInsufficientBalance   = errors.New("insufficient star balance")
	ErrAlreadyCompletedToday = errors.New("task already completed today")
	ErrDuplicateImport       = errors.New("file already processed")
	ErrUserNotFound          = errors.New("user not found")
	ErrNegativeAmount        = errors.New("amount must be non-negative")
	ErrUpstreamAuth          = errors.New("upstream token exchange failed")
	ErrUpstreamFetch         = errors.New("upstream export fetch failed")
	ErrConfigurationMissing  = errors.New("importer configuration missing")
)
