package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrUnsupportedImage = errors.New("unsupported or corrupt image")
	ErrStyleExtraction  = errors.New("style extraction failed")
	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrRateLimited      = errors.New("rate limited")
	ErrProviderFailure  = errors.New("provider failure")
)
