package domain

import "errors"

var (
	ErrURLRequired      = errors.New("URL is required")
	ErrPageNotFound     = errors.New("page not found")
	ErrNoItems          = errors.New("no items returned from scraper")
	ErrContentTooShort  = errors.New("content too short to analyze")
	ErrInvalidAction    = errors.New("invalid action")
	ErrNoJobsAvailable  = errors.New("no jobs available")
	ErrStoreUnavailable = errors.New("record store unavailable")
)
