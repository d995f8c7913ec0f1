package scraper

import "errors"

var (
	// ErrFetch covers network errors, timeouts and non-2xx responses
	ErrFetch = errors.New("fetch failed")
	// ErrBlocked means the site answered with a bot wall or captcha
	ErrBlocked = errors.New("blocked by bot protection")
	// ErrNoMatch means no listing produced a validated candidate
	ErrNoMatch = errors.New("no matching listing")
)
