package entity

import "errors"

// Domain errors for activity analytics
var (
	// Validation errors
	ErrUsernameRequired = errors.New("username is required")

	// Lookup errors
	ErrUserNotFound = errors.New("user not found")

	// Upstream errors
	ErrAuth                    = errors.New("reddit credential exchange failed")
	ErrPaginationLimitExceeded = errors.New("reddit listing exceeded the page limit")
	ErrUpstream                = errors.New("reddit API request failed")

	// Configuration errors
	ErrConfig = errors.New("invalid configuration")
)
