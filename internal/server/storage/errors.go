package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that no matching token record exists
	ErrTokenNotFound = errors.New("token record not found")

	// ErrTokenConsumed indicates that the refresh token of a record was
	// already used or revoked by a concurrent operation
	ErrTokenConsumed = errors.New("refresh token already consumed")
)
