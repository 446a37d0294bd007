package storage

import "errors"

var (
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrTokenNotFound   = errors.New("access token not found")
	ErrCountryNotFound = errors.New("country not found")
	ErrSessionNotFound = errors.New("session not found")
)
