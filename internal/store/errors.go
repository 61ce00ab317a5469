package store

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("record already exists")
	ErrAlreadyRevoked = errors.New("refresh token already revoked")
)
