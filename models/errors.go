package models

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrInvalidRole   = errors.New("invalid role")
	ErrInvalidUserID = errors.New("invalid user id")

	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// ErrStoreFailure marks an I/O failure of the credential store, as opposed to a clean miss.
var ErrStoreFailure = errors.New("credential store failure")
