package models

import "errors"

// Storage errors returned by repositories
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrMissingReference  = errors.New("referenced record does not exist")
)
