package store

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update would violate the
// uniqueness of username or email. The constraint lives in the database so
// that two concurrent writes cannot both succeed.
var ErrDuplicate = errors.New("duplicate identity")
