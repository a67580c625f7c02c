package repository

import "errors"

// ErrNotFound is returned when a row does not exist. Callers that must not
// leak detail translate it into their own uniform failure.
var ErrNotFound = errors.New("record not found")
