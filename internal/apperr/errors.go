package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrMalformedImport = errors.New("malformed import payload")
)
