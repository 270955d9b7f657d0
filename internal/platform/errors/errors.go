package apperrors

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrParse              = errors.New("parse error")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrWorkspaceMissing   = errors.New("coach directory not found, run `coach init` first")
)
