package catalog

import "errors"

var (
	ErrInvalidService = errors.New("invalid service")
	ErrNotFound       = errors.New("service not found")
)
