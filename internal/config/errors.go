package config

import "errors"

var (
	ErrMissingBackendURL  = errors.New("BACKEND_URL must not be empty")
	ErrUnknownMediaDriver = errors.New("MEDIA_DRIVER must be cloudinary or minio")
)
