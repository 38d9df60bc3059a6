package media

import (
	"errors"
	"fmt"
)

var (
	ErrNoURL          = errors.New("upload response carried no url")
	ErrNotFound       = errors.New("media object not found")
	ErrUnavailable    = errors.New("media store not configured")
	ErrUploadRejected = errors.New("upload rejected by media host")
)

// UploadError is a non-2xx answer from the media host. It says nothing
// about the admin session, whatever the status.
type UploadError struct {
	Status int
	Body   string
}

func (e *UploadError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("media host returned %d", e.Status)
	}
	return fmt.Sprintf("media host returned %d: %s", e.Status, e.Body)
}

func (e *UploadError) Unwrap() error { return ErrUploadRejected }
