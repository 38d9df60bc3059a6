package auth

import (
	"errors"

	"github.com/serenespa/admin-console/internal/refresh"
)

// Outcome is the session-level meaning of a backend call's result.
type Outcome int

const (
	Authenticated Outcome = iota
	Unauthenticated
	RefreshFailed
)

func (o Outcome) String() string {
	switch o {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	case RefreshFailed:
		return "refresh_failed"
	}
	return "unknown"
}

// Classify maps err to an Outcome. ok is false for errors that say nothing
// about the session (validation, 5xx, network); those stay page-level.
func Classify(err error) (o Outcome, ok bool) {
	switch {
	case err == nil:
		return Authenticated, true
	case errors.Is(err, refresh.ErrRefreshFailed):
		return RefreshFailed, true
	case errors.Is(err, refresh.ErrUnauthorized):
		return Unauthenticated, true
	}
	return Unauthenticated, false
}

type statusCoder interface {
	StatusCode() int
}

func errorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	info := &ErrorInfo{Message: err.Error()}
	var sc statusCoder
	if errors.As(err, &sc) {
		info.Status = sc.StatusCode()
	}
	return info
}
