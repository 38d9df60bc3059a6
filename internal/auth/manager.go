package auth

import (
	"context"
	"errors"

	"github.com/serenespa/admin-console/pkg/logger"
)

var ErrMissingCredentials = errors.New("email and password are required")

// Backend is the subset of the backend client used for session changes.
type Backend interface {
	Checker
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
}

// Manager wires login and logout to the shared State.
type Manager struct {
	backend  Backend
	state    *State
	verifier *Verifier
}

func NewManager(b Backend, s *State, v *Verifier) *Manager {
	return &Manager{backend: b, state: s, verifier: v}
}

// Login posts the credentials and then re-verifies, so State reflects what
// the backend actually accepted. A failed login leaves State untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (Outcome, error) {
	if email == "" || password == "" {
		return Unauthenticated, ErrMissingCredentials
	}
	if err := m.backend.Login(ctx, email, password); err != nil {
		return Unauthenticated, err
	}
	o := m.verifier.Verify(ctx)
	if o != Authenticated {
		logger.Warnf("login accepted but verification returned %s", o)
	}
	return o, nil
}

// Logout always ends the local session, even when the backend call fails.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.backend.Logout(ctx)
	m.state.SetUnauthenticated()
	if err != nil {
		logger.Warnf("logout request failed: %v", err)
	}
	return err
}
