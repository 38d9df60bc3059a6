package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Service wraps repository operations with business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CreateSession stores a new refresh session and returns it
func (s *Service) CreateSession(ctx context.Context, sub string, aid int64, ttl time.Duration) (*Session, error) {
	r, err := newRefreshToken()
	if err != nil {
		return nil, err
	}
	sess := &Session{
		RefreshToken: r,
		Sub:          sub,
		AID:          aid,
		ExpiresAt:    time.Now().UTC().Add(ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ValidateRefresh returns the session if refresh token is valid and not expired
func (s *Service) ValidateRefresh(ctx context.Context, refresh string) (*Session, error) {
	if refresh == "" {
		return nil, ErrInvalidRefresh
	}
	sess, err := s.repo.GetByRefresh(ctx, refresh)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrInvalidRefresh
	}
	if sess.Expired(time.Now().UTC()) {
		_ = s.repo.DeleteByRefresh(ctx, refresh)
		return nil, ErrInvalidRefresh
	}
	return sess, nil
}

// Rotate consumes refresh and issues a replacement with a fresh ttl. A
// refresh token can be used only once.
func (s *Service) Rotate(ctx context.Context, refresh string, ttl time.Duration) (*Session, error) {
	old, err := s.ValidateRefresh(ctx, refresh)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteByRefresh(ctx, refresh); err != nil {
		return nil, err
	}
	return s.CreateSession(ctx, old.Sub, old.AID, ttl)
}

func (s *Service) DeleteRefresh(ctx context.Context, refresh string) error {
	return s.repo.DeleteByRefresh(ctx, refresh)
}
