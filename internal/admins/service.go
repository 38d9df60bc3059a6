package admins

import (
	"context"
	"errors"
	"fmt"

	"github.com/serenespa/admin-console/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Service encapsulates admin account logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Seed creates or updates an admin with the given password.
func (s *Service) Seed(ctx context.Context, aid int64, email, name, password string) (*models.Admin, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("seed admin: %w", ErrInvalidCredentials)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpsertByEmail(ctx, &models.Admin{AID: aid, Email: email, Name: name, PasswordHash: string(hash)})
}

// Authenticate checks email and password. Unknown email and wrong password
// are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.Admin, error) {
	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

func (s *Service) GetByAID(ctx context.Context, aid int64) (*models.Admin, error) {
	return s.repo.GetByAID(ctx, aid)
}
