package sessions

import (
	"errors"
	"time"
)

var ErrInvalidRefresh = errors.New("invalid or expired refresh token")

// Session is a refresh session issued at admin login. The refresh token is
// opaque and rotates on every use.
type Session struct {
	ID           string    `bson:"_id,omitempty" json:"id,omitempty"`
	RefreshToken string    `bson:"refreshToken" json:"refreshToken"`
	Sub          string    `bson:"sub" json:"sub"`
	AID          int64     `bson:"aid" json:"aid"`
	ExpiresAt    time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

func (s *Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }
