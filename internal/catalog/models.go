package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Minutes is a service duration. The backend sends it as 60, "60" or "60 mins".
type Minutes int

func (m *Minutes) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := ParseMinutes(s)
		if err != nil {
			return err
		}
		*m = n
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	*m = Minutes(n)
	return nil
}

// ParseMinutes accepts "60", "60 min" and "60 mins".
func ParseMinutes(s string) (Minutes, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(s, "mins"), "min"))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", s, ErrInvalidDuration)
	}
	return Minutes(n), nil
}

// Wire is the form the update endpoint expects.
func (m Minutes) Wire() string { return fmt.Sprintf("%d mins", int(m)) }

var ErrInvalidDuration = errors.New("invalid duration")

// Media is one image or video attached to a service.
type Media struct {
	URL  string `json:"url" bson:"url" validate:"required,mediaurl"`
	Type string `json:"type,omitempty" bson:"type,omitempty"`
}

// UnmarshalJSON accepts a bare URL string or an object using either the
// backend's or the upload host's field names.
func (m *Media) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &m.URL)
	}
	var raw struct {
		URL          string `json:"url"`
		SecureURL    string `json:"secure_url"`
		Type         string `json:"type"`
		ResourceType string `json:"resource_type"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	m.URL = raw.URL
	if m.URL == "" {
		m.URL = raw.SecureURL
	}
	m.Type = raw.Type
	if m.Type == "" {
		m.Type = raw.ResourceType
	}
	return nil
}

// IsVideo reports whether the media should render as a video.
func (m Media) IsVideo() bool {
	if strings.HasPrefix(m.Type, "video") {
		return true
	}
	u := strings.ToLower(m.URL)
	for _, ext := range []string{".mp4", ".webm", ".mov"} {
		if strings.HasSuffix(u, ext) {
			return true
		}
	}
	return false
}

// Service is a bookable spa treatment.
type Service struct {
	SID         int64   `json:"sid" bson:"sid" validate:"gt=0"`
	AID         int64   `json:"aid" bson:"aid"`
	Name        string  `json:"name" bson:"name" validate:"required"`
	Duration    Minutes `json:"duration" bson:"duration" validate:"gt=0"`
	Description string  `json:"description" bson:"description"`
	Media       []Media `json:"media" bson:"media" validate:"dive"`
	Active      bool    `json:"active" bson:"active"`
}

// MediaURLs returns the urls in display order.
func (s Service) MediaURLs() []string {
	out := make([]string, 0, len(s.Media))
	for _, m := range s.Media {
		out = append(out, m.URL)
	}
	return out
}

// ServiceUpdate is the body of PUT /api/services/updateService/{sid}.
type ServiceUpdate struct {
	Name        string   `json:"name" validate:"required"`
	Duration    Minutes  `json:"-" validate:"gt=0"`
	Description string   `json:"description"`
	AID         int64    `json:"aid"`
	Media       []string `json:"media"`
}

func (u ServiceUpdate) MarshalJSON() ([]byte, error) {
	type alias ServiceUpdate
	return json.Marshal(struct {
		alias
		Duration string `json:"duration"`
	}{alias(u), u.Duration.Wire()})
}

// NewService is the form of POST /api/services.
type NewService struct {
	Name        string  `validate:"required"`
	Duration    Minutes `validate:"gt=0"`
	Description string
	AID         int64 `validate:"gte=0"`
}
