package catalog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/serenespa/admin-console/pkg/logger"
	"github.com/serenespa/admin-console/pkg/metrics"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("mediaurl", func(fl validator.FieldLevel) bool {
		return validMediaURL(fl.Field().String())
	})
	return v
}

// validMediaURL allows absolute http(s) urls and site-relative paths.
func validMediaURL(s string) bool {
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Validate checks any catalog value carrying validate tags.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidService, err)
	}
	return nil
}

// DecodeServices parses a service list. Records that do not decode or do
// not validate are dropped and logged; they never reach a page.
func DecodeServices(body []byte, active bool) ([]Service, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	out := make([]Service, 0, len(raw))
	for i, r := range raw {
		var s Service
		if err := json.Unmarshal(r, &s); err != nil {
			reject(i, err)
			continue
		}
		if err := Validate(s); err != nil {
			reject(i, err)
			continue
		}
		s.Active = active
		out = append(out, s)
	}
	return out, nil
}

func reject(index int, err error) {
	metrics.RejectedRecords.WithLabelValues("service").Inc()
	logger.WithFields(logger.Fields{"index": index}).Warnf("dropping malformed service record: %v", err)
}
