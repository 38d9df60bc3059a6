package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/serenespa/admin-console/internal/backend"
)

// Signer issues upload signatures (POST /api/cloudinary/create-signature).
type Signer interface {
	CreateSignature(ctx context.Context, folder string) (*backend.Signature, error)
}

// SignedUploader sends files straight to the media host using credentials
// signed by the backend. The upload itself carries no session cookies.
type SignedUploader struct {
	signer  Signer
	rest    *resty.Client
	baseURL string
	folder  string
}

func NewSignedUploader(s Signer, baseURL, folder string, timeout time.Duration) *SignedUploader {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	}
	return &SignedUploader{signer: s, rest: r, baseURL: baseURL, folder: folder}
}

type uploadResult struct {
	SecureURL    string `json:"secure_url"`
	URL          string `json:"url"`
	ResourceType string `json:"resource_type"`
}

func (u *SignedUploader) Upload(ctx context.Context, f File) (string, error) {
	sig, err := u.signer.CreateSignature(ctx, u.folder)
	if err != nil {
		return "", err
	}

	var res uploadResult
	resp, err := u.rest.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"api_key":   sig.APIKey,
			"timestamp": strconv.FormatInt(sig.Timestamp, 10),
			"signature": sig.Signature,
			"folder":    u.folder,
		}).
		SetMultipartField("file", f.Name, f.ContentType, f.Body).
		SetResult(&res).
		Post(fmt.Sprintf("%s/v1_1/%s/auto/upload", u.baseURL, sig.CloudName))
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", f.Name, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("upload %s: %w", f.Name, &UploadError{
			Status: resp.StatusCode(),
			Body:   strings.TrimSpace(truncate(resp.String(), 200)),
		})
	}
	if res.SecureURL != "" {
		return res.SecureURL, nil
	}
	if res.URL != "" {
		return res.URL, nil
	}
	return "", fmt.Errorf("upload %s: %w", f.Name, ErrNoURL)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
