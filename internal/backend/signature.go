package backend

import (
	"context"
	"errors"
	"fmt"
)

// Signature holds signed upload credentials for the media host.
type Signature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	CloudName string `json:"cloudName"`
	APIKey    string `json:"apiKey"`
}

var ErrIncompleteSignature = errors.New("incomplete upload signature")

func (c *Client) CreateSignature(ctx context.Context, folder string) (*Signature, error) {
	var sig Signature
	resp, err := c.Request(ctx).
		SetBody(map[string]string{"folder": folder}).
		SetResult(&sig).
		Post(PathCreateSignature)
	if err := Check(resp, err); err != nil {
		return nil, fmt.Errorf("create signature: %w", err)
	}
	if sig.Signature == "" || sig.CloudName == "" || sig.APIKey == "" {
		return nil, ErrIncompleteSignature
	}
	return &sig, nil
}
