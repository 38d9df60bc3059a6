package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/serenespa/admin-console/internal/backend"
	"github.com/serenespa/admin-console/internal/media"
)

const (
	PathActive     = "/api/services/getServices"
	PathInactive   = "/api/services/inactive"
	PathCreate     = "/api/services"
	pathReactivate = "/api/services/%d/reactivate"
	pathUpdate     = "/api/services/updateService/%d"
)

// Client is the console's view of the service catalog endpoints.
type Client struct {
	api *backend.Client
}

func NewClient(api *backend.Client) *Client {
	return &Client{api: api}
}

func (c *Client) ListActive(ctx context.Context) ([]Service, error) {
	return c.list(ctx, PathActive, true)
}

func (c *Client) ListInactive(ctx context.Context) ([]Service, error) {
	return c.list(ctx, PathInactive, false)
}

func (c *Client) list(ctx context.Context, path string, active bool) ([]Service, error) {
	resp, err := c.api.Request(ctx).Get(path)
	if err := backend.Check(resp, err); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return DecodeServices(resp.Body(), active)
}

func (c *Client) Reactivate(ctx context.Context, sid int64) error {
	if sid <= 0 {
		return fmt.Errorf("%w: sid %d", ErrInvalidService, sid)
	}
	resp, err := c.api.Request(ctx).Patch(fmt.Sprintf(pathReactivate, sid))
	if err := backend.Check(resp, err); err != nil {
		return fmt.Errorf("reactivate service %d: %w", sid, err)
	}
	return nil
}

func (c *Client) Update(ctx context.Context, sid int64, u ServiceUpdate) error {
	if err := Validate(u); err != nil {
		return err
	}
	if u.Media == nil {
		u.Media = []string{}
	}
	resp, err := c.api.Request(ctx).SetBody(u).Put(fmt.Sprintf(pathUpdate, sid))
	if err := backend.Check(resp, err); err != nil {
		return fmt.Errorf("update service %d: %w", sid, err)
	}
	return nil
}

// Create posts a new service with its media files and returns the new sid.
func (c *Client) Create(ctx context.Context, s NewService, files []media.File) (int64, error) {
	if err := Validate(s); err != nil {
		return 0, err
	}
	req := c.api.Request(ctx).SetMultipartFormData(map[string]string{
		"name":        s.Name,
		"duration":    strconv.Itoa(int(s.Duration)),
		"description": s.Description,
		"aid":         strconv.FormatInt(s.AID, 10),
	})
	for _, f := range files {
		req.SetMultipartField("media", f.Name, f.ContentType, f.Body)
	}
	resp, err := req.Post(PathCreate)
	if err := backend.Check(resp, err); err != nil {
		return 0, fmt.Errorf("create service: %w", err)
	}
	var created struct {
		SID json.Number `json:"sid"`
	}
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		return 0, fmt.Errorf("create service: decode response: %w", err)
	}
	sid, err := created.SID.Int64()
	if err != nil || sid <= 0 {
		return 0, fmt.Errorf("create service: %w: missing sid", ErrInvalidService)
	}
	return sid, nil
}
