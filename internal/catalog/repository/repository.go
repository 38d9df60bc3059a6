package repository

import (
	"context"

	"github.com/serenespa/admin-console/internal/catalog"
)

// Repository persists services for the dev backend.
type Repository interface {
	List(ctx context.Context, active bool) ([]catalog.Service, error)
	Get(ctx context.Context, sid int64) (*catalog.Service, error)
	Create(ctx context.Context, s *catalog.Service) (int64, error)
	Update(ctx context.Context, sid int64, u catalog.ServiceUpdate) error
	SetActive(ctx context.Context, sid int64, active bool) error
}

func mediaFromURLs(urls []string) []catalog.Media {
	out := make([]catalog.Media, 0, len(urls))
	for _, u := range urls {
		out = append(out, catalog.Media{URL: u})
	}
	return out
}

// Seed returns the demo catalog used for local runs.
func Seed() []catalog.Service {
	return []catalog.Service{
		{AID: 1, Name: "Swedish Massage", Duration: 60, Description: "Full body massage with long, flowing strokes to ease tension.", Active: true},
		{AID: 1, Name: "Hot Stone Therapy", Duration: 90, Description: "Heated basalt stones placed along the spine to relax deep muscles.", Active: true},
		{AID: 1, Name: "Aromatherapy Facial", Duration: 45, Description: "Cleansing facial with essential oils.", Active: true},
		{AID: 1, Name: "Foot Reflexology", Duration: 30, Description: "Pressure point treatment for the feet.", Active: false},
	}
}
