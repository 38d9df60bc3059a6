package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/serenespa/admin-console/internal/config"
)

// PresignTTL is how long generated GET urls stay valid when the bucket has
// no public url.
const PresignTTL = 7 * 24 * time.Hour

// MinIOStore keeps service media in a MinIO (or any S3) bucket.
type MinIOStore struct {
	client    *minio.Client
	bucket    string
	folder    string
	publicURL string
}

// NewMinIOStore connects and makes sure the bucket exists.
func NewMinIOStore(ctx context.Context, cfg config.MinIOConfig, folder string) (*MinIOStore, error) {
	if cfg.Endpoint == "" {
		return nil, ErrUnavailable
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStore{client: mc, bucket: cfg.Bucket, folder: folder, publicURL: cfg.PublicURL}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// ObjectKey builds folder/<uuid><ext> so names never collide.
func ObjectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(folder, uuid.NewString()+ext)
}

func (s *MinIOStore) Upload(ctx context.Context, f File) (string, error) {
	f = Sniff(f)
	size := f.Size
	if size <= 0 {
		size = -1
	}
	key := ObjectKey(s.folder, f.Name)
	_, err := s.client.PutObject(ctx, s.bucket, key, f.Body, size, minio.PutObjectOptions{ContentType: f.ContentType})
	if err != nil {
		return "", fmt.Errorf("minio put %s: %w", key, err)
	}
	return s.URL(ctx, key)
}

// URL returns the public url of key, or a presigned GET url.
func (s *MinIOStore) URL(ctx context.Context, key string) (string, error) {
	if s.publicURL != "" {
		return s.publicURL + "/" + s.bucket + "/" + key, nil
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, PresignTTL, url.Values{})
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}

// Open returns the stored object and its content type.
func (s *MinIOStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return obj, info.ContentType, nil
}
