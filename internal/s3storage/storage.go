// Package s3storage lets technicians reference photos already uploaded to an
// S3 compatible bucket (s3://bucket/key) instead of local files.
package s3storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dharsanguruparan/reporte/internal/config"
)

const scheme = "s3://"

// ErrBadRef is returned by ParseRef for anything that is not s3://bucket/key.
var ErrBadRef = errors.New("expected s3://bucket/key")

// Storage wraps MinIO/S3 reads for image attachments.
type Storage struct {
	client *minio.Client
}

// New creates a MinIO client from the Config.
func New(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &Storage{client: client}, nil
}

// IsRef reports whether s looks like an object reference rather than a path.
func IsRef(s string) bool {
	return strings.HasPrefix(s, scheme)
}

// ParseRef splits s3://bucket/some/key into bucket and key.
func ParseRef(ref string) (bucket, key string, err error) {
	if !IsRef(ref) {
		return "", "", ErrBadRef
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, scheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", ErrBadRef
	}
	return bucket, key, nil
}

// Object returns an attachment source for ref.
func (s *Storage) Object(ref string) (*Object, error) {
	bucket, key, err := ParseRef(ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	return &Object{client: s.client, bucket: bucket, key: key}, nil
}

// Object is a single stored image. Its declared type comes from the object
// metadata and is known once ReadAll has run.
type Object struct {
	client      *minio.Client
	bucket      string
	key         string
	contentType string
}

// Filename is the last element of the key.
func (o *Object) Filename() string {
	return path.Base(o.key)
}

// DeclaredType is the stored content type, empty before ReadAll.
func (o *Object) DeclaredType() string {
	return o.contentType
}

// ReadAll downloads the object.
func (o *Object) ReadAll(ctx context.Context) ([]byte, error) {
	obj, err := o.client.GetObject(ctx, o.bucket, o.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer obj.Close()
	info, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat object: %w", err)
	}
	buf, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	// MinIO reports octet-stream when the uploader set nothing; treat it
	// as undeclared so the extension can still be used.
	if info.ContentType != "application/octet-stream" {
		o.contentType = info.ContentType
	}
	return buf, nil
}
