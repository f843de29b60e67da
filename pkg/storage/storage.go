package storage

import (
	"context"
	"io"
)

// Storage is the object store used for user uploads.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL returns the public address of key.
	URL(key string) string
}

// Config holds S3 settings. Tags are unprefixed so the application config
// can nest it under S3_. Storage is disabled when Bucket is empty.
type Config struct {
	Bucket    string `env:"BUCKET"`
	Region    string `env:"REGION" envDefault:"us-east-1"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	// Endpoint targets S3-compatible services such as R2 or MinIO.
	Endpoint  string `env:"ENDPOINT"`
	PathStyle bool   `env:"PATH_STYLE"`
	// PublicURL is the CDN prefix objects are served from.
	PublicURL string `env:"PUBLIC_URL"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

func (c Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// FileInfo describes an uploaded object.
type FileInfo struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}
