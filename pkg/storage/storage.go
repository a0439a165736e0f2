package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

const (
	ProviderCloudinary = "cloudinary"
	ProviderS3         = "s3"
	ProviderNone       = "none"
)

// ImageStorage is the profile-photo bucket.
type ImageStorage interface {
	// UploadImage stores the image under folder and returns its public URL.
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// DeleteImage removes the object a previously returned URL points at.
	DeleteImage(ctx context.Context, fileURL string) error
	// Owns reports whether fileURL was produced by this storage.
	Owns(fileURL string) bool
}

// Options configures the storage backend selected by Provider.
type Options struct {
	Provider string

	CloudinaryURL       string
	CloudinaryCloudName string
	UploadFolder        string

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string
}

// New builds the configured backend. An empty or "none" provider yields nil
// storage; callers treat photo operations as unavailable.
func New(ctx context.Context, opts Options) (ImageStorage, error) {
	switch strings.ToLower(opts.Provider) {
	case "", ProviderNone:
		return nil, nil
	case ProviderCloudinary:
		return NewCloudinaryStorage(opts)
	case ProviderS3:
		return NewS3Storage(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown STORAGE_PROVIDER %q", opts.Provider)
	}
}
