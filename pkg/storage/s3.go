package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultPhotoBucket = "profile-photos"

type s3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type s3Deleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Storage struct {
	uploader s3Uploader
	client   s3Deleter
	bucket   string
	baseURL  string
	now      func() time.Time
}

// NewS3Storage creates an S3 (or S3-compatible) backend. Objects are stored
// as <folder>/<unix-millis>.<ext> and served from S3PublicBaseURL.
func NewS3Storage(ctx context.Context, opts Options) (ImageStorage, error) {
	bucket := opts.S3Bucket
	if bucket == "" {
		bucket = defaultPhotoBucket
	}
	region := opts.S3Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if opts.S3AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.S3AccessKeyID, opts.S3SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimRight(opts.S3PublicBaseURL, "/")
	if baseURL == "" {
		if opts.S3Endpoint != "" {
			baseURL = strings.TrimRight(opts.S3Endpoint, "/") + "/" + bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
		}
	}

	return newS3Storage(manager.NewUploader(client), client, bucket, baseURL), nil
}

func newS3Storage(up s3Uploader, client s3Deleter, bucket, baseURL string) *s3Storage {
	return &s3Storage{
		uploader: up,
		client:   client,
		bucket:   bucket,
		baseURL:  baseURL,
		now:      time.Now,
	}
}

func (s *s3Storage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		ext = "jpg"
	}
	key := fmt.Sprintf("%s/%d.%s", folder, s.now().UnixMilli(), ext)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload image to s3: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

func (s *s3Storage) DeleteImage(ctx context.Context, fileURL string) error {
	key := objectKeyFromURL(fileURL)
	if key == "" {
		return fmt.Errorf("could not derive object key from URL: %s", fileURL)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from s3: %w", err)
	}
	return nil
}

func (s *s3Storage) Owns(fileURL string) bool {
	return strings.HasPrefix(fileURL, s.baseURL+"/")
}

// objectKeyFromURL keeps the last two path segments: <folder>/<file>.
func objectKeyFromURL(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[len(segments)-1] == "" {
		return ""
	}
	return strings.Join(segments[len(segments)-2:], "/")
}
