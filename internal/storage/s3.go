package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	cfg "github.com/mehrab10/loopgram/backend/pkg/config"
)

// Adapter is the object-storage contract consumed by repositories: durable
// binary persistence plus a stable public retrieval URL per object.
type Adapter interface {
	Put(ctx context.Context, data []byte, mimeType, folder string) (string, error)
	Get(ctx context.Context, fileURL string) ([]byte, error)
	Delete(ctx context.Context, fileURL string) bool
}

// S3Storage talks to any S3-compatible endpoint (R2, Supabase, MinIO).
type S3Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Storage(ctx context.Context, c *cfg.Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.StorageAccessKey, c.StorageSecretKey, "")),
		awsconfig.WithRegion(c.StorageRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.StorageEndpoint != "" {
			o.BaseEndpoint = aws.String(c.StorageEndpoint)
		}
		o.UsePathStyle = true
	})

	publicURL := c.StoragePublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s/%s", strings.TrimRight(c.StorageEndpoint, "/"), c.StorageBucket)
	}

	return &S3Storage{
		client:    client,
		bucket:    c.StorageBucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Put uploads data under a generated key and returns the public URL.
func (s *S3Storage) Put(ctx context.Context, data []byte, mimeType, folder string) (string, error) {
	key := ObjectKey(folder, mimeType)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", err
	}

	return s.publicURL + "/" + key, nil
}

// Get downloads the object behind a public URL previously issued by Put.
func (s *S3Storage) Get(ctx context.Context, fileURL string) ([]byte, error) {
	key, ok := KeyFromURL(fileURL, s.publicURL)
	if !ok {
		return nil, fmt.Errorf("url %q does not belong to this bucket", fileURL)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// Delete removes the object behind a public URL. Best effort: callers treat
// a false return as a logged warning, not a failure.
func (s *S3Storage) Delete(ctx context.Context, fileURL string) bool {
	key, ok := KeyFromURL(fileURL, s.publicURL)
	if !ok {
		return false
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err == nil
}

// ObjectKey builds a unique storage key: <folder>/<timestamp>_<uuid8><ext>.
func ObjectKey(folder, mimeType string) string {
	timestamp := time.Now().Format("20060102_150405")
	uniqueID := uuid.NewString()[:8]
	return fmt.Sprintf("%s/%s_%s%s", folder, timestamp, uniqueID, ExtensionFromMime(mimeType))
}

// KeyFromURL strips the public base URL prefix, returning the object key.
func KeyFromURL(fileURL, publicURL string) (string, bool) {
	prefix := strings.TrimRight(publicURL, "/") + "/"
	if !strings.HasPrefix(fileURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(fileURL, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}

// ExtensionFromMime maps a MIME type to a file extension for object keys.
func ExtensionFromMime(mimeType string) string {
	mimeMap := map[string]string{
		"image/jpeg":      ".jpg",
		"image/jpg":       ".jpg",
		"image/png":       ".png",
		"image/gif":       ".gif",
		"image/webp":      ".webp",
		"video/mp4":       ".mp4",
		"video/mpeg":      ".mpeg",
		"video/webm":      ".webm",
		"video/quicktime": ".mov",
		"video/x-msvideo": ".avi",
		"video/x-matroska": ".mkv",
	}
	if ext, ok := mimeMap[mimeType]; ok {
		return ext
	}
	return ".bin"
}
