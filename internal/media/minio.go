package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/FACorreiaa/go-identity-profiles/config"
)

const profileImagePrefix = "profile_images"

// MinioImageStore stores profile images in a MinIO (S3-compatible) bucket and
// returns the public object URL that gets persisted on the profile record.
type MinioImageStore struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
	logger   *slog.Logger
}

func NewMinioImageStore(ctx context.Context, cfg config.MediaConfig, logger *slog.Logger) (*MinioImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinioImageStore{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		useSSL:   cfg.UseSSL,
		logger:   logger,
	}, nil
}

// UploadProfileImage stores the image bytes under a fresh object key and
// returns its URL. Keys are namespaced per user; a random suffix keeps every
// upload addressable so stale references never point at replaced content.
func (s *MinioImageStore) UploadProfileImage(ctx context.Context, userID, filename string, data []byte, contentType string) (string, error) {
	objectName := fmt.Sprintf("%s/%s/%s%s", profileImagePrefix, userID, uuid.NewString(), path.Ext(filename))

	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio put object: %w", err)
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	url := fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, objectName)

	s.logger.DebugContext(ctx, "Profile image uploaded",
		slog.String("object", objectName),
		slog.String("content_type", contentType),
		slog.Int("size", len(data)),
	)
	return url, nil
}

// RemoveProfileImage deletes a previously uploaded object given its stored
// URL. URLs that do not point into this store's bucket are ignored so stale
// references from older storage backends never fail a profile update.
func (s *MinioImageStore) RemoveProfileImage(ctx context.Context, imageURL string) error {
	objectName, ok := objectKeyFromURL(s.bucket, imageURL)
	if !ok {
		return nil
	}

	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio remove object: %w", err)
	}

	s.logger.DebugContext(ctx, "Profile image removed", slog.String("object", objectName))
	return nil
}

// objectKeyFromURL extracts the object key from a stored image URL. Returns
// false when the URL does not point into the given bucket.
func objectKeyFromURL(bucket, imageURL string) (string, bool) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", false
	}

	objectName := strings.TrimPrefix(parsed.Path, "/"+bucket+"/")
	if objectName == "" || objectName == parsed.Path {
		return "", false
	}
	return objectName, true
}
