package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/SeakMengs/EventHub/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PresignedURLExpiry is how long a presigned download link stays valid.
const PresignedURLExpiry = 60 * time.Minute

// Storage keeps certificate backgrounds and rendered documents.
type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (Object, error)
	Download(ctx context.Context, bucket string, key string) ([]byte, error)
	PresignedURL(ctx context.Context, bucket string, key string) (string, error)
	Remove(ctx context.Context, bucket string, key string) error
}

type Object struct {
	Bucket      string
	Key         string
	Size        int64
	ContentType string
}

func NewMinioClient(cfg *config.MinioConfig) (*minio.Client, error) {
	return minio.New(cfg.ENDPOINT, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.ACCESS_KEY, cfg.SECRET_KEY, ""),
		Secure: cfg.USE_SSL,
		Region: "us-east-1",
	})
}

type MinioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorage(client *minio.Client, bucket string) *MinioStorage {
	return &MinioStorage{client: client, bucket: bucket}
}

func (s *MinioStorage) createBucketIfNotExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}

	return nil
}

func (s *MinioStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (Object, error) {
	if err := s.createBucketIfNotExists(ctx); err != nil {
		return Object{}, fmt.Errorf("failed to create bucket: %w", err)
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return Object{Bucket: info.Bucket, Key: info.Key, Size: info.Size, ContentType: contentType}, nil
}

func (s *MinioStorage) Download(ctx context.Context, bucket string, key string) ([]byte, error) {
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("bucket name and object key cannot be empty: bucket=%s, key=%s", bucket, key)
	}

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	return data, nil
}

func (s *MinioStorage) PresignedURL(ctx context.Context, bucket string, key string) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("bucket name and object key cannot be empty")
	}

	presignedURL, err := s.client.PresignedGetObject(ctx, bucket, key, PresignedURLExpiry, nil)
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}

func (s *MinioStorage) Remove(ctx context.Context, bucket string, key string) error {
	if bucket == "" || key == "" {
		return fmt.Errorf("bucket name and object key cannot be empty")
	}

	return s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}
