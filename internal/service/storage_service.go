package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/veritrace/veritrace/internal/observability"
)

const (
	maxProductImageSize = 8 * 1024 * 1024 // 8 MB
	presignedURLTTL     = 15 * time.Minute
	productImagePrefix  = "products"
)

var (
	ErrFileTooBig           = errors.New("file size exceeds 8MB limit")
	ErrInvalidFileType      = errors.New("invalid file type, only JPEG, PNG and WebP images are allowed")
	ErrBucketCreationFailed = errors.New("failed to create storage bucket")
	ErrUploadFailed         = errors.New("failed to upload file")
	ErrDeleteFailed         = errors.New("failed to delete file")
	ErrURLGenerationFailed  = errors.New("failed to generate presigned URL")

	allowedImageTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
		"image/webp": {},
	}
)

// StorageService stores product images in an S3-compatible object store.
type StorageService interface {
	// UploadProductImage uploads a product image and returns the object key.
	UploadProductImage(ctx context.Context, owner string, file io.Reader, fileSize int64) (string, error)

	// DeleteProductImage removes an image by object key. Empty keys are a no-op.
	DeleteProductImage(ctx context.Context, objectKey string) error

	// GenerateImageURL returns a presigned GET URL for an image.
	GenerateImageURL(ctx context.Context, objectKey string) (string, error)
}

// NoopStorageService is used when object storage is disabled; uploads are
// rejected and deletes succeed silently.
type NoopStorageService struct{}

func NewNoopStorageService() *NoopStorageService { return &NoopStorageService{} }

func (s *NoopStorageService) UploadProductImage(context.Context, string, io.Reader, int64) (string, error) {
	return "", errors.New("object storage is disabled")
}

func (s *NoopStorageService) DeleteProductImage(context.Context, string) error { return nil }

func (s *NoopStorageService) GenerateImageURL(context.Context, string) (string, error) {
	return "", errors.New("object storage is disabled")
}

// MinIOStorageService implements StorageService using MinIO/S3-compatible storage.
type MinIOStorageService struct {
	client     *minio.Client
	bucketName string
	initOnce   sync.Once
	initErr    error
}

// NewMinIOStorageService creates a MinIO-backed storage service.
// Bucket creation is deferred until the first operation to avoid blocking app startup.
func NewMinIOStorageService(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOStorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinIOStorageService{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (s *MinIOStorageService) lazyInit(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.ensureBucketExists(ctx)
	})
	return s.initErr
}

func (s *MinIOStorageService) ensureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("%w: check bucket existence: %v", ErrBucketCreationFailed, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("%w: create bucket: %v", ErrBucketCreationFailed, err)
		}
	}
	return nil
}

// UploadProductImage validates and stores a product image. The content type is
// sniffed from the actual bytes, never trusted from the client.
func (s *MinIOStorageService) UploadProductImage(ctx context.Context, owner string, file io.Reader, fileSize int64) (string, error) {
	if fileSize > maxProductImageSize {
		observability.RecordStorageOperation(ctx, "upload", "too_big")
		return "", ErrFileTooBig
	}

	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		observability.RecordStorageOperation(ctx, "upload", "error")
		return "", fmt.Errorf("%w: read file for content detection: %v", ErrUploadFailed, err)
	}
	buf = buf[:n]

	detectedType := strings.ToLower(strings.TrimSpace(http.DetectContentType(buf)))
	if _, allowed := allowedImageTypes[detectedType]; !allowed {
		observability.RecordStorageOperation(ctx, "upload", "bad_type")
		return "", ErrInvalidFileType
	}

	if err := s.lazyInit(ctx); err != nil {
		observability.RecordStorageOperation(ctx, "upload", "error")
		return "", err
	}

	fullFile := io.MultiReader(bytes.NewReader(buf), file)
	objectKey := fmt.Sprintf("%s/%s/%s%s", productImagePrefix, owner, uuid.New().String(), imageExtension(detectedType))

	metadata := map[string]string{
		"Detected-Content-Type": detectedType,
		"Owner":                 owner,
		"Uploaded-At":           time.Now().UTC().Format(time.RFC3339),
	}

	_, err = s.client.PutObject(ctx, s.bucketName, objectKey, fullFile, fileSize, minio.PutObjectOptions{
		ContentType:  detectedType,
		UserMetadata: metadata,
	})
	if err != nil {
		observability.RecordStorageOperation(ctx, "upload", "error")
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	observability.RecordStorageOperation(ctx, "upload", "success")
	return objectKey, nil
}

func (s *MinIOStorageService) DeleteProductImage(ctx context.Context, objectKey string) error {
	if strings.TrimSpace(objectKey) == "" {
		return nil
	}
	if strings.Contains(objectKey, "..") || !strings.HasPrefix(objectKey, productImagePrefix+"/") {
		return ErrDeleteFailed
	}

	if err := s.lazyInit(ctx); err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		observability.RecordStorageOperation(ctx, "delete", "error")
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	observability.RecordStorageOperation(ctx, "delete", "success")
	return nil
}

func (s *MinIOStorageService) GenerateImageURL(ctx context.Context, objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", fmt.Errorf("%w: empty object key", ErrURLGenerationFailed)
	}
	if err := s.lazyInit(ctx); err != nil {
		return "", err
	}

	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucketName, objectKey, presignedURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrURLGenerationFailed, err)
	}
	return presignedURL.String(), nil
}

func imageExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
