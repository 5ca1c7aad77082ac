package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/veritrace/veritrace/internal/service"
)

// jpegFixtureBytes returns a buffer whose leading bytes sniff as image/jpeg.
func jpegFixtureBytes(size int) []byte {
	buf := make([]byte, size)
	copy(buf, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return buf
}

// pngFixtureBytes returns a buffer whose leading bytes sniff as image/png.
func pngFixtureBytes(size int) []byte {
	buf := make([]byte, size)
	copy(buf, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'})
	return buf
}

func TestUploadProductImageStoresSniffedJPEG(t *testing.T) {
	env := newMinIOIntegrationEnv(t)
	ctx := context.Background()

	owner := "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
	payload := jpegFixtureBytes(4096)

	objectKey, err := env.storage.UploadProductImage(ctx, owner, bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("upload product image: %v", err)
	}

	wantPrefix := "products/" + owner + "/"
	if !strings.HasPrefix(objectKey, wantPrefix) {
		t.Fatalf("object key %q does not start with %q", objectKey, wantPrefix)
	}
	if !strings.HasSuffix(objectKey, ".jpg") {
		t.Fatalf("object key %q does not carry the sniffed extension", objectKey)
	}

	info := env.mustStatObject(t, objectKey)
	if info.ContentType != "image/jpeg" {
		t.Fatalf("stored content type %q, want image/jpeg", info.ContentType)
	}
	if info.Size != int64(len(payload)) {
		t.Fatalf("stored size %d, want %d", info.Size, len(payload))
	}
	if got := info.UserMetadata["Owner"]; got != owner {
		t.Fatalf("owner metadata %q, want %q", got, owner)
	}
	if got := info.UserMetadata["Detected-Content-Type"]; got != "image/jpeg" {
		t.Fatalf("detected content type metadata %q, want image/jpeg", got)
	}
	uploadedAt := info.UserMetadata["Uploaded-At"]
	if _, err := time.Parse(time.RFC3339, uploadedAt); err != nil {
		t.Fatalf("uploaded-at metadata %q is not RFC3339: %v", uploadedAt, err)
	}
}

func TestUploadThenDeleteProductImage(t *testing.T) {
	env := newMinIOIntegrationEnv(t)
	ctx := context.Background()

	owner := "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	payload := pngFixtureBytes(2048)

	objectKey, err := env.storage.UploadProductImage(ctx, owner, bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("upload product image: %v", err)
	}
	if !strings.HasSuffix(objectKey, ".png") {
		t.Fatalf("object key %q does not carry the sniffed extension", objectKey)
	}
	if !env.mustObjectExists(t, objectKey) {
		t.Fatalf("object %q not found after upload", objectKey)
	}

	if err := env.storage.DeleteProductImage(ctx, objectKey); err != nil {
		t.Fatalf("delete product image: %v", err)
	}
	if env.mustObjectExists(t, objectKey) {
		t.Fatalf("object %q still present after delete", objectKey)
	}

	// Empty key deletes are a no-op.
	if err := env.storage.DeleteProductImage(ctx, "  "); err != nil {
		t.Fatalf("empty key delete should be a no-op, got %v", err)
	}
}

func TestDeleteProductImageRejectsForeignKeys(t *testing.T) {
	env := newMinIOIntegrationEnv(t)
	ctx := context.Background()

	cases := []string{
		"products/../secrets/config.yaml",
		"avatars/0xabc/whatever.jpg",
		"../products/0xabc/whatever.jpg",
	}
	for _, key := range cases {
		if err := env.storage.DeleteProductImage(ctx, key); !errors.Is(err, service.ErrDeleteFailed) {
			t.Fatalf("delete of key %q: got %v, want ErrDeleteFailed", key, err)
		}
	}
}

func TestUploadProductImageRejectsOversize(t *testing.T) {
	env := newMinIOIntegrationEnv(t)
	ctx := context.Background()

	payload := jpegFixtureBytes(1024)
	declaredSize := int64(9 * 1024 * 1024)

	_, err := env.storage.UploadProductImage(ctx, "0xabc", bytes.NewReader(payload), declaredSize)
	if !errors.Is(err, service.ErrFileTooBig) {
		t.Fatalf("oversize upload: got %v, want ErrFileTooBig", err)
	}
}

func TestUploadProductImageRejectsSpoofedContent(t *testing.T) {
	env := newMinIOIntegrationEnv(t)
	ctx := context.Background()

	payload := []byte("<html><body>definitely not an image</body></html>")

	_, err := env.storage.UploadProductImage(ctx, "0xabc", bytes.NewReader(payload), int64(len(payload)))
	if !errors.Is(err, service.ErrInvalidFileType) {
		t.Fatalf("spoofed upload: got %v, want ErrInvalidFileType", err)
	}
}

func TestGenerateImageURLContainsObjectKey(t *testing.T) {
	env := newMinIOIntegrationEnv(t)
	ctx := context.Background()

	owner := "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"
	payload := jpegFixtureBytes(1024)

	objectKey, err := env.storage.UploadProductImage(ctx, owner, bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("upload product image: %v", err)
	}

	url, err := env.storage.GenerateImageURL(ctx, objectKey)
	if err != nil {
		t.Fatalf("generate image url: %v", err)
	}
	if !strings.Contains(url, objectKey) {
		t.Fatalf("presigned url %q does not reference object key %q", url, objectKey)
	}
	if !strings.Contains(url, env.bucket) {
		t.Fatalf("presigned url %q does not reference bucket %q", url, env.bucket)
	}

	if _, err := env.storage.GenerateImageURL(ctx, ""); !errors.Is(err, service.ErrURLGenerationFailed) {
		t.Fatalf("empty key url generation: got %v, want ErrURLGenerationFailed", err)
	}
}

func TestUploadProductImageStorageUnavailable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping minio integration test in short mode")
	}

	storage, err := service.NewMinIOStorageService("127.0.0.1:1", "minioadmin", "minioadmin", "products-test", false)
	if err != nil {
		t.Fatalf("create storage service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payload := jpegFixtureBytes(1024)
	if _, err := storage.UploadProductImage(ctx, "0xabc", bytes.NewReader(payload), int64(len(payload))); err == nil {
		t.Fatal("expected upload against unreachable endpoint to fail")
	}
}

func TestConcurrentUploadsProduceUniqueKeys(t *testing.T) {
	env := newMinIOIntegrationEnv(t)
	ctx := context.Background()

	const uploads = 8
	owner := "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"

	var (
		mu   sync.Mutex
		keys = make(map[string]struct{}, uploads)
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < uploads; i++ {
		g.Go(func() error {
			payload := jpegFixtureBytes(1024 + i)
			key, err := env.storage.UploadProductImage(gctx, owner, bytes.NewReader(payload), int64(len(payload)))
			if err != nil {
				return fmt.Errorf("upload %d: %w", i, err)
			}
			mu.Lock()
			keys[key] = struct{}{}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if len(keys) != uploads {
		t.Fatalf("expected %d unique object keys, got %d", uploads, len(keys))
	}
	for key := range keys {
		if !env.mustObjectExists(t, key) {
			t.Fatalf("object %q not found after concurrent upload", key)
		}
	}
}
