package port

import (
	"context"
	"io"
)

// UploadInput encapsulates the parameters needed to upload an object.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts S3-compatible object storage operations.
// PresignPut supports the browser direct-upload flow; PresignGet yields
// a URL the AI providers can fetch image bytes from.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	PresignGet(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
	PresignPut(ctx context.Context, bucket, key, contentType string, expirySeconds int64) (string, error)
}
