package ports

import (
	"context"
)

// ObjectStore is the bucket holding deployed models.
type ObjectStore interface {
	// IsObjectPresent reports whether key exists in bucket
	IsObjectPresent(ctx context.Context, bucket, key string) (bool, error)

	// GetObject downloads the object body. Missing keys return domain.ErrObjectNotFound
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)

	// UploadFile uploads a local file to bucket/key, deleting the local copy when remove is set
	UploadFile(ctx context.Context, localPath, bucket, key string, remove bool) error
}
