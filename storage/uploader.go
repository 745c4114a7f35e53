package storage

import (
	"context"
	"io"
)

// Object is a blob written to the bucket. An empty CacheControl leaves the bucket default.
type Object struct {
	Key          string
	ContentType  string
	CacheControl string
	Body         io.Reader
}

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores objects and exposes them at a public URL.
type FileUploader interface {
	Put(ctx context.Context, obj Object) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}
