package storage

import "context"

// MediaStorage persists inbound channel media and exposes a public URL.
type MediaStorage interface {
	UploadBytes(ctx context.Context, data []byte, path string) (string, error)
	Delete(ctx context.Context, publicID string) error
}
