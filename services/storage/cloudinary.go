package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage implements MediaStorage using Cloudinary.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage constructs a Cloudinary-backed MediaStorage.
func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) (*CloudinaryStorage, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld}, nil
}

// UploadBytes uploads raw media under the given path and returns the public
// URL of the stored asset.
func (s *CloudinaryStorage) UploadBytes(ctx context.Context, data []byte, path string) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     path,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload media: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("no URL returned for uploaded media")
	}
	return result.SecureURL, nil
}

// Delete removes a stored asset given its public ID.
func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return nil
}
