package media

import (
	"context"
	"fmt"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/config"
)

// NewStoreFromConfig builds the store selected by MEDIA_BACKEND.
func NewStoreFromConfig(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.MediaBackend {
	case "s3":
		s3cfg := S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.MediaPublicBaseURL,
		}
		client, err := NewS3Client(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, s3cfg), nil
	case "disk", "":
		return NewDiskStore(cfg.MediaDir, cfg.MediaPublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported MEDIA_BACKEND %q", cfg.MediaBackend)
	}
}

// NewManagerFromConfig wires the configured store with an image processor.
func NewManagerFromConfig(ctx context.Context, cfg *config.Config) (*Manager, error) {
	store, err := NewStoreFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewManager(store, NewProcessor(cfg.ImageMaxUploadSizeMB)), nil
}
