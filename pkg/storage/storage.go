// Package storage stores uploaded files (product images) on a named disk:
// the local filesystem or an S3-compatible bucket (AWS S3, MinIO, R2).
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/shashiranjanraj/storefront/config"
)

// Disk is a flat object store addressed by slash-separated keys.
type Disk interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// URL is the public address of key.
	URL(key string) string
}

// FromConfig opens the disk named by STORAGE_DISK.
func FromConfig(ctx context.Context) (Disk, error) {
	switch name := config.StorageDisk(); name {
	case "local":
		return NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()), nil
	case "s3":
		return NewS3Disk(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		})
	default:
		return nil, fmt.Errorf("storage: unknown disk %q (supported: local, s3)", name)
	}
}

// CleanKey normalises key and rejects paths that escape the disk root.
func CleanKey(key string) (string, error) {
	cleaned := strings.TrimPrefix(path.Clean("/"+key), "/")
	if cleaned == "" || cleaned == "." || strings.Contains(key, "..") {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return cleaned, nil
}
