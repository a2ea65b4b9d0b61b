// Package storage selects the configured document store.
package storage

import (
	"context"
	"fmt"

	portsrepo "github.com/SscSPs/lecturer_claims_app/internal/core/ports/repositories"
	"github.com/SscSPs/lecturer_claims_app/internal/platform/config"
	"github.com/SscSPs/lecturer_claims_app/internal/storage/localfs"
	"github.com/SscSPs/lecturer_claims_app/internal/storage/s3store"
)

// New builds the document store named by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (portsrepo.DocumentStore, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendLocal:
		return localfs.New(cfg.StorageLocalDir)
	case config.StorageBackendS3:
		client, err := s3store.LoadClient(ctx, cfg.AWSRegion, cfg.AWSEndpointURL)
		if err != nil {
			return nil, err
		}
		return s3store.New(client, cfg.S3Bucket, cfg.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
