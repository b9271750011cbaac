package objectstore

import (
	"context"
	"fmt"
	"log"

	"voicecounsel/internal/config"
)

// CreateStore creates an object store based on configuration.
func CreateStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.ObjectStoreProvider {
	case "supabase":
		return createSupabaseStore(cfg)
	case "s3":
		return createS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported object store provider: %s. Supported: supabase, s3", cfg.ObjectStoreProvider)
	}
}

func createSupabaseStore(cfg *config.Config) (Store, error) {
	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL environment variable is not set")
	}
	if cfg.SupabaseServiceKey == "" {
		return nil, fmt.Errorf("SUPABASE_SERVICE_KEY environment variable is not set")
	}

	log.Printf("[Store Factory] Creating Supabase store (bucket: %s)", cfg.SupabaseBucket)
	return NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket), nil
}

func createS3Store(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET environment variable is not set")
	}

	log.Printf("[Store Factory] Creating S3 store (bucket: %s, region: %s)", cfg.S3Bucket, cfg.AWSRegion)
	return NewS3Store(ctx, cfg.S3Bucket, cfg.AWSRegion, cfg.S3AccessKey, cfg.S3SecretKey)
}
