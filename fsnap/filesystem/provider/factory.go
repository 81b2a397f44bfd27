package provider

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/fsnap/fsnap/config"
)

// FromConfig creates a Router serving local paths and, when enabled, the
// s3:// scheme.
func FromConfig(ctx context.Context, cfg *config.Config) (*Router, error) {
	router := NewRouter()
	router.Register("", NewLocal())

	if cfg != nil && cfg.S3.Enabled {
		s3p, err := NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("init s3 provider: %w", err)
		}
		router.Register(SchemeS3, s3p)
	}

	return router, nil
}
