package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	internal "github.com/ZanzyTHEbar/fsnap/fsnap"
	"github.com/ZanzyTHEbar/fsnap/fsnap/config"
	"github.com/ZanzyTHEbar/fsnap/fsnap/filesystem/provider"
	"github.com/ZanzyTHEbar/fsnap/fsnap/listing"
	"github.com/ZanzyTHEbar/fsnap/fsnap/location"
	"github.com/ZanzyTHEbar/fsnap/fsnap/snapshot"
)

// FileSystem is the entry point of the snapshot subsystem. It owns the
// provider routing, the resolver and the listing cache built from one Config.
type FileSystem struct {
	config   *config.Config
	logger   zerolog.Logger
	provider provider.Provider
	resolver *snapshot.Resolver
	listings *listing.Cache
	metrics  *snapshot.Metrics
}

// New creates a FileSystem for the local disk and, when configured, the s3
// scheme. Metrics are registered on reg if it is non-nil.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*FileSystem, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := internal.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	router, err := provider.FromConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build providers: %w", err)
	}
	logger.Debug().Strs("schemes", router.Schemes()).Msg("Providers registered")

	return NewWithProvider(router, cfg, logger, reg), nil
}

// NewWithProvider wires the subsystem around an existing provider
func NewWithProvider(p provider.Provider, cfg *config.Config, logger zerolog.Logger, reg prometheus.Registerer) *FileSystem {
	if cfg == nil {
		cfg = &config.Config{}
	}

	metrics := snapshot.NewMetrics(reg)
	resolver := snapshot.NewResolver(p,
		snapshot.WithLogger(logger.With().Str("component", "resolver").Logger()),
		snapshot.WithMetrics(metrics),
		snapshot.WithMaxWorkers(cfg.Resolver.MaxWorkers),
		snapshot.WithTimeout(cfg.Resolver.Timeout),
	)

	return &FileSystem{
		config:   cfg,
		logger:   logger,
		provider: p,
		resolver: resolver,
		listings: listing.NewCache(resolver, logger.With().Str("component", "listing").Logger()),
		metrics:  metrics,
	}
}

// High-level API methods

// Resolve snapshots the entry named by raw, a local path or scheme://path
func (fs *FileSystem) Resolve(ctx context.Context, raw string) (snapshot.File, error) {
	return fs.resolver.Resolve(ctx, location.Parse(raw))
}

// ResolveAll snapshots every entry in raws into one ordered collection.
func (fs *FileSystem) ResolveAll(ctx context.Context, raws []string) (*snapshot.Collection, error) {
	urls := make([]location.URL, len(raws))
	for i, raw := range raws {
		urls[i] = location.Parse(raw)
	}
	return fs.resolver.ResolveAll(ctx, urls)
}

// Load caches the direct children of dir
func (fs *FileSystem) Load(ctx context.Context, dir string) (listing.Listing, error) {
	return fs.listings.Load(ctx, location.Parse(dir))
}

// Refresh re-resolves one entry and updates its parent listing
func (fs *FileSystem) Refresh(ctx context.Context, raw string) (snapshot.File, error) {
	return fs.listings.Refresh(ctx, location.Parse(raw))
}

// Listing returns the cached listing of dir, if any
func (fs *FileSystem) Listing(dir string) (listing.Listing, bool) {
	return fs.listings.Get(location.Parse(dir))
}

func (fs *FileSystem) Resolver() *snapshot.Resolver { return fs.resolver }
func (fs *FileSystem) Listings() *listing.Cache     { return fs.listings }
func (fs *FileSystem) Metrics() *snapshot.Metrics   { return fs.metrics }
func (fs *FileSystem) Config() *config.Config       { return fs.config }
