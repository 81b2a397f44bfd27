// Package provider defines the filesystem primitive the snapshot layer reads
// through, together with its go-billy, S3 and scheme-routing implementations.
package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ZanzyTHEbar/fsnap/fsnap/filesystem/common"
	"github.com/ZanzyTHEbar/fsnap/fsnap/filesystem/types"
	"github.com/ZanzyTHEbar/fsnap/fsnap/location"
)

// Provider is the set of read-only metadata calls a resolution needs.
// Every call is fallible and may block; implementations honour ctx where the
// backing store allows it and always check it before starting.
type Provider interface {
	// Lstat returns metadata without following a final symlink
	Lstat(ctx context.Context, u location.URL) (types.Metadata, error)
	// Stat returns metadata of the object a symlink chain ends at
	Stat(ctx context.Context, u location.URL) (types.Metadata, error)
	// Readlink returns the raw target stored in the link at u
	Readlink(ctx context.Context, u location.URL) (location.URL, error)
	// ReadDir lists the direct children of u with un-followed metadata
	ReadDir(ctx context.Context, u location.URL) ([]types.DirEntry, error)
}

// Router dispatches each call to the provider registered for the URL scheme.
// Local URLs use the empty scheme.
type Router struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRouter creates an empty Router
func NewRouter() *Router {
	return &Router{providers: make(map[string]Provider)}
}

// Register binds scheme to p, replacing any previous binding
func (r *Router) Register(scheme string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[scheme] = p
}

// Schemes lists registered schemes in sorted order
func (r *Router) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.providers))
	for s := range r.providers {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

func (r *Router) route(op string, u location.URL) (Provider, error) {
	r.mu.RLock()
	p, ok := r.providers[u.Scheme()]
	r.mu.RUnlock()
	if !ok {
		return nil, common.NewIOError(op, u.String(), fmt.Errorf("scheme %q: %w", u.Scheme(), common.ErrUnsupported))
	}
	return p, nil
}

func (r *Router) Lstat(ctx context.Context, u location.URL) (types.Metadata, error) {
	p, err := r.route("lstat", u)
	if err != nil {
		return types.Metadata{}, err
	}
	return p.Lstat(ctx, u)
}

func (r *Router) Stat(ctx context.Context, u location.URL) (types.Metadata, error) {
	p, err := r.route("stat", u)
	if err != nil {
		return types.Metadata{}, err
	}
	return p.Stat(ctx, u)
}

func (r *Router) Readlink(ctx context.Context, u location.URL) (location.URL, error) {
	p, err := r.route("readlink", u)
	if err != nil {
		return location.URL{}, err
	}
	return p.Readlink(ctx, u)
}

func (r *Router) ReadDir(ctx context.Context, u location.URL) ([]types.DirEntry, error) {
	p, err := r.route("readdir", u)
	if err != nil {
		return nil, err
	}
	return p.ReadDir(ctx, u)
}

var _ Provider = (*Router)(nil)
