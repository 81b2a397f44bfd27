// Package listing caches one level of directory contents as snapshot
// collections and keeps them current by merging re-resolved entries.
package listing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ZanzyTHEbar/fsnap/fsnap/filesystem/common"
	"github.com/ZanzyTHEbar/fsnap/fsnap/location"
	"github.com/ZanzyTHEbar/fsnap/fsnap/snapshot"
)

// ErrStaleTicket is returned when an update targets a listing that has been
// reloaded or dropped since the update was prepared.
var ErrStaleTicket = errors.New("stale listing ticket")

// Listing is the cached content of one directory.
type Listing struct {
	Dir      location.URL
	Ticket   uuid.UUID
	Files    *snapshot.Collection
	LoadedAt time.Time
}

func (l *Listing) copy() Listing {
	return Listing{Dir: l.Dir, Ticket: l.Ticket, Files: l.Files.Clone(), LoadedAt: l.LoadedAt}
}

// Cache holds the latest Listing per directory. It is safe for concurrent use.
type Cache struct {
	resolver *snapshot.Resolver
	logger   zerolog.Logger

	mu       sync.RWMutex
	listings map[location.URL]*Listing
}

// NewCache creates an empty cache reading through r
func NewCache(r *snapshot.Resolver, logger zerolog.Logger) *Cache {
	return &Cache{
		resolver: r,
		logger:   logger,
		listings: make(map[location.URL]*Listing),
	}
}

// Load reads the direct children of dir, resolves them and replaces the
// cached listing under a fresh ticket. Sub-directories are not descended.
func (c *Cache) Load(ctx context.Context, dir location.URL) (Listing, error) {
	start := time.Now()

	entries, err := c.resolver.Provider().ReadDir(ctx, dir)
	if err != nil {
		if ctx.Err() != nil {
			return Listing{}, ctx.Err()
		}
		return Listing{}, fmt.Errorf("load listing: %w", common.NewIOError("readdir", dir.String(), err))
	}

	files, err := c.resolver.ResolveEntries(ctx, dir, entries)
	if err != nil {
		return Listing{}, fmt.Errorf("load listing %s: %w", dir, err)
	}

	l := &Listing{Dir: dir, Ticket: uuid.New(), Files: files, LoadedAt: time.Now()}

	c.mu.Lock()
	c.listings[dir] = l
	out := l.copy()
	c.mu.Unlock()

	c.logger.Debug().
		Str("dir", dir.String()).
		Int("entries", files.Len()).
		Str("ticket", l.Ticket.String()).
		Dur("took", time.Since(start)).
		Msg("Listing loaded")

	return out, nil
}

// Apply merges files into the listing of dir if ticket is still current.
// Entries in files replace cached entries with the same URL.
func (c *Cache) Apply(dir location.URL, ticket uuid.UUID, files *snapshot.Collection) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.listings[dir]
	if !ok || l.Ticket != ticket {
		return fmt.Errorf("apply to %s: %w", dir, ErrStaleTicket)
	}
	l.Files.Merge(files)
	return nil
}

// Refresh re-resolves u and merges the result into its parent's listing when
// that listing is cached. If u no longer exists it is dropped from the listing
// and the not-found error is returned.
func (c *Cache) Refresh(ctx context.Context, u location.URL) (snapshot.File, error) {
	f, err := c.resolver.Resolve(ctx, u)
	parent, hasParent := u.Parent()

	if err != nil {
		if hasParent && common.IsNotFound(err) {
			c.mu.Lock()
			if l, ok := c.listings[parent]; ok && l.Files.Remove(u) {
				c.logger.Debug().Str("url", u.String()).Msg("Dropped vanished entry")
			}
			c.mu.Unlock()
		}
		return snapshot.File{}, err
	}

	if hasParent {
		c.mu.Lock()
		if l, ok := c.listings[parent]; ok {
			l.Files.Merge(snapshot.Singleton(f))
		}
		c.mu.Unlock()
	}
	return f, nil
}

// Get returns a copy of the cached listing for dir
func (c *Cache) Get(dir location.URL) (Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l, ok := c.listings[dir]
	if !ok {
		return Listing{}, false
	}
	return l.copy(), true
}

// Invalidate drops the listing for dir. Outstanding tickets become stale.
func (c *Cache) Invalidate(dir location.URL) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.listings[dir]
	delete(c.listings, dir)
	return ok
}

// Dirs returns the cached directories in URL order
func (c *Cache) Dirs() []location.URL {
	c.mu.RLock()
	dirs := make([]location.URL, 0, len(c.listings))
	for d := range c.listings {
		dirs = append(dirs, d)
	}
	c.mu.RUnlock()

	slices.SortFunc(dirs, location.Compare)
	return dirs
}
