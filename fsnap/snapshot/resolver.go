package snapshot

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/ZanzyTHEbar/fsnap/fsnap/filesystem/common"
	"github.com/ZanzyTHEbar/fsnap/fsnap/filesystem/provider"
	"github.com/ZanzyTHEbar/fsnap/fsnap/filesystem/types"
	"github.com/ZanzyTHEbar/fsnap/fsnap/location"
)

// Resolver turns locations into File snapshots through a Provider.
//
// Only the initial un-followed lookup can fail a resolution. For symlinks the
// follow-through lookup and the target read are best effort: their failures
// are logged at debug level and counted as degraded, never returned.
type Resolver struct {
	provider   provider.Provider
	logger     zerolog.Logger
	metrics    *Metrics
	timeout    time.Duration
	maxWorkers int
}

// Option configures a Resolver
type Option func(*Resolver)

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(r *Resolver) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithTimeout bounds every single resolution. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d >= 0 {
			r.timeout = d
		}
	}
}

// WithMaxWorkers bounds the goroutines used by ResolveAll and ResolveEntries
func WithMaxWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxWorkers = n
		}
	}
}

// NewResolver creates a Resolver reading through p
func NewResolver(p provider.Provider, opts ...Option) *Resolver {
	r := &Resolver{
		provider: p,
		logger:   zerolog.Nop(),
		// CPU cores * 2 for I/O bound work, clamped to [4, 32]
		maxWorkers: min(max(runtime.NumCPU()*2, 4), 32),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = NewMetrics(nil)
	}
	return r
}

func (r *Resolver) Provider() provider.Provider { return r.provider }

func (r *Resolver) Metrics() *Metrics { return r.metrics }

func (r *Resolver) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return ctx, func() {}
}

// Resolve snapshots the entry at u.
//
// The returned error is a *common.IOError when the entry itself cannot be
// looked up, or ctx.Err() when the resolution was abandoned. In both cases
// no File is produced.
func (r *Resolver) Resolve(ctx context.Context, u location.URL) (File, error) {
	start := time.Now()
	ctx, cancel := r.withDeadline(ctx)
	defer cancel()

	if err := common.ValidateContextCancellation(ctx); err != nil {
		return File{}, r.abandon(start, u, err)
	}

	meta, err := r.provider.Lstat(ctx, u)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return File{}, r.abandon(start, u, ctxErr)
		}
		err = common.NewIOError("lstat", u.String(), err)
		r.logger.Debug().Err(err).Str("url", u.String()).Msg("Resolution failed")
		r.metrics.Observe(start, OutcomeFailed)
		return File{}, err
	}

	return r.complete(ctx, start, u, meta)
}

// ResolveWithMeta snapshots u using meta as its un-followed metadata, e.g.
// from a directory listing. It only fails when ctx is done.
func (r *Resolver) ResolveWithMeta(ctx context.Context, u location.URL, meta types.Metadata) (File, error) {
	start := time.Now()
	ctx, cancel := r.withDeadline(ctx)
	defer cancel()

	if err := common.ValidateContextCancellation(ctx); err != nil {
		return File{}, r.abandon(start, u, err)
	}
	return r.complete(ctx, start, u, meta)
}

func (r *Resolver) complete(ctx context.Context, start time.Time, u location.URL, meta types.Metadata) (File, error) {
	f := File{
		url:    u,
		meta:   meta,
		isLink: meta.IsSymlink(),
	}
	outcome := OutcomeOK

	if f.isLink {
		if err := common.ValidateContextCancellation(ctx); err != nil {
			return File{}, r.abandon(start, u, err)
		}
		target, err := r.provider.Stat(ctx, u)
		switch {
		case err == nil:
			f.meta = target
		case ctx.Err() != nil:
			return File{}, r.abandon(start, u, ctx.Err())
		default:
			outcome = OutcomeDegraded
			r.logger.Debug().Err(err).Str("url", u.String()).Msg("Symlink target not reachable, keeping link metadata")
		}

		if err := common.ValidateContextCancellation(ctx); err != nil {
			return File{}, r.abandon(start, u, err)
		}
		linkTo, err := r.provider.Readlink(ctx, u)
		switch {
		case err == nil:
			f.linkTo, f.hasLink = linkTo, true
		case ctx.Err() != nil:
			return File{}, r.abandon(start, u, ctx.Err())
		default:
			outcome = OutcomeDegraded
			r.logger.Debug().Err(err).Str("url", u.String()).Msg("Symlink target unreadable")
		}
	}

	f.length = f.meta.Len()
	f.isHidden = hiddenName(u)

	r.metrics.Observe(start, outcome)
	r.logger.Trace().Object("file", f).Str("outcome", string(outcome)).Msg("Resolved entry")
	return f, nil
}

func (r *Resolver) abandon(start time.Time, u location.URL, err error) error {
	r.metrics.Observe(start, OutcomeCanceled)
	r.logger.Debug().Err(err).Str("url", u.String()).Msg("Resolution abandoned")
	return err
}

// ResolveAll resolves urls concurrently into one Collection.
//
// Entries that fail are left out and their errors are joined in input order.
// The Collection is returned even when err is non-nil. If ctx is done the
// error is ctx.Err().
func (r *Resolver) ResolveAll(ctx context.Context, urls []location.URL) (*Collection, error) {
	return r.resolveMany(ctx, len(urls), func(ctx context.Context, i int) (File, error) {
		return r.Resolve(ctx, urls[i])
	})
}

// ResolveEntries resolves the children of dir from listing entries without a
// second un-followed lookup per entry.
func (r *Resolver) ResolveEntries(ctx context.Context, dir location.URL, entries []types.DirEntry) (*Collection, error) {
	return r.resolveMany(ctx, len(entries), func(ctx context.Context, i int) (File, error) {
		return r.ResolveWithMeta(ctx, dir.Join(entries[i].Name), entries[i].Meta)
	})
}

func (r *Resolver) resolveMany(ctx context.Context, n int, resolve func(context.Context, int) (File, error)) (*Collection, error) {
	coll := NewCollection()
	errs := make([]error, n)
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(r.maxWorkers).WithContext(ctx)
	for i := 0; i < n; i++ {
		p.Go(func(ctx context.Context) error {
			f, err := resolve(ctx, i)
			if err != nil {
				errs[i] = err
				return nil
			}
			mu.Lock()
			coll.Insert(f)
			mu.Unlock()
			return nil
		})
	}
	_ = p.Wait()

	if err := ctx.Err(); err != nil {
		return coll, err
	}
	return coll, errors.Join(errs...)
}
