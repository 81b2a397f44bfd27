package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/fsnap/fsnap/config"
	"github.com/ZanzyTHEbar/fsnap/fsnap/filesystem/common"
	"github.com/ZanzyTHEbar/fsnap/fsnap/filesystem/provider"
)

func testConfig() *config.Config {
	return &config.Config{
		Log:      config.LogConfig{Level: "error", Format: "json"},
		Resolver: config.ResolverConfig{MaxWorkers: 4, Timeout: time.Second},
	}
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(context.Background(), nil, nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Resolver.MaxWorkers = 0
	_, err = New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "maxWorkers")
}

func TestFileSystemLocalDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("abc"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(dir, "a.txt"), filepath.Join(dir, "link")))

	reg := prometheus.NewRegistry()
	fsys, err := New(context.Background(), testConfig(), reg)
	require.NoError(t, err)

	ctx := context.Background()
	f, err := fsys.Resolve(ctx, filepath.Join(dir, "link"))
	require.NoError(t, err)
	assert.True(t, f.IsLink())
	assert.Equal(t, uint64(3), f.Length())

	l, err := fsys.Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 4, l.Files.Len())

	cached, ok := fsys.Listing(dir)
	require.True(t, ok)
	assert.Equal(t, l.Ticket, cached.Ticket)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("abcdef"), 0o644))
	f, err = fsys.Refresh(ctx, filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, uint64(6), f.Length())

	_, err = fsys.Resolve(ctx, filepath.Join(dir, "nope"))
	assert.True(t, common.IsNotFound(err))

	count, err := testutil.GatherAndCount(reg, "fsnap_resolutions_total")
	require.NoError(t, err)
	assert.Positive(t, count)
}

func TestFileSystemWithProvider(t *testing.T) {
	p := provider.NewMemory()
	bfs := p.Unwrap()
	require.NoError(t, util.WriteFile(bfs, "/x/one", []byte("1"), 0o644))
	require.NoError(t, util.WriteFile(bfs, "/x/two", []byte("22"), 0o644))

	fsys := NewWithProvider(p, testConfig(), zerolog.Nop(), nil)

	coll, err := fsys.ResolveAll(context.Background(), []string{"/x/two", "/x/one", "/x/three"})
	require.Error(t, err)
	assert.Equal(t, 2, coll.Len())
	assert.Equal(t, "/x/one", coll.URLs()[0].Path())

	m := fsys.Metrics().GetMetrics()
	assert.Equal(t, int64(3), m["total_operations"])
	assert.Equal(t, int64(1), m["failed_ops"])
	assert.Same(t, fsys.Resolver().Metrics(), fsys.Metrics())
	assert.NotNil(t, fsys.Listings())
	assert.Equal(t, 4, fsys.Config().Resolver.MaxWorkers)
}
