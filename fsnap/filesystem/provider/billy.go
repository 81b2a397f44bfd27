package provider

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/ZanzyTHEbar/fsnap/fsnap/filesystem/common"
	"github.com/ZanzyTHEbar/fsnap/fsnap/filesystem/types"
	"github.com/ZanzyTHEbar/fsnap/fsnap/location"
)

// BillyProvider adapts a billy.Filesystem to Provider.
type BillyProvider struct {
	bfs      billy.Filesystem
	absolute bool // resolve relative paths against the working directory
}

// NewLocal creates a provider for the local disk, rooted at "/".
func NewLocal() *BillyProvider {
	return &BillyProvider{bfs: osfs.New("/"), absolute: true}
}

// NewMemory creates a provider over an empty in-memory filesystem.
func NewMemory() *BillyProvider {
	return NewBilly(memfs.New())
}

// NewBilly wraps an existing billy.Filesystem. Paths are passed through as-is.
func NewBilly(bfs billy.Filesystem) *BillyProvider {
	return &BillyProvider{bfs: bfs}
}

// Unwrap returns the underlying billy.Filesystem, e.g. to seed test fixtures.
func (p *BillyProvider) Unwrap() billy.Filesystem {
	return p.bfs
}

func (p *BillyProvider) path(ctx context.Context, op string, u location.URL) (string, error) {
	if err := common.ValidateContextCancellation(ctx); err != nil {
		return "", err
	}
	name := u.Path()
	if err := common.ValidatePath(name); err != nil {
		return "", common.NewIOError(op, u.String(), err)
	}
	if p.absolute && !filepath.IsAbs(name) {
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", common.NewIOError(op, u.String(), err)
		}
		name = abs
	}
	return filepath.ToSlash(name), nil
}

// Lstat returns metadata of u itself, even when u is a symlink.
func (p *BillyProvider) Lstat(ctx context.Context, u location.URL) (types.Metadata, error) {
	name, err := p.path(ctx, "lstat", u)
	if err != nil {
		return types.Metadata{}, err
	}
	info, err := p.bfs.Lstat(name)
	if err != nil {
		return types.Metadata{}, common.NewIOError("lstat", u.String(), err)
	}
	return types.FromFileInfo(info), nil
}

// Stat follows symlinks to the final target.
func (p *BillyProvider) Stat(ctx context.Context, u location.URL) (types.Metadata, error) {
	name, err := p.path(ctx, "stat", u)
	if err != nil {
		return types.Metadata{}, err
	}
	info, err := p.bfs.Stat(name)
	if err != nil {
		return types.Metadata{}, common.NewIOError("stat", u.String(), err)
	}
	return types.FromFileInfo(info), nil
}

// Readlink returns the stored link target, lexically cleaned like any other
// URL ("./x" becomes "x"). Relative targets are not joined with the link's
// directory.
func (p *BillyProvider) Readlink(ctx context.Context, u location.URL) (location.URL, error) {
	name, err := p.path(ctx, "readlink", u)
	if err != nil {
		return location.URL{}, err
	}
	target, err := p.bfs.Readlink(name)
	if err != nil {
		return location.URL{}, common.NewIOError("readlink", u.String(), err)
	}
	return u.WithPath(filepath.FromSlash(target)), nil
}

// ReadDir lists the direct children of u sorted by name.
func (p *BillyProvider) ReadDir(ctx context.Context, u location.URL) ([]types.DirEntry, error) {
	name, err := p.path(ctx, "readdir", u)
	if err != nil {
		return nil, err
	}
	infos, err := p.bfs.ReadDir(name)
	if err != nil {
		return nil, common.NewIOError("readdir", u.String(), err)
	}

	entries := make([]types.DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, types.DirEntry{Name: info.Name(), Meta: types.FromFileInfo(info)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

var _ Provider = (*BillyProvider)(nil)
