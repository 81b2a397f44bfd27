// Package snapshot resolves filesystem locations into immutable File
// snapshots and aggregates them into URL-ordered collections.
package snapshot

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/ZanzyTHEbar/fsnap/fsnap/filesystem/types"
	"github.com/ZanzyTHEbar/fsnap/fsnap/location"
)

// File is a point-in-time snapshot of one filesystem entry.
//
// A File never changes after Resolve returns it. When the entry is a symlink,
// Meta describes the final target if following the link succeeded and the
// link itself otherwise; IsLink always reflects the un-followed entry.
type File struct {
	url      location.URL
	meta     types.Metadata
	length   uint64
	linkTo   location.URL
	hasLink  bool
	isLink   bool
	isHidden bool
}

func (f File) URL() location.URL    { return f.url }
func (f File) Meta() types.Metadata { return f.meta }
func (f File) Length() uint64       { return f.length }
func (f File) IsLink() bool         { return f.isLink }
func (f File) IsHidden() bool       { return f.isHidden }
func (f File) IsFile() bool         { return f.meta.IsFile() }
func (f File) IsDir() bool          { return f.meta.IsDir() }

// LinkTo returns the raw symlink target. It is absent for non-links and for
// links whose target could not be read.
func (f File) LinkTo() (location.URL, bool) {
	return f.linkTo, f.hasLink
}

// Name returns the final path segment, if any.
func (f File) Name() (string, bool) { return f.url.FileName() }

func (f File) Stem() (string, bool) { return f.url.Stem() }

func (f File) Parent() (location.URL, bool) { return f.url.Parent() }

// MarshalZerologObject implements zerolog.LogObjectMarshaler
func (f File) MarshalZerologObject(e *zerolog.Event) {
	e.Str("url", f.url.String()).
		Str("kind", f.meta.Kind.String()).
		Uint64("length", f.length).
		Bool("link", f.isLink).
		Bool("hidden", f.isHidden)
	if f.hasLink {
		e.Str("link_to", f.linkTo.String())
	}
}

// hiddenName reports whether u names a dot-file
func hiddenName(u location.URL) bool {
	name, ok := u.FileName()
	return ok && strings.HasPrefix(name, ".")
}

var _ zerolog.LogObjectMarshaler = File{}
