package types

import (
	"io/fs"
	"time"
)

// Kind classifies the object a Metadata describes
type Kind int

const (
	KindOther Kind = iota
	KindFile
	KindDir
	KindSymlink
)

// String converts Kind to its lowercase name
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// Metadata is the small slice of OS metadata the snapshot layer relies on.
// It is a plain value; providers translate their native info into it.
type Metadata struct {
	Kind    Kind        `json:"kind"`
	Size    int64       `json:"size"`
	Mode    fs.FileMode `json:"mode"`
	ModTime time.Time   `json:"mod_time"`
}

// FromFileInfo converts an fs.FileInfo. The kind is taken from the mode type
// bits, so un-followed info of a link yields KindSymlink.
func FromFileInfo(info fs.FileInfo) Metadata {
	mode := info.Mode()

	var kind Kind
	switch {
	case mode&fs.ModeSymlink != 0:
		kind = KindSymlink
	case mode.IsDir():
		kind = KindDir
	case mode.IsRegular():
		kind = KindFile
	default:
		kind = KindOther
	}

	return Metadata{
		Kind:    kind,
		Size:    info.Size(),
		Mode:    mode,
		ModTime: info.ModTime(),
	}
}

func (m Metadata) IsFile() bool    { return m.Kind == KindFile }
func (m Metadata) IsDir() bool     { return m.Kind == KindDir }
func (m Metadata) IsSymlink() bool { return m.Kind == KindSymlink }

// Len returns the byte length, clamping bogus negative sizes to zero.
func (m Metadata) Len() uint64 {
	if m.Size < 0 {
		return 0
	}
	return uint64(m.Size)
}

// DirEntry is one entry of a directory listing with its un-followed metadata
type DirEntry struct {
	Name string   `json:"name"`
	Meta Metadata `json:"meta"`
}
