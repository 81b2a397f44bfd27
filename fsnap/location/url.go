// Package location defines URL, the comparable and totally ordered identity
// of a filesystem entry, either on the local disk or behind a remote scheme.
package location

import (
	"path"
	"path/filepath"
	"strings"
)

// SchemeSeparator splits a remote scheme from its path in the string form.
const SchemeSeparator = "://"

// URL names a filesystem location. The zero value is the empty local path.
//
// Local URLs have no scheme and keep an OS specific path cleaned with
// filepath.Clean. Remote URLs keep a slash separated absolute path.
// URL values are comparable with == and ordered by Compare.
type URL struct {
	scheme string
	path   string
}

// New returns a local URL for the given OS path.
func New(p string) URL {
	if p == "" {
		return URL{}
	}
	return URL{path: filepath.Clean(p)}
}

// NewRemote returns a URL for path p under the given scheme. An empty scheme
// yields a local URL.
func NewRemote(scheme, p string) URL {
	if scheme == "" {
		return New(p)
	}
	return URL{scheme: strings.ToLower(scheme), path: cleanRemote(p)}
}

// Parse accepts either a plain OS path or "scheme://path".
func Parse(raw string) URL {
	if scheme, rest, ok := strings.Cut(raw, SchemeSeparator); ok && scheme != "" {
		return NewRemote(scheme, rest)
	}
	return New(raw)
}

func cleanRemote(p string) string {
	return path.Clean("/" + strings.TrimLeft(p, "/"))
}

func (u URL) Scheme() string { return u.scheme }
func (u URL) Path() string   { return u.path }
func (u URL) IsLocal() bool  { return u.scheme == "" }
func (u URL) IsZero() bool   { return u == URL{} }

// String returns the path for local URLs and scheme://path otherwise.
func (u URL) String() string {
	if u.IsLocal() {
		return u.path
	}
	return u.scheme + SchemeSeparator + strings.TrimPrefix(u.path, "/")
}

// Key is the byte string the URL sorts by. Byte-wise order of keys matches
// Compare because the NUL separator sorts below every scheme byte.
func (u URL) Key() string {
	return u.scheme + "\x00" + u.path
}

// Compare orders URLs by scheme, then by path, both byte-wise.
func Compare(a, b URL) int {
	if c := strings.Compare(a.scheme, b.scheme); c != 0 {
		return c
	}
	return strings.Compare(a.path, b.path)
}

// Less reports whether u sorts before other.
func (u URL) Less(other URL) bool { return Compare(u, other) < 0 }

func (u URL) separator() string {
	if u.IsLocal() {
		return string(filepath.Separator)
	}
	return "/"
}

// FileName returns the final path segment. There is none for roots, empty
// paths and the "." and ".." components.
func (u URL) FileName() (string, bool) {
	p := u.path
	if p == "" {
		return "", false
	}
	if u.IsLocal() {
		p = strings.TrimPrefix(p, filepath.VolumeName(p))
	}
	p = strings.TrimRight(p, u.separator())
	if p == "" {
		return "", false
	}

	name := p[strings.LastIndex(p, u.separator())+1:]
	if name == "" || name == "." || name == ".." {
		return "", false
	}
	return name, true
}

// Stem returns the file name without its final extension. A leading dot is
// part of the name, so ".env" has stem ".env".
func (u URL) Stem() (string, bool) {
	name, ok := u.FileName()
	if !ok {
		return "", false
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i], true
	}
	return name, true
}

// Parent returns the URL of the containing directory.
func (u URL) Parent() (URL, bool) {
	if _, ok := u.FileName(); !ok {
		return URL{}, false
	}
	if u.IsLocal() {
		return URL{path: filepath.Dir(u.path)}, true
	}
	return URL{scheme: u.scheme, path: path.Dir(u.path)}, true
}

// Join appends name as a child of u.
func (u URL) Join(name string) URL {
	if u.IsLocal() {
		return New(filepath.Join(u.path, name))
	}
	return URL{scheme: u.scheme, path: path.Join(u.path, name)}
}

// WithPath returns a URL with the same scheme as u and the given path.
func (u URL) WithPath(p string) URL {
	return NewRemote(u.scheme, p)
}
