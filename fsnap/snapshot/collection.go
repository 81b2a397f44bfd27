package snapshot

import (
	"path/filepath"
	"strings"

	"github.com/armon/go-radix"

	"github.com/ZanzyTHEbar/fsnap/fsnap/location"
)

// Collection is an ordered set of Files keyed by URL.
//
// Iteration always follows location.Compare order regardless of the order
// entries were inserted in. Inserting a File whose URL is already present
// replaces the previous entry. A Collection is not safe for concurrent
// mutation.
type Collection struct {
	tree *radix.Tree // URL.Key() -> File
}

// NewCollection creates an empty Collection
func NewCollection() *Collection {
	return &Collection{tree: radix.New()}
}

// Singleton wraps one File into a Collection keyed by its URL.
func Singleton(f File) *Collection {
	c := NewCollection()
	c.Insert(f)
	return c
}

// Insert adds f, replacing any entry with the same URL. It reports whether an
// entry was replaced.
func (c *Collection) Insert(f File) bool {
	_, replaced := c.tree.Insert(f.url.Key(), f)
	return replaced
}

// Get returns the File stored for u
func (c *Collection) Get(u location.URL) (File, bool) {
	v, ok := c.tree.Get(u.Key())
	if !ok {
		return File{}, false
	}
	return v.(File), true
}

// Remove deletes the entry for u and reports whether it existed
func (c *Collection) Remove(u location.URL) bool {
	_, ok := c.tree.Delete(u.Key())
	return ok
}

func (c *Collection) Len() int {
	return c.tree.Len()
}

// Walk visits entries in URL order until fn returns true.
func (c *Collection) Walk(fn func(f File) bool) {
	c.tree.Walk(func(_ string, v interface{}) bool {
		return fn(v.(File))
	})
}

// Under visits the entries strictly below dir, at any depth, in URL order.
func (c *Collection) Under(dir location.URL, fn func(f File) bool) {
	self := dir.Key()
	prefix := self
	sep := "/"
	if dir.IsLocal() {
		sep = string(filepath.Separator)
	}
	if !strings.HasSuffix(prefix, sep) {
		prefix += sep
	}

	c.tree.WalkPrefix(prefix, func(key string, v interface{}) bool {
		if key == self {
			return false // a root already ends in the separator
		}
		return fn(v.(File))
	})
}

// Files returns every entry in URL order
func (c *Collection) Files() []File {
	files := make([]File, 0, c.Len())
	c.Walk(func(f File) bool {
		files = append(files, f)
		return false
	})
	return files
}

// URLs returns the keys in URL order
func (c *Collection) URLs() []location.URL {
	urls := make([]location.URL, 0, c.Len())
	c.Walk(func(f File) bool {
		urls = append(urls, f.url)
		return false
	})
	return urls
}

// Merge inserts every entry of other into c. Entries of other win on
// conflict. It returns the number of replaced entries.
func (c *Collection) Merge(other *Collection) int {
	if other == nil {
		return 0
	}
	replaced := 0
	other.Walk(func(f File) bool {
		if c.Insert(f) {
			replaced++
		}
		return false
	})
	return replaced
}

// Clone returns an independent copy. Files are values, so nothing is shared.
func (c *Collection) Clone() *Collection {
	clone := NewCollection()
	clone.Merge(c)
	return clone
}
