package location

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		name   string
		url    URL
		want   string
		wantOK bool
	}{
		{"plain file", New("/usr/bin/env"), "env", true},
		{"hidden file", New("/home/user/.env"), ".env", true},
		{"trailing slash cleaned", New("/home/user/"), "user", true},
		{"relative", New("bin"), "bin", true},
		{"root", New("/"), "", false},
		{"empty", New(""), "", false},
		{"dot", New("."), "", false},
		{"dot dot", New("a/../.."), "", false},
		{"remote", NewRemote("s3", "/photos/2024/cat.jpg"), "cat.jpg", true},
		{"remote root", NewRemote("s3", "/"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.url.FileName()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"/a/archive.tar.gz", "archive.tar", true},
		{"/a/.env", ".env", true},
		{"/a/.config.yaml", ".config", true},
		{"/a/Makefile", "Makefile", true},
		{"/a/trailing.", "trailing", true},
		{"/", "", false},
	}

	for _, tt := range tests {
		got, ok := New(tt.path).Stem()
		assert.Equal(t, tt.wantOK, ok, "Stem(%q)", tt.path)
		assert.Equal(t, tt.want, got, "Stem(%q)", tt.path)
	}
}

func TestParent(t *testing.T) {
	parent, ok := New("/home/user/notes.md").Parent()
	require.True(t, ok)
	assert.Equal(t, New("/home/user"), parent)

	parent, ok = New("/etc").Parent()
	require.True(t, ok)
	assert.Equal(t, New("/"), parent)

	_, ok = New("/").Parent()
	assert.False(t, ok, "root has no parent")

	parent, ok = NewRemote("s3", "/docs/a.txt").Parent()
	require.True(t, ok)
	assert.Equal(t, NewRemote("s3", "/docs"), parent)
	assert.Equal(t, "s3", parent.Scheme())
}

func TestParseAndString(t *testing.T) {
	u := Parse("s3://bucket-data/reports/q1.csv")
	assert.Equal(t, "s3", u.Scheme())
	assert.Equal(t, "/bucket-data/reports/q1.csv", u.Path())
	assert.False(t, u.IsLocal())
	assert.Equal(t, "s3://bucket-data/reports/q1.csv", u.String())

	local := Parse("/var/log/syslog")
	assert.True(t, local.IsLocal())
	assert.Equal(t, "/var/log/syslog", local.String())
	assert.Equal(t, New("/var/log/syslog"), local)

	assert.True(t, URL{}.IsZero())
	assert.False(t, local.IsZero())
}

func TestJoin(t *testing.T) {
	assert.Equal(t, New("/srv/www/index.html"), New("/srv/www").Join("index.html"))
	assert.Equal(t, NewRemote("s3", "/a/b"), NewRemote("s3", "/a").Join("b"))
}

func TestCompareIsTotalAndMatchesKeyOrder(t *testing.T) {
	urls := []URL{
		New("/b"),
		New("/a/b"),
		New("/a-c"),
		NewRemote("s3", "/a"),
		NewRemote("gs", "/z"),
		New("/a"),
		NewRemote("s", "/a"),
	}

	byCompare := append([]URL(nil), urls...)
	sort.Slice(byCompare, func(i, j int) bool { return Compare(byCompare[i], byCompare[j]) < 0 })

	byKey := append([]URL(nil), urls...)
	sort.Slice(byKey, func(i, j int) bool { return byKey[i].Key() < byKey[j].Key() })

	assert.Equal(t, byCompare, byKey)
	assert.Equal(t, New("/a"), byCompare[0])
	assert.Equal(t, New("/a-c"), byCompare[1], "'-' sorts before '/'")

	assert.Equal(t, 0, Compare(New("/x"), New("/x/")))
	assert.True(t, New("/a").Less(New("/b")))
	assert.False(t, New("/b").Less(New("/a")))
}
