package filestore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloHash = "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"

func TestNewFileID_HelloWorld(t *testing.T) {
	fid := NewFileID(1, "test.txt", []byte("hello world"))

	assert.Equal(t, int64(1), fid.WorkspaceID)
	assert.Equal(t, helloHash, fid.Hash)
	assert.Equal(t, "txt", fid.Ext)
	assert.Equal(t, "1/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.txt", fid.HashPath())
	assert.Equal(t, "/files/1/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.txt", fid.URL())
	assert.Equal(t,
		filepath.Join("/data", "1", "2aa", "e6c", "35c94fcfb415dbe95f408b9ce91ee846ed.txt"),
		fid.Path("/data"))
}

func TestNewFileID_Extension(t *testing.T) {
	testCases := []struct {
		filename string
		want     string
	}{
		{"test.txt", "txt"},
		{"archive.tar.gz", "gz"},
		{"README", ""},
		{"", ""},
		{".bashrc", "bashrc"},
		{"trailing.", ""},
		{"dir.v2/photo.png", "png"},
		{"dir.v2/noext", ""},
		{`C:\Users\me\report.pdf`, "pdf"},
		{"snake_case.file-v2", "file-v2"},
		{"a.t#x", ""},
		{"a.t?x", ""},
		{"a.t x", ""},
		{"a.t%2Fx", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.filename, func(t *testing.T) {
			assert.Equal(t, tc.want, NewFileID(1, tc.filename, []byte("x")).Ext)
		})
	}
}

func TestNewFileID_ExtensionNotHashed(t *testing.T) {
	a := NewFileID(1, "a.txt", []byte("same"))
	b := NewFileID(1, "b.md", []byte("same"))
	c := NewFileID(2, "a.txt", []byte("same"))

	assert.Equal(t, a.Hash, b.Hash)
	assert.NotEqual(t, a.HashPath(), b.HashPath())
	assert.Equal(t, a.Hash, c.Hash)
	assert.NotEqual(t, a.HashPath(), c.HashPath())
}

func TestParseURL_RoundTrip(t *testing.T) {
	inputs := []struct {
		ws   int64
		name string
		data []byte
	}{
		{1, "test.txt", []byte("hello world")},
		{42, "photo.jpeg", []byte{0xff, 0xd8, 0xff, 0x00}},
		{0, "noext", []byte("")},
		{9223372036854775807, "big.bin", []byte("max workspace")},
		{7, "a.b.c", []byte("multi dot")},
	}
	for _, in := range inputs {
		fid := NewFileID(in.ws, in.name, in.data)
		got, err := ParseURL(fid.URL())
		require.NoError(t, err, fid.URL())
		assert.Equal(t, fid, got)
		assert.NoError(t, got.Validate())
	}
}

func TestParseURL_FormatErrors(t *testing.T) {
	testCases := []struct {
		name string
		url  string
	}{
		{"too few segments", "/files/1/ab"},
		{"wrong prefix", "/notfiles/1/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.txt"},
		{"no leading slash", "files/1/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.txt"},
		{"too many segments", "/files/1/2aa/e6c/35c/94fcfb415dbe95f408b9ce91ee846ed.txt"},
		{"negative workspace", "/files/-1/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.txt"},
		{"signed workspace", "/files/+1/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.txt"},
		{"non-numeric workspace", "/files/abc/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.txt"},
		{"workspace overflow", "/files/9223372036854775808/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.txt"},
		{"no extension dot", "/files/1/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed"},
		{"empty", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseURL(tc.url)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat), "want ErrFormat, got %v", err)
		})
	}
}

func TestParseURL_ErrorNamesWorkspaceSegment(t *testing.T) {
	_, err := ParseURL("/files/ws9/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ws9"`)
}

func TestParseURL_SplitsOnLastDot(t *testing.T) {
	fid, err := ParseURL("/files/1/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "gz", fid.Ext)
	assert.Equal(t, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed.tar", fid.Hash)
	assert.Error(t, fid.Validate())
}

func TestParseURL_LenientHash(t *testing.T) {
	testCases := []struct {
		name string
		url  string
		hash string
	}{
		{"short", "/files/1/a/b/c.txt", "abc"},
		{"non-hex", "/files/1/zzz/yyy/xxxx.txt", "zzzyyyxxxx"},
		{"uppercase", "/files/1/2AA/E6C/35C94FCFB415DBE95F408B9CE91EE846ED.txt", "2AAE6C35C94FCFB415DBE95F408B9CE91EE846ED"},
		{"empty segments", "/files/1///.txt", ""},
		{"dot-dot shard", "/files/1/../../etc.passwd", "....etc"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fid, err := ParseURL(tc.url)
			require.NoError(t, err)
			assert.Equal(t, tc.hash, fid.Hash)
			assert.True(t, errors.Is(fid.Validate(), ErrFormat))
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, FileID{WorkspaceID: 1, Hash: helloHash, Ext: "txt"}.Validate())
	assert.NoError(t, FileID{WorkspaceID: 1, Hash: helloHash, Ext: ""}.Validate())
	assert.Error(t, FileID{WorkspaceID: 1, Hash: helloHash[:39], Ext: "txt"}.Validate())
	assert.Error(t, FileID{WorkspaceID: 1, Hash: helloHash, Ext: "../x"}.Validate())
	assert.Error(t, FileID{WorkspaceID: 1, Hash: helloHash, Ext: "t#x"}.Validate())
}

func TestHashPath_ShortHash(t *testing.T) {
	testCases := []struct {
		hash string
		want string
	}{
		{"", "1///.txt"},
		{"ab", "1/ab//.txt"},
		{"abcde", "1/abc/de/.txt"},
		{"abcdef", "1/abc/def/.txt"},
	}
	for _, tc := range testCases {
		t.Run(tc.hash, func(t *testing.T) {
			fid := FileID{WorkspaceID: 1, Hash: tc.hash, Ext: "txt"}
			assert.Equal(t, tc.want, fid.HashPath())
			assert.Equal(t, URLPrefix+tc.want, fid.URL())
		})
	}
}
