// Package filestore is the content-addressed blob store for chat attachments. Blobs are keyed by
// the SHA-1 of their bytes and laid out as <workspace>/<h[0:3]>/<h[3:6]>/<h[6:]>.<ext>.
package filestore

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// URLPrefix is the public prefix of every file URL.
const URLPrefix = "/files/"

const (
	hashLen     = sha1.Size * 2
	shardWidth  = 3
	urlSegments = 4
)

var (
	// ErrFormat is returned when a file URL or path does not follow the sharded layout.
	ErrFormat = errors.New("invalid file identifier")
	// ErrNotFound is returned when a blob does not exist or the caller may not see it.
	ErrNotFound = errors.New("file not found")
)

// FileID identifies a stored blob. Two uploads of the same bytes into the same workspace with
// the same extension resolve to the same FileID.
type FileID struct {
	WorkspaceID int64
	Hash        string
	Ext         string
}

// NewFileID hashes data and takes the extension from the last dot-segment of filename's base name.
// An extension with characters outside [A-Za-z0-9_-] is dropped so the URL stays a plain path.
func NewFileID(workspaceID int64, filename string, data []byte) FileID {
	sum := sha1.Sum(data)
	return FileID{
		WorkspaceID: workspaceID,
		Hash:        hex.EncodeToString(sum[:]),
		Ext:         extension(filename),
	}
}

func extension(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}
	i := strings.LastIndexByte(filename, '.')
	if i < 0 || !safeExtension(filename[i+1:]) {
		return ""
	}
	return filename[i+1:]
}

func safeExtension(ext string) bool {
	for i := 0; i < len(ext); i++ {
		c := ext[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

// HashPath returns the workspace-relative sharded path, slash separated. A hash shorter than two
// shards yields short or empty segments.
func (f FileID) HashPath() string {
	return fmt.Sprintf("%d/%s/%s/%s.%s",
		f.WorkspaceID,
		shard(f.Hash, 0, shardWidth),
		shard(f.Hash, shardWidth, 2*shardWidth),
		shard(f.Hash, 2*shardWidth, len(f.Hash)),
		f.Ext,
	)
}

func shard(h string, from, to int) string {
	if from >= len(h) {
		return ""
	}
	return h[from:min(to, len(h))]
}

// URL returns the public URL of the blob.
func (f FileID) URL() string {
	return URLPrefix + f.HashPath()
}

// Path returns the blob location under baseDir.
func (f FileID) Path(baseDir string) string {
	return filepath.Join(baseDir, filepath.FromSlash(f.HashPath()))
}

// Validate reports whether Hash is a full lowercase hex SHA-1 digest and Ext uses only [A-Za-z0-9_-].
// ParseURL does not call it; lookups that touch the filesystem do.
func (f FileID) Validate() error {
	if len(f.Hash) != hashLen {
		return fmt.Errorf("%w: hash has %d characters, want %d", ErrFormat, len(f.Hash), hashLen)
	}
	for i := 0; i < len(f.Hash); i++ {
		c := f.Hash[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("%w: hash is not lowercase hex", ErrFormat)
		}
	}
	if !safeExtension(f.Ext) {
		return fmt.Errorf("%w: extension %q", ErrFormat, f.Ext)
	}
	return nil
}

// ParseURL is the inverse of URL. It checks the prefix, the segment count, the workspace id, and
// the presence of an extension dot, and rebuilds the hash from the three shard segments. The
// rebuilt hash is not checked for length or alphabet; see Validate.
func ParseURL(s string) (FileID, error) {
	rest, ok := strings.CutPrefix(s, URLPrefix)
	if !ok {
		return FileID{}, fmt.Errorf("%w: %q lacks %s prefix", ErrFormat, s, URLPrefix)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != urlSegments {
		return FileID{}, fmt.Errorf("%w: %q has %d segments, want %d", ErrFormat, rest, len(parts), urlSegments)
	}
	ws, err := strconv.ParseUint(parts[0], 10, 63)
	if err != nil {
		return FileID{}, fmt.Errorf("%w: invalid workspace id %q", ErrFormat, parts[0])
	}
	dot := strings.LastIndexByte(parts[3], '.')
	if dot < 0 {
		return FileID{}, fmt.Errorf("%w: invalid file name %q", ErrFormat, parts[3])
	}
	return FileID{
		WorkspaceID: int64(ws),
		Hash:        parts[1] + parts[2] + parts[3][:dot],
		Ext:         parts[3][dot+1:],
	}, nil
}
