package filestore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"chat-server/backend/internal/identity/domain"
)

const tmpDirName = ".tmp"

// AccessPolicy decides whether an identity may read blobs of a workspace.
type AccessPolicy interface {
	AllowWorkspace(ctx context.Context, id domain.Identity, workspaceID int64) (bool, error)
}

// SameWorkspace allows access only to the caller's own workspace.
type SameWorkspace struct{}

// AllowWorkspace implements AccessPolicy.
func (SameWorkspace) AllowWorkspace(_ context.Context, id domain.Identity, workspaceID int64) (bool, error) {
	return id.WorkspaceID == workspaceID, nil
}

// Store persists blobs under a base directory. It is safe for concurrent use; concurrent uploads
// of identical bytes each write a private temp file and rename it into place, so the final blob
// is always complete.
type Store struct {
	baseDir string
	tmpDir  string
	policy  AccessPolicy
}

// New creates the base and temp directories and returns a Store. policy may be nil for SameWorkspace.
func New(baseDir string, policy AccessPolicy) (*Store, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return nil, errors.New("filestore: base directory is required")
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	tmp := filepath.Join(abs, tmpDirName)
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create %s: %w", tmp, err)
	}
	if policy == nil {
		policy = SameWorkspace{}
	}
	return &Store{baseDir: abs, tmpDir: tmp, policy: policy}, nil
}

// BaseDir returns the absolute base directory.
func (s *Store) BaseDir() string { return s.baseDir }

// Put stores data for workspaceID and returns its FileID. If the blob already exists nothing is written.
func (s *Store) Put(ctx context.Context, workspaceID int64, filename string, data []byte) (FileID, error) {
	if err := ctx.Err(); err != nil {
		return FileID{}, err
	}
	fid := NewFileID(workspaceID, filename, data)
	dst := fid.Path(s.baseDir)

	if _, err := os.Stat(dst); err == nil {
		log.Printf("filestore: %s already exists, skipping write", fid.HashPath())
		return fid, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return FileID{}, fmt.Errorf("stat %s: %w", fid.HashPath(), err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return FileID{}, fmt.Errorf("create shard directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.tmpDir, "upload-*")
	if err != nil {
		return FileID{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return FileID{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return FileID{}, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		if _, statErr := os.Stat(dst); statErr == nil {
			_ = os.Remove(tmpPath)
			return fid, nil
		}
		cleanup()
		return FileID{}, fmt.Errorf("rename into place: %w", err)
	}
	return fid, nil
}

// Exists reports whether a well-formed fid has a blob on disk.
func (s *Store) Exists(fid FileID) bool {
	if fid.Validate() != nil {
		return false
	}
	info, err := os.Stat(fid.Path(s.baseDir))
	return err == nil && info.Mode().IsRegular()
}

// AuthorizeAccess returns ErrNotFound unless the policy lets id read workspaceID. Policy errors deny.
func (s *Store) AuthorizeAccess(ctx context.Context, id domain.Identity, workspaceID int64) error {
	ok, err := s.policy.AllowWorkspace(ctx, id, workspaceID)
	if err != nil {
		log.Printf("filestore: access policy failed for user %d workspace %d: %v", id.ID, workspaceID, err)
		return ErrNotFound
	}
	if !ok {
		log.Printf("filestore: user %d (workspace %d) denied access to workspace %d", id.ID, id.WorkspaceID, workspaceID)
		return ErrNotFound
	}
	return nil
}

// Open authorizes id for fid's workspace, validates fid, and opens the blob. A workspace mismatch,
// a malformed hash, and a missing blob all return ErrNotFound.
func (s *Store) Open(ctx context.Context, id domain.Identity, fid FileID) (*os.File, error) {
	if err := s.AuthorizeAccess(ctx, id, fid.WorkspaceID); err != nil {
		return nil, err
	}
	if err := fid.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	f, err := os.Open(fid.Path(s.baseDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open %s: %w", fid.HashPath(), err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", fid.HashPath(), err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, ErrNotFound
	}
	return f, nil
}
