package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
)

// Store owns the configurable storage root. Every path handed to callers and
// persisted in the database is relative to the root, forward-slash separated,
// so the root can be migrated without touching rows.
type Store struct {
	mu   sync.RWMutex
	root string
}

func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &Store{root: abs}, nil
}

func (s *Store) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Abs converts a root-relative path to an absolute one.
func (s *Store) Abs(rel string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Save writes the reader's content to the relative path, creating parent
// directories as needed. Returns the number of bytes written.
func (s *Store) Save(rel string, r io.Reader) (int64, error) {
	dst := s.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	size, err := io.Copy(out, r)
	if err != nil {
		os.Remove(dst)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	return size, nil
}

// CopyIn copies an external file into the store at the relative path.
func (s *Store) CopyIn(rel, srcPath string) (int64, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()
	return s.Save(rel, src)
}

func (s *Store) Open(rel string) (*os.File, error) {
	return os.Open(s.Abs(rel))
}

func (s *Store) Exists(rel string) bool {
	_, err := os.Stat(s.Abs(rel))
	return err == nil
}

func (s *Store) Remove(rel string) error {
	return os.Remove(s.Abs(rel))
}

// RemoveAll removes a whole subtree, e.g. a project's directory.
func (s *Store) RemoveAll(rel string) error {
	return os.RemoveAll(s.Abs(rel))
}

// MigrateRoot moves the entire file tree under a new root and swaps the root
// pointer. Rows keep their relative paths. Falls back to copy+delete when a
// rename crosses filesystems.
func (s *Store) MigrateRoot(newRoot string) error {
	abs, err := filepath.Abs(newRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve new storage root: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if abs == s.root {
		return nil
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return fmt.Errorf("failed to create new storage root: %w", err)
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("failed to read storage root: %w", err)
	}
	for _, entry := range entries {
		oldPath := filepath.Join(s.root, entry.Name())
		newPath := filepath.Join(abs, entry.Name())
		if err := os.Rename(oldPath, newPath); err != nil {
			if err := copyTree(oldPath, newPath); err != nil {
				return fmt.Errorf("failed to move %s: %w", entry.Name(), err)
			}
			if err := os.RemoveAll(oldPath); err != nil {
				return fmt.Errorf("failed to clean up %s: %w", entry.Name(), err)
			}
		}
	}

	s.root = abs
	return nil
}

func copyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dst, info.Mode())
	}
	if err := os.MkdirAll(dst, info.Mode()); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := copyTree(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// ItemOriginalPath builds the relative path for a stored attachment file.
func ItemOriginalPath(projectID, projectItemID, fileName string) string {
	return path.Join(projectID, "items", projectItemID, "original", fileName)
}

// ItemWatermarkedPath builds the relative path for a watermark derivative.
func ItemWatermarkedPath(projectID, projectItemID, fileName string) string {
	return path.Join(projectID, "items", projectItemID, "watermarked", fileName)
}

// ProjectDocumentPath builds the relative path for an exported project document PDF.
func ProjectDocumentPath(projectID, fileName string) string {
	return path.Join(projectID, "documents", fileName)
}

// SignaturePath builds the relative path for the user's signature image.
func SignaturePath(fileName string) string {
	return path.Join("user", "signature", fileName)
}
