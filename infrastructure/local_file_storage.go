// infrastructure/local_file_storage.go
package infrastructure

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/vitovidale/video-upload-gateway/domain"
)

const msgOutsideRoot = "Cannot store file outside storage root"

// LocalFileStorage writes uploads as direct children of a single root
// directory. The root is resolved to an absolute path once, at construction.
type LocalFileStorage struct {
	root   string
	logger hclog.Logger
}

var _ domain.FileStorageService = (*LocalFileStorage)(nil)

// NewLocalFileStorage makes sure location exists and is a directory.
func NewLocalFileStorage(location string, logger hclog.Logger) (*LocalFileStorage, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	root, err := filepath.Abs(location)
	if err != nil {
		return nil, fmt.Errorf("could not resolve storage location %q: %w", location, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("could not initialize storage location: %w", err)
	}
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("could not initialize storage location: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("storage location %q is not a directory", root)
	}
	logger.Info("storage root ready", "path", root)
	return &LocalFileStorage{root: root, logger: logger}, nil
}

func (s *LocalFileStorage) Root() string { return s.root }

// ResolvePath joins filename onto the root and rejects the result unless its
// parent is exactly the root.
func (s *LocalFileStorage) ResolvePath(filename string) (string, error) {
	dst := filepath.Join(s.root, filename)
	if filepath.Dir(dst) != s.root {
		return "", domain.Internal(msgOutsideRoot, fmt.Errorf("%q resolves outside %q", filename, s.root))
	}
	return dst, nil
}

// Save streams src into the root under filename. Bytes go to a hidden temp
// file first and are renamed over the destination, replacing any existing file.
func (s *LocalFileStorage) Save(src io.Reader, filename string) error {
	dst, err := s.ResolvePath(filename)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, "."+filename+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", filename, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filename, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("rename %s: %w", filename, err)
	}
	return nil
}

// Delete removes filename from the root and reports whether a file was
// removed. Failures are logged and reported as false.
func (s *LocalFileStorage) Delete(filename string) bool {
	dst, err := s.ResolvePath(filename)
	if err != nil {
		s.logger.Warn("refusing to delete outside storage root", "filename", filename)
		return false
	}

	fi, err := os.Lstat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	if err != nil {
		s.logger.Warn("stat before delete failed", "filename", filename, "error", err)
		return false
	}
	if !fi.Mode().IsRegular() {
		s.logger.Warn("refusing to delete non-regular file", "filename", filename, "mode", fi.Mode().String())
		return false
	}

	if err := os.Remove(dst); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("delete failed", "filename", filename, "error", err)
		}
		return false
	}
	return true
}

// CheckWritable creates and removes a probe file in the root.
func (s *LocalFileStorage) CheckWritable() error {
	f, err := os.CreateTemp(s.root, ".probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
