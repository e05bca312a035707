package filestore

import (
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
)

// LocalAdapter implements BlobBackend for local file system storage
type LocalAdapter struct {
	basePath string
}

// NewLocalAdapter creates a new local file system blob adapter
func NewLocalAdapter(basePath string) *LocalAdapter {
	return &LocalAdapter{basePath: basePath}
}

// fullPath validates a blob path and resolves it under the base directory.
func (l *LocalAdapter) fullPath(path string) (string, error) {
	if err := validatePath(path); err != nil {
		return "", err
	}
	return filepath.Join(l.basePath, filepath.FromSlash(path)), nil
}

// Save saves data to the specified path
func (l *LocalAdapter) Save(path string, data []byte) error {
	fullPath, err := l.fullPath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	return os.WriteFile(fullPath, data, 0644)
}

// SaveReader saves data from a reader to the specified path
func (l *LocalAdapter) SaveReader(path string, reader io.Reader) error {
	fullPath, err := l.fullPath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, reader)
	return err
}

// Load loads data from the specified path
func (l *LocalAdapter) Load(path string) ([]byte, error) {
	fullPath, err := l.fullPath(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(fullPath)
}

// LoadReader returns a reader for the specified path
func (l *LocalAdapter) LoadReader(path string) (io.ReadCloser, error) {
	fullPath, err := l.fullPath(path)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// Exists checks if a blob exists at the specified path
func (l *LocalAdapter) Exists(path string) (bool, error) {
	fullPath, err := l.fullPath(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete deletes the blob at the specified path
func (l *LocalAdapter) Delete(path string) error {
	fullPath, err := l.fullPath(path)
	if err != nil {
		return err
	}
	err = os.Remove(fullPath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// List lists blob paths under the specified prefix, recursively
func (l *LocalAdapter) List(path string) ([]string, error) {
	if err := validatePrefix(path); err != nil {
		return nil, err
	}
	root := filepath.Join(l.basePath, filepath.FromSlash(path))

	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.basePath, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// Locator returns an app-served retrieval URL; local blobs are streamed
// through the blob route rather than exposed directly.
func (l *LocalAdapter) Locator(path string) (string, error) {
	return "/api/blob/" + url.PathEscape(path), nil
}
