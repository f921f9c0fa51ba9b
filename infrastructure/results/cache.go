package results

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ahrav/medalbound/internal/ports"
)

var _ ports.ArtifactCache = (*FileCache)(nil)

// FileCache stores downloaded documents as files below a root directory.
// Keys are slash-separated relative paths such as "imo-2019/IMO_Individual.xml".
type FileCache struct {
	root string
}

// NewFileCache returns a cache rooted at dir. The directory is created on
// the first Set.
func NewFileCache(dir string) *FileCache {
	return &FileCache{root: dir}
}

// Root returns the cache directory.
func (c *FileCache) Root() string { return c.root }

func (c *FileCache) path(key string) (string, error) {
	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: key %q escapes the cache directory", ports.ErrCacheCorrupted, key)
	}
	return filepath.Join(c.root, rel), nil
}

// Get implements ports.ArtifactCache.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	p, err := c.path(key)
	if err != nil {
		return nil, false, ports.NewCacheError(key, "Get", err)
	}

	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, ports.NewCacheError(key, "Get", err)
	}
	return data, true, nil
}

// Set implements ports.ArtifactCache. The document is written to a
// temporary file and renamed into place so readers never see a partial
// download.
func (c *FileCache) Set(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := c.path(key)
	if err != nil {
		return ports.NewCacheError(key, "Set", err)
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ports.NewCacheError(key, "Set", err)
	}
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return ports.NewCacheError(key, "Set", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return ports.NewCacheError(key, "Set", err)
	}
	if err := tmp.Close(); err != nil {
		return ports.NewCacheError(key, "Set", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return ports.NewCacheError(key, "Set", err)
	}
	return nil
}
