package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"psitool/internal/fsutil"
	"psitool/internal/logger"
	"psitool/internal/rvuid"
)

// cachedHash is one persisted entry.
type cachedHash struct {
	ID   rvuid.Identifier `yaml:"rvuid"`
	Path string           `yaml:"path"`
}

// HashCache maps canonical file paths to the identifiers of their content.
//
// Entries are keyed by the canonical path (absolute, symlinks resolved), so
// the same file reached through different spellings is hashed once. A file
// edited in place keeps its stale identifier until the cache file is removed.
//
// HashCache is not safe for concurrent use, and two processes saving the same
// cache file race: the last writer wins.
type HashCache struct {
	// ReadFile reads a target's bytes. Defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)

	entries map[string]rvuid.Identifier
	log     logger.Logger
	dirty   bool
}

// NewHashCache returns an empty cache.
func NewHashCache(log logger.Logger) *HashCache {
	if log == nil {
		log = logger.NewNop()
	}
	return &HashCache{
		entries: make(map[string]rvuid.Identifier),
		log:     log,
	}
}

// LoadHashCache reads a cache file. A missing file is an empty cache.
//
// Stored paths are canonicalized again on load; entries whose file has since
// disappeared are dropped.
func LoadHashCache(path string, log logger.Logger) (*HashCache, error) {
	c := NewHashCache(log)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.log.Debug("no hash cache yet", logger.String("path", path))
			return c, nil
		}
		return nil, ioError("read hash cache", path, err)
	}

	var stored []cachedHash
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return nil, formatError("parse hash cache", path, err)
	}

	for i, e := range stored {
		if e.ID.IsZero() || e.Path == "" {
			return nil, formatError("parse hash cache", path,
				fmt.Errorf("entry %d needs both rvuid and path", i))
		}
		if e.ID.Partial() {
			return nil, formatError("parse hash cache", path,
				fmt.Errorf("entry %d holds partial identifier %s", i, e.ID))
		}
		canon, err := canonicalPath(e.Path)
		if err != nil {
			c.log.Debug("dropping stale cache entry", logger.String("path", e.Path), logger.Error(err))
			c.dirty = true
			continue
		}
		c.entries[canon] = e.ID
	}
	c.log.Debug("loaded hash cache", logger.String("path", path), logger.Int("entries", len(c.entries)))
	return c, nil
}

// GetOrCompute returns the identifier of the file at path, hashing it only if
// its canonical path is not cached yet.
func (c *HashCache) GetOrCompute(path string) (rvuid.Identifier, error) {
	canon, err := canonicalPath(path)
	if err != nil {
		return rvuid.Identifier{}, ioError("canonicalize", path, err)
	}
	if id, ok := c.entries[canon]; ok {
		return id, nil
	}

	read := c.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(canon)
	if err != nil {
		return rvuid.Identifier{}, ioError("read target", canon, err)
	}
	id := rvuid.Derive(data)
	c.entries[canon] = id
	c.dirty = true
	c.log.Debug("hashed target", logger.String("path", canon), logger.Stringer("rvuid", id))
	return id, nil
}

// Save writes every entry to path, sorted by path, replacing the file
// atomically.
func (c *HashCache) Save(path string) error {
	paths := make([]string, 0, len(c.entries))
	for p := range c.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]cachedHash, 0, len(paths))
	for _, p := range paths {
		out = append(out, cachedHash{ID: c.entries[p], Path: p})
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return formatError("encode hash cache", path, err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return ioError("write hash cache", path, err)
	}
	c.dirty = false
	c.log.Debug("saved hash cache", logger.String("path", path), logger.Int("entries", len(out)))
	return nil
}

// Len returns the number of cached entries.
func (c *HashCache) Len() int { return len(c.entries) }

// Dirty reports whether the cache changed since it was loaded or saved.
func (c *HashCache) Dirty() bool { return c.dirty }

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
