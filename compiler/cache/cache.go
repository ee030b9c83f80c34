// Package cache remembers what was generated for each package, so that
// unchanged packages can be skipped and stale generated files removed.
package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// DefaultFile is the cache file name, relative to the module root.
const DefaultFile = ".veneer.cache"

// version is bumped when the layout of Entry changes.
const version = 1

// Entry is the cached state of one package.
type Entry struct {
	// Fingerprint digests the package sources and the generator config.
	Fingerprint string `msgpack:"fp"`
	// Files are the generated files written for the package.
	Files   []string  `msgpack:"files"`
	RunID   string    `msgpack:"run"`
	Updated time.Time `msgpack:"updated"`
}

// Cache is the interface for storing per-package generation state.
type Cache interface {
	// Get returns the entry of a package. ok is false when there is none.
	Get(ctx context.Context, pkgPath string) (e Entry, ok bool, err error)

	// Set stores the entry of a package.
	Set(ctx context.Context, pkgPath string, e Entry) error

	// Delete removes the entry of a package.
	Delete(ctx context.Context, pkgPath string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Flush persists pending changes.
	Flush(ctx context.Context) error
}

// file is the on-disk layout of a FileCache.
type file struct {
	Version int              `msgpack:"v"`
	Entries map[string]Entry `msgpack:"entries"`
}

// FileCache is a Cache persisted as a single msgpack file. Entries are
// loaded lazily on first use and written back by Flush.
type FileCache struct {
	path string

	mu      sync.Mutex
	loaded  bool
	dirty   bool
	entries map[string]Entry
}

// NewFileCache returns a cache stored at path.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// Path returns the location of the cache file.
func (c *FileCache) Path() string {
	return c.path
}

// load reads the cache file. A missing, unreadable or outdated file yields
// an empty cache.
func (c *FileCache) load() {
	if c.loaded {
		return
	}
	c.loaded = true
	c.entries = make(map[string]Entry)
	data, err := os.ReadFile(c.path)
	if err != nil {
		return
	}
	var f file
	if err := msgpack.Unmarshal(data, &f); err != nil || f.Version != version {
		return
	}
	for k, e := range f.Entries {
		c.entries[k] = e
	}
}

// Get implements Cache.
func (c *FileCache) Get(ctx context.Context, pkgPath string) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load()
	e, ok := c.entries[pkgPath]
	return e, ok, nil
}

// Set implements Cache.
func (c *FileCache) Set(ctx context.Context, pkgPath string, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load()
	e.Files = append([]string(nil), e.Files...)
	sort.Strings(e.Files)
	c.entries[pkgPath] = e
	c.dirty = true
	return nil
}

// Delete implements Cache.
func (c *FileCache) Delete(ctx context.Context, pkgPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load()
	if _, ok := c.entries[pkgPath]; ok {
		delete(c.entries, pkgPath)
		c.dirty = true
	}
	return nil
}

// Clear implements Cache.
func (c *FileCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
	c.entries = make(map[string]Entry)
	c.dirty = true
	return nil
}

// Flush implements Cache. The file is replaced atomically.
func (c *FileCache) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	data, err := msgpack.Marshal(&file{Version: version, Entries: c.entries})
	if err != nil {
		return fmt.Errorf("veneer/cache: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("veneer/cache: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*")
	if err != nil {
		return fmt.Errorf("veneer/cache: %w", err)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("veneer/cache: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("veneer/cache: %w", err)
	}
	c.dirty = false
	return nil
}

// Nop is a Cache that remembers nothing.
type Nop struct{}

// Get implements Cache.
func (Nop) Get(context.Context, string) (Entry, bool, error) { return Entry{}, false, nil }

// Set implements Cache.
func (Nop) Set(context.Context, string, Entry) error { return nil }

// Delete implements Cache.
func (Nop) Delete(context.Context, string) error { return nil }

// Clear implements Cache.
func (Nop) Clear(context.Context) error { return nil }

// Flush implements Cache.
func (Nop) Flush(context.Context) error { return nil }

var (
	_ Cache = (*FileCache)(nil)
	_ Cache = Nop{}
)
