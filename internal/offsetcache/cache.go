package offsetcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"takeslice/internal/logging"
	"takeslice/internal/timestamp"
)

// ErrUnusable marks a cache file that exists but could not be read or parsed.
var ErrUnusable = errors.New("offset cache unusable")

// ErrNotFound is returned by Remove for names without an entry.
var ErrNotFound = errors.New("offset not cached")

// Entry is one cached offset.
type Entry struct {
	Name   string
	Offset timestamp.Timestamp
}

// Cache maps track base names to synchronization offsets.
type Cache struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]timestamp.Timestamp
	dirty   bool
}

// Load reads the cache at path. A missing file yields an empty cache and a nil
// error. An unreadable or malformed file yields an empty, usable cache together
// with an error wrapping ErrUnusable; saving that cache overwrites the bad file.
func Load(path string, logger *slog.Logger) (*Cache, error) {
	logger = logging.NewComponentLogger(logger, "offsetcache")
	c := &Cache{
		path:    path,
		logger:  logger,
		entries: make(map[string]timestamp.Timestamp),
	}
	if strings.TrimSpace(path) == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return c, fmt.Errorf("%w: read %s: %w", ErrUnusable, path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return c, nil
	}

	var raw map[string]timestamp.Timestamp
	if err := json.Unmarshal(data, &raw); err != nil {
		return c, fmt.Errorf("%w: parse %s: %w", ErrUnusable, path, err)
	}
	// Spellings that normalize to one key resolve deterministically: a name
	// already in NFC wins, otherwise the first in byte order.
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		key := Key(name)
		if key == "" {
			continue
		}
		if _, seen := c.entries[key]; seen && !norm.NFC.IsNormalString(name) {
			continue
		}
		c.entries[key] = raw[name]
	}

	logger.Debug("loaded offset cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", path))
	return c, nil
}

// Key normalizes a track path or name to its cache key: the NFC form of the
// base name.
func Key(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return norm.NFC.String(base)
}

// Path returns the file backing the cache.
func (c *Cache) Path() string {
	return c.path
}

// Get returns the cached offset for name.
func (c *Cache) Get(name string) (timestamp.Timestamp, bool) {
	key := Key(name)
	if key == "" {
		return timestamp.Zero, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	offset, ok := c.entries[key]
	return offset, ok
}

// Set records an offset in memory. Storing an identical value does not mark
// the cache dirty.
func (c *Cache) Set(name string, offset timestamp.Timestamp) {
	key := Key(name)
	if key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok && existing == offset {
		return
	}
	c.entries[key] = offset
	c.dirty = true
	c.logger.Debug("cached track offset",
		logging.String("track", key),
		logging.Offset("offset", offset))
}

// Dirty reports whether the in-memory state differs from what was loaded or
// last saved.
func (c *Cache) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// Remove deletes the entry for name.
func (c *Cache) Remove(name string) error {
	key := Key(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(c.entries, key)
	c.dirty = true
	return nil
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 {
		return
	}
	c.entries = make(map[string]timestamp.Timestamp)
	c.dirty = true
}

// List returns all entries sorted by name.
func (c *Cache) List() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries := make([]Entry, 0, len(c.entries))
	for name, offset := range c.entries {
		entries = append(entries, Entry{Name: name, Offset: offset})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Len returns the number of cached offsets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Save writes the cache atomically and clears the dirty flag. The previous
// file stays intact if any step fails.
func (c *Cache) Save() error {
	if strings.TrimSpace(c.path) == "" {
		return errors.New("offset cache path not configured")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal offset cache: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	c.dirty = false
	c.logger.Debug("saved offset cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))
	return nil
}
