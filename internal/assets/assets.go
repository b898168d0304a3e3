// Package assets handles map loading from pk3 archives with caching.
package assets

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/ibsp/pkg/bsp"
	"github.com/Faultbox/ibsp/pkg/encoding"
	"github.com/Faultbox/ibsp/pkg/pk3"
)

// ErrNotFound is returned when no archive holds a file.
var ErrNotFound = errors.New("file not found in any archive")

// Manager handles asset loading from pk3 files.
type Manager struct {
	archives []*pk3.Archive
	cache    *Cache
	log      *zap.Logger
	mu       sync.RWMutex
}

// NewManager creates a new asset manager. A nil logger discards output.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cache: NewCache(),
		log:   log,
	}
}

// AddArchive adds a pk3 archive to the manager.
// Archives are searched in reverse order (last added = highest priority).
func (m *Manager) AddArchive(path string) error {
	archive, err := pk3.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}

	m.mu.Lock()
	m.archives = append(m.archives, archive)
	m.mu.Unlock()

	m.log.Debug("archive added",
		zap.String("path", path),
		zap.Int("files", len(archive.List())),
		zap.Int("maps", len(archive.Maps())))
	return nil
}

// AddArchives adds every path in order and reports all failures together.
// Archives that open successfully stay added.
func (m *Manager) AddArchives(paths []string) error {
	var errs error
	for _, p := range paths {
		errs = multierr.Append(errs, m.AddArchive(p))
	}
	return errs
}

// Load loads a file from the archives.
func (m *Manager) Load(path string) ([]byte, error) {
	key := encoding.NormalizePath(path)
	if data, ok := m.cache.Get(key); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.archives) - 1; i >= 0; i-- {
		a := m.archives[i]
		if !a.Contains(key) {
			continue
		}
		data, err := a.Read(key)
		if err != nil {
			return nil, fmt.Errorf("reading %s from %s: %w", path, a.Path(), err)
		}
		m.log.Debug("asset loaded", zap.String("path", key), zap.String("archive", a.Path()), zap.Int("bytes", len(data)))
		m.cache.Set(key, data)
		return data, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// LoadMap finds maps/<name>.bsp in the archives and decodes it.
func (m *Manager) LoadMap(name string, opts ...bsp.Option) (*bsp.Map, error) {
	path := pk3.MapPath(name)
	data, err := m.Load(path)
	if err != nil {
		return nil, err
	}
	return bsp.LoadBytes(data, opts...)
}

// Maps returns the names of all maps in all archives, sorted and without duplicates.
func (m *Manager) Maps() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for _, a := range m.archives {
		for _, name := range a.Maps() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Close closes all archives and clears the cache.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	for _, archive := range m.archives {
		err = multierr.Append(err, archive.Close())
	}
	m.archives = nil
	m.cache.Clear()
	return err
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
