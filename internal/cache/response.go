package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// fileExt is appended to every response cache file.
const fileExt = ".json"

// ResponseCache stores one pretty-printed JSON file per URL. Entries never
// expire: a hit is authoritative for as long as the file exists.
type ResponseCache struct {
	dir string
}

// NewResponseCache returns a cache rooted at dir. The directory is created
// lazily on first write.
func NewResponseCache(dir string) *ResponseCache {
	return &ResponseCache{dir: dir}
}

// Dir returns the cache directory.
func (c *ResponseCache) Dir() string {
	return c.dir
}

// Path returns the file that holds the entry for url.
func (c *ResponseCache) Path(url string) string {
	return filepath.Join(c.dir, EncodeKey(url)+fileExt)
}

// Get returns the cached payload for url. The second result is false on a
// miss; an unreadable or corrupt file is reported as an error.
func (c *ResponseCache) Get(url string) (json.RawMessage, bool, error) {
	data, err := os.ReadFile(c.Path(url))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	if !json.Valid(data) {
		return nil, false, fmt.Errorf("cache entry for %s is not valid JSON", url)
	}
	return json.RawMessage(data), true, nil
}

// Put writes payload for url. The file is written to a temporary name and
// renamed so a reader never observes a partial entry.
func (c *ResponseCache) Put(url string, payload json.RawMessage) error {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		return fmt.Errorf("formatting payload: %w", err)
	}
	pretty.WriteByte('\n')

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	path := c.Path(url)
	tmp := path + fmt.Sprintf(".tmp.%d", rand.Int())
	if err := os.WriteFile(tmp, pretty.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming cache entry: %w", err)
	}
	return nil
}

// Entry describes one stored response.
type Entry struct {
	Key  string `json:"key"`
	URL  string `json:"url,omitempty"` // empty when the key is a digest
	Size int64  `json:"size"`
}

// List returns all stored entries sorted by key.
func (c *ResponseCache) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		key := strings.TrimSuffix(name, fileExt)
		url, _ := DecodeKey(key)
		entries = append(entries, Entry{Key: key, URL: url, Size: info.Size()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Clear removes every stored response and returns how many were removed.
// Other files in the directory, such as the title log, are left alone.
func (c *ResponseCache) Clear() (int, error) {
	entries, err := c.List()
	if err != nil {
		return 0, err
	}
	var errs []error
	removed := 0
	for _, e := range entries {
		if err := os.Remove(filepath.Join(c.dir, e.Key+fileExt)); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
