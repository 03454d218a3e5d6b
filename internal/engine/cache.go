package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"github.com/tartampluch/famcal/internal/config"
)

const (
	cacheSuffixBody = ".body"
	cacheSuffixMeta = ".meta"
)

// cacheEntry holds HTTP validators for a single URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Cache keeps the last good payload of every fetched URL on disk so a
// source stays available while the remote store is down.
type Cache struct {
	d *diskv.Diskv
}

// NewCache creates a disk cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{d: diskv.New(diskv.Options{
		BasePath:          dir,
		AdvancedTransform: keyToPath,
		InverseTransform:  pathToKey,
		CacheSizeMax:      config.CacheSizeMax,
		PathPerm:          config.DirPermUserRWX,
		FilePerm:          config.FilePermUserRW,
	})}
}

// keyToPath fans files out on the first hex byte of the URL hash.
func keyToPath(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{key[:2]},
		FileName: key,
	}
}

func pathToKey(pk *diskv.PathKey) string {
	return pk.FileName
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:16])
}

// Get returns the cached validators and body for url.
func (c *Cache) Get(url string) (cacheEntry, []byte, bool) {
	key := cacheKey(url)

	body, err := c.d.Read(key + cacheSuffixBody)
	if err != nil || len(body) == 0 {
		return cacheEntry{}, nil, false
	}

	var meta cacheEntry
	if raw, err := c.d.Read(key + cacheSuffixMeta); err == nil {
		// A corrupt meta file only disables revalidation; the body is still usable.
		_ = json.Unmarshal(raw, &meta)
	}
	return meta, body, true
}

// Put stores body and its validators. The body is written first so the
// meta file never points at a missing body.
func (c *Cache) Put(meta cacheEntry, body []byte) error {
	key := cacheKey(meta.URL)

	if err := c.d.Write(key+cacheSuffixBody, body); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(&meta)
	if err != nil {
		return err
	}
	return c.d.Write(key+cacheSuffixMeta, raw)
}
