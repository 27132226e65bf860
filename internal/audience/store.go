package audience

import (
	"github.com/coocood/freecache"
)

// Store is the byte-level backing for cache entries. Entries are written
// without an expiry; staleness is judged on read from the timestamp
// inside the entry itself.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

const MEMORY_STORE_SIZE = 512 * 1024

// MemoryStore is the default in-process backing, shared by every run in
// the process.
type MemoryStore struct {
	cache *freecache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: freecache.NewCache(MEMORY_STORE_SIZE)}
}

func (m *MemoryStore) Get(key string) ([]byte, bool) {
	value, err := m.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return value, true
}

func (m *MemoryStore) Set(key string, value []byte) error {
	return m.cache.Set([]byte(key), value, 0)
}
