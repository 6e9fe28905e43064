package inmemorycache

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
	"ulascansenturk/kayak-pipeline/internal/models"
)

type cacheEntry struct {
	data       []byte
	expiration time.Time
}

type Cache interface {
	Get(city string) (*models.GeoPoint, bool, error)
	Set(city string, point *models.GeoPoint, ttl time.Duration) error
}

// InMemoryCache holds geocoding results for the lifetime of one run.
type InMemoryCache struct {
	cache           map[string]cacheEntry
	mutex           sync.Mutex
	cleanupInterval time.Duration
	done            chan struct{}
	closeOnce       sync.Once
}

func NewInMemoryCacheProvider(cleanupInterval time.Duration) *InMemoryCache {
	provider := &InMemoryCache{
		cache:           make(map[string]cacheEntry),
		cleanupInterval: cleanupInterval,
		done:            make(chan struct{}),
	}

	go provider.startCleanup()

	return provider
}

func cacheKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

func (m *InMemoryCache) Get(city string) (*models.GeoPoint, bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	key := cacheKey(city)
	entry, exists := m.cache[key]
	if !exists {
		return nil, false, nil
	}

	if time.Now().After(entry.expiration) {
		delete(m.cache, key)
		return nil, false, nil
	}

	var point models.GeoPoint
	if err := json.Unmarshal(entry.data, &point); err != nil {
		return nil, false, err
	}

	return &point, true, nil
}

func (m *InMemoryCache) Set(city string, point *models.GeoPoint, ttl time.Duration) error {
	jsonData, err := json.Marshal(point)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.cache[cacheKey(city)] = cacheEntry{
		data:       jsonData,
		expiration: time.Now().Add(ttl),
	}

	return nil
}

// Close stops the cleanup goroutine.
func (m *InMemoryCache) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

func (m *InMemoryCache) startCleanup() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.mutex.Lock()
			now := time.Now()
			for k, v := range m.cache {
				if now.After(v.expiration) {
					delete(m.cache, k)
				}
			}
			m.mutex.Unlock()
		}
	}
}
