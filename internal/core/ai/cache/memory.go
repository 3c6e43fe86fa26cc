package cache

import (
	"context"
	"sync"
	"time"

	"rcip-agent/internal/infrastructure/config"
	"rcip-agent/internal/pkg/common"

	"go.uber.org/zap"
)

// memoryStore is an in-process TTL cache with LRU eviction.
type memoryStore struct {
	config *config.CacheConfig
	mu     sync.Mutex
	store  map[string]memoryEntry
	done   chan struct{}

	hits      int64
	misses    int64
	evictions int64
}

type memoryEntry struct {
	value       string
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

func newMemoryStore(cfg *config.CacheConfig) *memoryStore {
	m := &memoryStore{
		config: cfg,
		store:  make(map[string]memoryEntry),
		done:   make(chan struct{}),
	}

	go m.startCleanup()

	common.LogInfo("memory cache initialized",
		zap.Int("max_size", cfg.MaxSize),
		zap.Duration("ttl", cfg.TTL),
		zap.Duration("cleanup_interval", cfg.CleanupInterval),
	)

	return m
}

// Get implements Store.
func (m *memoryStore) Get(ctx context.Context, prompt string) (string, bool) {
	key := promptKey(prompt)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists {
		m.misses++
		return "", false
	}

	if time.Now().After(entry.expiresAt) {
		delete(m.store, key)
		m.evictions++
		m.misses++
		return "", false
	}

	entry.lastAccess = time.Now()
	entry.accessCount++
	m.store[key] = entry
	m.hits++

	return entry.value, true
}

// Set implements Store.
func (m *memoryStore) Set(ctx context.Context, prompt, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.store) >= m.config.MaxSize {
		if evicted := m.cleanupLocked(); evicted > 0 {
			common.LogDebug("cache cleanup performed", zap.Int("evicted", evicted))
		}
		if len(m.store) >= m.config.MaxSize {
			m.evictLRULocked()
		}
	}

	now := time.Now()
	m.store[promptKey(prompt)] = memoryEntry{
		value:      value,
		expiresAt:  now.Add(m.config.TTL),
		lastAccess: now,
	}

	return nil
}

// Close implements Store.
func (m *memoryStore) Close() error {
	close(m.done)
	return nil
}

func (m *memoryStore) startCleanup() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanupLocked()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

func (m *memoryStore) cleanupLocked() int {
	now := time.Now()
	count := 0

	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.evictions++
		}
	}

	return count
}

func (m *memoryStore) evictLRULocked() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.evictions++
	}
}
