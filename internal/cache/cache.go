// Package cache stores computed strategy universes so repeated runs over
// the same prices and strategy settings skip the per-strategy PnL build.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"walkforward-lab/internal/domain"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// UniverseCache stores immutable strategy universes by key.
type UniverseCache interface {
	Get(ctx context.Context, key string) (*domain.StrategyUniverse, error)
	Set(ctx context.Context, key string, u *domain.StrategyUniverse, ttl time.Duration) error
}

// MemoryCache is an in-process UniverseCache. Universes are immutable, so
// the same pointer is handed out on every hit.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	universe *domain.StrategyUniverse
	expires  time.Time // zero means no expiry
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached universe or ErrCacheMiss.
func (c *MemoryCache) Get(_ context.Context, key string) (*domain.StrategyUniverse, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if e.expired(c.now()) {
		c.mu.Lock()
		// A Set may have replaced the entry since the read.
		if cur, ok := c.entries[key]; ok && cur.expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return e.universe, nil
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Set stores u under key. ttl <= 0 keeps the entry until the process exits.
func (c *MemoryCache) Set(_ context.Context, key string, u *domain.StrategyUniverse, ttl time.Duration) error {
	if u == nil {
		return fmt.Errorf("cache set %s: nil universe", key)
	}
	e := memoryEntry{universe: u}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

var _ UniverseCache = (*MemoryCache)(nil)

// wireUniverse is the JSON form of a universe. NaN has no JSON encoding, so
// undefined returns travel as null.
type wireUniverse struct {
	Index      []string       `json:"index"`
	Strategies []wireStrategy `json:"strategies"`
}

type wireStrategy struct {
	Name    string     `json:"name"`
	Family  string     `json:"family"`
	Returns []*float64 `json:"returns"`
}

// Encode serializes a universe to JSON.
func Encode(u *domain.StrategyUniverse) ([]byte, error) {
	dates := u.Dates()
	w := wireUniverse{
		Index:      make([]string, len(dates)),
		Strategies: make([]wireStrategy, 0, u.Len()),
	}
	for i, d := range dates {
		w.Index[i] = d.Format(domain.DateLayout)
	}
	for i := 0; i < u.Len(); i++ {
		s := u.At(i)
		ws := wireStrategy{Name: s.Name, Family: s.Family, Returns: make([]*float64, len(s.Returns))}
		for j, v := range s.Returns {
			if domain.IsDefined(v) {
				v := v
				ws.Returns[j] = &v
			}
		}
		w.Strategies = append(w.Strategies, ws)
	}
	return json.Marshal(w)
}

// Decode rebuilds a universe from Encode output.
func Decode(data []byte) (*domain.StrategyUniverse, error) {
	var w wireUniverse
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode universe: %w", err)
	}

	index := make(domain.Index, len(w.Index))
	for i, s := range w.Index {
		d, err := domain.Date(s)
		if err != nil {
			return nil, fmt.Errorf("decode universe index: %w", err)
		}
		index[i] = d
	}

	pnls := make([]domain.StrategyPnL, len(w.Strategies))
	for i, ws := range w.Strategies {
		returns := domain.NewUndefinedSeries(len(ws.Returns))
		for j, v := range ws.Returns {
			if v != nil {
				returns[j] = *v
			}
		}
		pnls[i] = domain.StrategyPnL{Name: ws.Name, Family: ws.Family, Returns: returns}
	}
	return domain.NewUniverse(index, pnls)
}
