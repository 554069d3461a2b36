package utils

import (
	"sync"

	"github.com/qymmdj/daily-stock-analysis/src/models"
)

// -----------------------------------------------------------------------------
// TickCache keeps a bounded per-symbol window of recent ticks in memory so
// the server can answer recent-history queries without re-hitting the API.
// -----------------------------------------------------------------------------

type TickCache struct {
	buffers  map[string]*TickRingBuffer
	capacity int
	mu       sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewTickCache(capacity int) *TickCache {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &TickCache{
		buffers:  make(map[string]*TickRingBuffer),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Add appends one tick to the symbol's buffer, creating it on first use.
func (c *TickCache) Add(symbol string, tick models.MTick) {
	c.mu.Lock()
	defer c.mu.Unlock()

	buf, ok := c.buffers[symbol]
	if !ok {
		buf = NewTickRingBuffer(c.capacity)
		c.buffers[symbol] = buf
	}
	buf.Append(tick)
}

// -----------------------------------------------------------------------------

// AddSeries appends every tick of a fetched series.
func (c *TickCache) AddSeries(symbol string, ticks []models.MTick) {
	for _, t := range ticks {
		c.Add(symbol, t)
	}
}

// -----------------------------------------------------------------------------

// Latest returns the n most recent ticks for a symbol.
func (c *TickCache) Latest(symbol string, n int) []models.MTick {
	c.mu.RLock()
	defer c.mu.RUnlock()

	buf, ok := c.buffers[symbol]
	if !ok {
		return []models.MTick{}
	}
	return buf.GetLatest(n)
}

// -----------------------------------------------------------------------------

// Series returns the full cached window for a symbol, oldest first.
func (c *TickCache) Series(symbol string) []models.MTick {
	c.mu.RLock()
	defer c.mu.RUnlock()

	buf, ok := c.buffers[symbol]
	if !ok {
		return []models.MTick{}
	}
	return buf.GetAll()
}

// -----------------------------------------------------------------------------

// Symbols lists the symbols currently cached.
func (c *TickCache) Symbols() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.buffers))
	for sym := range c.buffers {
		out = append(out, sym)
	}
	return out
}
