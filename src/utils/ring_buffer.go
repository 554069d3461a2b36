package utils

import (
	"github.com/qymmdj/daily-stock-analysis/src/models"
)

// -----------------------------------------------------------------------------
// TickRingBuffer is a fixed-size circular buffer of tick rows.
// OHLC columns are not retained; the buffer backs the latest-state cache,
// which only needs the trend line (close/avg/volume/amount/change).
// -----------------------------------------------------------------------------

type TickRingBuffer struct {
	data     [][RB_NUM_FEATURES]float64
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewTickRingBuffer creates a new buffer with fixed capacity
func NewTickRingBuffer(capacity int) *TickRingBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}

	return &TickRingBuffer{
		data:     make([][RB_NUM_FEATURES]float64, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds one tick, overwriting the oldest entry when full.
func (rb *TickRingBuffer) Append(tick models.MTick) {
	rb.data[rb.index] = [RB_NUM_FEATURES]float64{
		float64(tick.Timestamp),
		tick.Close,
		tick.AvgPrice,
		float64(tick.Volume),
		float64(tick.Amount),
		tick.Change,
		tick.ChangeRate,
	}

	rb.index = (rb.index + 1) % rb.capacity

	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns the n most recent ticks, oldest of those first.
func (rb *TickRingBuffer) GetLatest(n int) []models.MTick {
	if rb.size == 0 || n <= 0 {
		return []models.MTick{}
	}

	count := n
	if n > rb.size {
		count = rb.size
	}

	result := make([]models.MTick, count)

	startIdx := (rb.index - count + rb.capacity) % rb.capacity

	for i := 0; i < count; i++ {
		idx := (startIdx + i) % rb.capacity
		result[i] = rb.rowToTick(rb.data[idx])
	}

	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all ticks in insertion order (oldest to newest)
func (rb *TickRingBuffer) GetAll() []models.MTick {
	if rb.size == 0 {
		return []models.MTick{}
	}

	result := make([]models.MTick, rb.size)

	var startIdx int
	if rb.size == rb.capacity {
		// Buffer is full, oldest is at current index (wrap-around)
		startIdx = rb.index
	}

	for i := 0; i < rb.size; i++ {
		idx := (startIdx + i) % rb.capacity
		result[i] = rb.rowToTick(rb.data[idx])
	}

	return result
}

// -----------------------------------------------------------------------------

func (rb *TickRingBuffer) rowToTick(row [RB_NUM_FEATURES]float64) models.MTick {
	return models.MTick{
		Timestamp:  int64(row[RB_IDX_TIMESTAMP]),
		Close:      row[RB_IDX_CLOSE],
		AvgPrice:   row[RB_IDX_AVG],
		Volume:     int64(row[RB_IDX_VOLUME]),
		Amount:     int64(row[RB_IDX_AMOUNT]),
		Change:     row[RB_IDX_CHANGE],
		ChangeRate: row[RB_IDX_CHG_RATE],
	}
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *TickRingBuffer) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *TickRingBuffer) Capacity() int {
	return rb.capacity
}
