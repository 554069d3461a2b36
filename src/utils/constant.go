package utils

// Ring buffer feature layout for one stored tick row.
const (
	RB_IDX_TIMESTAMP = 0
	RB_IDX_CLOSE     = 1
	RB_IDX_AVG       = 2
	RB_IDX_VOLUME    = 3
	RB_IDX_AMOUNT    = 4
	RB_IDX_CHANGE    = 5
	RB_IDX_CHG_RATE  = 6

	RB_NUM_FEATURES = 7
)

// DefaultBufferCapacity covers a full A-share trading day of minute ticks.
const DefaultBufferCapacity = 242
