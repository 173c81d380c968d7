package alert

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Dedup suppresses identical messages re-sent within a short window. Edge
// detection in the engine already spaces legitimate alerts one per window
// entry; this only guards against crash-loop or restart double-sends.
type Dedup struct {
	cache *lru.Cache[string, time.Time]
	ttl   time.Duration
}

func NewDedup(maxKeys int, ttl time.Duration) *Dedup {
	if maxKeys <= 0 {
		maxKeys = 256
	}
	c, _ := lru.New[string, time.Time](maxKeys)
	return &Dedup{cache: c, ttl: ttl}
}

// IsDuplicate reports whether the message was already sent within the TTL,
// and records it otherwise.
func (d *Dedup) IsDuplicate(message string) bool {
	if sentAt, ok := d.cache.Get(message); ok {
		if time.Since(sentAt) < d.ttl {
			return true
		}
	}
	d.cache.Add(message, time.Now())
	return false
}
