package edgecache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	// Hash holding one was-in-schedule flag per building, keyed by
	// building id. The whole map is replaced once per completed cycle.
	edgeStateKey = "apc:building_schedule_states"

	// Legacy global panel flag kept for the old UI endpoints.
	panelArmedKey = "apc:panel_armed"
)

// RedisCache is the durable edge-state store. The engine is its only
// writer.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// GetAll returns the full edge-state map. A missing hash is an empty map
// (first run), never an error.
func (c *RedisCache) GetAll(ctx context.Context) (map[int64]bool, error) {
	fields, err := c.client.HGetAll(ctx, edgeStateKey).Result()
	if err != nil {
		return nil, fmt.Errorf("edge cache read: %w", err)
	}

	states := make(map[int64]bool, len(fields))
	for field, value := range fields {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			// Foreign field in the hash; skip rather than fail the cycle.
			continue
		}
		states[id] = value == "1"
	}
	return states, nil
}

// SetAll atomically replaces the stored map. The previous complete map stays
// readable until the transaction commits, so a crash mid-cycle never leaves
// a partial state behind.
func (c *RedisCache) SetAll(ctx context.Context, states map[int64]bool) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, edgeStateKey)
	if len(states) > 0 {
		fields := make([]any, 0, len(states)*2)
		for id, inside := range states {
			v := "0"
			if inside {
				v = "1"
			}
			fields = append(fields, strconv.FormatInt(id, 10), v)
		}
		pipe.HSet(ctx, edgeStateKey, fields...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("edge cache write: %w", err)
	}
	return nil
}

// PanelArmed returns the legacy global panel flag. Defaults to armed when
// never set.
func (c *RedisCache) PanelArmed(ctx context.Context) (bool, error) {
	v, err := c.client.Get(ctx, panelArmedKey).Result()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return v == "1", nil
}

func (c *RedisCache) SetPanelArmed(ctx context.Context, armed bool) error {
	v := "0"
	if armed {
		v = "1"
	}
	return c.client.Set(ctx, panelArmedKey, v, 0).Err()
}

// PingContext lets the health endpoint probe the cache alongside the
// databases.
func (c *RedisCache) PingContext(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
